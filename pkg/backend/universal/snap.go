// Package universal implements the cross-distribution backends (Snap, Flatpak).
package universal

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

// Snap implements the Backend interface over snapd's snap command.
type Snap struct {
	exec *executor.Executor
}

// NewSnap creates a new Snap backend.
func NewSnap(exec *executor.Executor) *Snap {
	return &Snap{exec: exec}
}

// Kind returns the backend kind.
func (s *Snap) Kind() backend.Kind {
	return backend.KindSnap
}

// DisplayName returns the human-readable name.
func (s *Snap) DisplayName() string {
	return "Snap"
}

// IsAvailable returns true if the snap command is installed.
func (s *Snap) IsAvailable() bool {
	_, err := exec.LookPath("snap")
	return err == nil
}

// List enumerates installed snaps.
func (s *Snap) List(ctx context.Context) ([]backend.PackageUnit, error) {
	if !s.IsAvailable() {
		return nil, backend.NewError(backend.ErrUnavailable, "snap not found")
	}

	output, err := s.exec.Output(ctx, "snap", "list")
	if err != nil {
		return nil, backend.WrapError(backend.ErrBackendReported, "snap list failed", err)
	}

	return parseSnapList(output), nil
}

// parseSnapList parses `snap list` output. The first line is a header.
func parseSnapList(output string) []backend.PackageUnit {
	var units []backend.PackageUnit
	scanner := bufio.NewScanner(strings.NewReader(output))
	header := true

	for scanner.Scan() {
		line := scanner.Text()
		if header {
			header = false
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		name := fields[0]
		units = append(units, backend.PackageUnit{
			Identifier:  name,
			DisplayName: snapDisplayName(name),
			Kind:        backend.KindSnap,
			Version:     fields[1],
			SourcePath:  "/snap/" + name,
		})
	}

	return units
}

func snapDisplayName(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Describe returns extended metadata via snap info.
func (s *Snap) Describe(ctx context.Context, identifier string) (*backend.UnitDetail, error) {
	output, err := s.exec.OutputQuiet(ctx, "snap", "info", identifier)
	if err != nil {
		return nil, backend.NewError(backend.ErrNotFound, fmt.Sprintf("snap %q not found", identifier))
	}

	detail := parseSnapInfo(output)
	detail.Identifier = identifier
	detail.DisplayName = snapDisplayName(identifier)
	detail.Kind = backend.KindSnap
	detail.SourcePath = "/snap/" + identifier
	return detail, nil
}

// parseSnapInfo parses the key: value lines of `snap info`.
func parseSnapInfo(output string) *backend.UnitDetail {
	detail := &backend.UnitDetail{}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "summary":
			detail.Description = value
		case "publisher":
			detail.Maintainer = value
		case "installed":
			// e.g. "2.60.4 (2750) 45MB -"
			detail.Version, detail.InstalledSizeBytes = parseSnapInstalled(value)
		}
	}

	return detail
}

var snapSizePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(B|kB|KB|MB|GB|TB)`)

// parseSnapInstalled extracts the version and size from the installed line.
func parseSnapInstalled(value string) (string, int64) {
	fields := strings.Fields(value)
	version := ""
	if len(fields) > 0 {
		version = fields[0]
	}

	m := snapSizePattern.FindStringSubmatch(value)
	if m == nil {
		return version, 0
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return version, 0
	}

	mult := map[string]float64{"B": 1, "kB": 1 << 10, "KB": 1 << 10, "MB": 1 << 20, "GB": 1 << 30, "TB": 1 << 40}
	return version, int64(size * mult[m[2]])
}

// RemoveStandard uninstalls via snap remove.
func (s *Snap) RemoveStandard(ctx context.Context, identifier string) backend.RemovalResult {
	stderr, err := s.exec.RunElevated(ctx, "snap", "remove", identifier)
	if err != nil {
		return backend.Failed(backend.KindSnap, identifier, backend.ModeStandard, classifySnapError(stderr, err))
	}
	return backend.Succeeded(backend.KindSnap, identifier, backend.ModeStandard)
}

// RemoveForced deletes the snap's data directories directly, then drops the
// snapd registration with --purge (skipping the snapshot snapd would keep).
func (s *Snap) RemoveForced(ctx context.Context, identifier string) backend.RemovalResult {
	warnings := []string{"snapd data snapshot skipped: data directories deleted directly"}

	for _, dir := range snapDataDirs(identifier) {
		if _, err := os.Lstat(dir); err != nil {
			continue
		}
		if _, err := s.exec.RunElevated(ctx, "rm", "-rf", "--", dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("data directory %s could not be deleted", dir))
		}
	}

	stderr, err := s.exec.RunElevated(ctx, "snap", "remove", "--purge", identifier)
	if err != nil {
		cause := classifySnapError(stderr, err)
		if cause.Kind == backend.ErrNotFound {
			// Registration already gone; the forced cleanup still applied.
			return backend.Succeeded(backend.KindSnap, identifier, backend.ModeForced, warnings...)
		}
		return backend.Failed(backend.KindSnap, identifier, backend.ModeForced, cause, warnings...)
	}

	return backend.Succeeded(backend.KindSnap, identifier, backend.ModeForced, warnings...)
}

// snapDataDirs returns the directories snapd keeps per-snap data in.
func snapDataDirs(identifier string) []string {
	dirs := []string{
		filepath.Join("/var/snap", identifier),
		filepath.Join("/root/snap", identifier),
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "snap", identifier))
	}
	return dirs
}

var snapNotInstalledPattern = regexp.MustCompile(`snap "(\S+)" is not installed`)

// classifySnapError turns snap stderr into a structured cause.
func classifySnapError(stderr string, err error) *backend.Error {
	if backend.IsElevationDenied(stderr) {
		return backend.ElevationDeniedError(stderr)
	}
	if snapNotInstalledPattern.MatchString(stderr) {
		return &backend.Error{Kind: backend.ErrNotFound, Detail: "snap is not installed", Stderr: stderr}
	}

	detail := strings.TrimSpace(stderr)
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return backend.WrapError(backend.ErrBackendReported, detail, err)
}
