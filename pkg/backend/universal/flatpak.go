package universal

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

// Flatpak implements the Backend interface over the flatpak command.
type Flatpak struct {
	exec *executor.Executor
}

// NewFlatpak creates a new Flatpak backend.
func NewFlatpak(exec *executor.Executor) *Flatpak {
	return &Flatpak{exec: exec}
}

// Kind returns the backend kind.
func (f *Flatpak) Kind() backend.Kind {
	return backend.KindFlatpak
}

// DisplayName returns the human-readable name.
func (f *Flatpak) DisplayName() string {
	return "Flatpak"
}

// IsAvailable returns true if the flatpak command is installed.
func (f *Flatpak) IsAvailable() bool {
	_, err := exec.LookPath("flatpak")
	return err == nil
}

// List enumerates installed Flatpak applications (not runtimes).
func (f *Flatpak) List(ctx context.Context) ([]backend.PackageUnit, error) {
	if !f.IsAvailable() {
		return nil, backend.NewError(backend.ErrUnavailable, "flatpak not found")
	}

	output, err := f.exec.Output(ctx, "flatpak", "list", "--app",
		"--columns=application,version,name")
	if err != nil {
		return nil, backend.WrapError(backend.ErrBackendReported, "flatpak list failed", err)
	}

	return parseFlatpakList(output), nil
}

// parseFlatpakList parses flatpak's tab-separated column output.
func parseFlatpakList(output string) []backend.PackageUnit {
	var units []backend.PackageUnit
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		id := strings.TrimSpace(fields[0])
		if id == "" {
			continue
		}

		unit := backend.PackageUnit{
			Identifier:  id,
			DisplayName: flatpakDisplayName(id),
			Kind:        backend.KindFlatpak,
			SourcePath:  "app/" + id,
		}
		if len(fields) > 1 {
			unit.Version = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
			unit.DisplayName = strings.TrimSpace(fields[2])
		}

		units = append(units, unit)
	}

	return units
}

// flatpakDisplayName falls back to the final segment of a reverse-DNS id,
// e.g. org.gimp.GIMP -> GIMP.
func flatpakDisplayName(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 && i < len(id)-1 {
		return id[i+1:]
	}
	return id
}

// Describe returns extended metadata via flatpak info.
func (f *Flatpak) Describe(ctx context.Context, identifier string) (*backend.UnitDetail, error) {
	output, err := f.exec.OutputQuiet(ctx, "flatpak", "info", identifier)
	if err != nil {
		return nil, backend.NewError(backend.ErrNotFound, fmt.Sprintf("flatpak %q not found", identifier))
	}

	detail := parseFlatpakInfo(output)
	detail.Identifier = identifier
	if detail.DisplayName == "" {
		detail.DisplayName = flatpakDisplayName(identifier)
	}
	detail.Kind = backend.KindFlatpak
	detail.SourcePath = "app/" + identifier
	return detail, nil
}

// parseFlatpakInfo parses the key: value lines of `flatpak info`.
func parseFlatpakInfo(output string) *backend.UnitDetail {
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
		case "Name":
			detail.DisplayName = value
		case "Version":
			detail.Version = value
		case "Description", "Subject":
			if detail.Description == "" {
				detail.Description = value
			}
		case "Installed":
			_, detail.InstalledSizeBytes = parseSnapInstalled(value)
		case "Origin":
			detail.Maintainer = value
		}
	}

	return detail
}

// RemoveStandard uninstalls via flatpak uninstall, retrying elevated when a
// system installation refuses the unprivileged attempt.
func (f *Flatpak) RemoveStandard(ctx context.Context, identifier string) backend.RemovalResult {
	_, stderr, err := f.exec.Capture(ctx, "flatpak", "uninstall", "-y", identifier)
	if err == nil {
		return backend.Succeeded(backend.KindFlatpak, identifier, backend.ModeStandard)
	}

	cause := classifyFlatpakError(stderr, err)
	if cause.Kind == backend.ErrNotFound {
		return backend.Failed(backend.KindFlatpak, identifier, backend.ModeStandard, cause)
	}

	stderr, err = f.exec.RunElevated(ctx, "flatpak", "uninstall", "-y", identifier)
	if err != nil {
		return backend.Failed(backend.KindFlatpak, identifier, backend.ModeStandard, classifyFlatpakError(stderr, err))
	}
	return backend.Succeeded(backend.KindFlatpak, identifier, backend.ModeStandard)
}

// RemoveForced deletes the application's installation directories directly,
// then asks flatpak to drop the registration, tolerating a missing unit.
func (f *Flatpak) RemoveForced(ctx context.Context, identifier string) backend.RemovalResult {
	warnings := []string{"flatpak transaction checks bypassed: installation directories deleted directly"}

	for _, dir := range flatpakAppDirs(identifier) {
		if _, err := os.Lstat(dir); err != nil {
			continue
		}
		if _, err := f.exec.RunElevated(ctx, "rm", "-rf", "--", dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("installation directory %s could not be deleted", dir))
		}
	}

	stderr, err := f.exec.RunElevated(ctx, "flatpak", "uninstall", "-y", "--force-remove", identifier)
	if err != nil {
		cause := classifyFlatpakError(stderr, err)
		if cause.Kind == backend.ErrNotFound {
			return backend.Succeeded(backend.KindFlatpak, identifier, backend.ModeForced, warnings...)
		}
		return backend.Failed(backend.KindFlatpak, identifier, backend.ModeForced, cause, warnings...)
	}

	return backend.Succeeded(backend.KindFlatpak, identifier, backend.ModeForced, warnings...)
}

// flatpakAppDirs returns the system and per-user installation directories.
func flatpakAppDirs(identifier string) []string {
	dirs := []string{filepath.Join("/var/lib/flatpak/app", identifier)}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local/share/flatpak/app", identifier))
	}
	return dirs
}

var flatpakNotInstalledPattern = regexp.MustCompile(`(?:error: (\S+) not installed|is not installed)`)

// classifyFlatpakError turns flatpak stderr into a structured cause.
func classifyFlatpakError(stderr string, err error) *backend.Error {
	if backend.IsElevationDenied(stderr) {
		return backend.ElevationDeniedError(stderr)
	}
	if flatpakNotInstalledPattern.MatchString(stderr) {
		return &backend.Error{Kind: backend.ErrNotFound, Detail: "application is not installed", Stderr: stderr}
	}

	detail := strings.TrimSpace(stderr)
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return backend.WrapError(backend.ErrBackendReported, detail, err)
}
