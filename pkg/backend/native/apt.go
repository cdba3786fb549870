// Package native implements the APT/DPKG backend.
package native

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

// Default dpkg log locations consulted for install dates.
var dpkgLogPaths = []string{"/var/log/dpkg.log", "/var/log/dpkg.log.1"}

// APT implements the Backend interface over apt, dpkg and dpkg-query.
type APT struct {
	exec *executor.Executor
}

// NewAPT creates a new APT/DPKG backend.
func NewAPT(exec *executor.Executor) *APT {
	return &APT{exec: exec}
}

// Kind returns the backend kind.
func (a *APT) Kind() backend.Kind {
	return backend.KindAPT
}

// DisplayName returns the human-readable name.
func (a *APT) DisplayName() string {
	return "APT/DPKG"
}

// IsAvailable returns true if dpkg-query is installed.
func (a *APT) IsAvailable() bool {
	_, err := exec.LookPath("dpkg-query")
	return err == nil
}

// List enumerates installed debs via dpkg-query.
func (a *APT) List(ctx context.Context) ([]backend.PackageUnit, error) {
	if !a.IsAvailable() {
		return nil, backend.NewError(backend.ErrUnavailable, "dpkg-query not found")
	}

	output, err := a.exec.Output(ctx, "dpkg-query", "-W",
		"-f=${Package}\\t${Version}\\t${Installed-Size}\\t${Status}\\n")
	if err != nil {
		return nil, backend.WrapError(backend.ErrBackendReported, "dpkg-query failed", err)
	}

	return parseDpkgList(output, installDatesFromLogs(dpkgLogPaths)), nil
}

// parseDpkgList parses dpkg-query tab-separated output into units.
func parseDpkgList(output string, installDates map[string]time.Time) []backend.PackageUnit {
	var units []backend.PackageUnit
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 4 {
			continue
		}
		if !strings.Contains(fields[3], "install ok installed") {
			continue
		}

		name := fields[0]
		sizeKiB, _ := strconv.ParseInt(fields[2], 10, 64)

		units = append(units, backend.PackageUnit{
			Identifier:         name,
			DisplayName:        formatDisplayName(name),
			Kind:               backend.KindAPT,
			Version:            fields[1],
			InstalledSizeBytes: sizeKiB * 1024,
			InstallDate:        installDates[name],
		})
	}

	return units
}

// installDatesFromLogs extracts the first recorded install date per package
// from the dpkg logs. DPKG keeps no install date in its status database.
func installDatesFromLogs(paths []string) map[string]time.Time {
	dates := make(map[string]time.Time)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parseDpkgLog(string(data), dates)
	}

	return dates
}

// parseDpkgLog scans dpkg log lines of the form
// "2024-01-15 10:30:00 install package-name:amd64 <none> 1.2.3".
func parseDpkgLog(content string, dates map[string]time.Time) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[2] != "install" {
			continue
		}

		name := strings.SplitN(fields[3], ":", 2)[0]
		if _, seen := dates[name]; seen {
			continue
		}
		if t, err := time.Parse("2006-01-02 15:04:05", fields[0]+" "+fields[1]); err == nil {
			dates[name] = t
		}
	}
}

// Describe returns extended metadata via dpkg-query and apt-cache.
func (a *APT) Describe(ctx context.Context, identifier string) (*backend.UnitDetail, error) {
	output, err := a.exec.OutputQuiet(ctx, "dpkg-query", "-W",
		"-f=${Package}\\t${Version}\\t${Installed-Size}\\t${Status}\\n", identifier)
	if err != nil {
		return nil, backend.NewError(backend.ErrNotFound, fmt.Sprintf("package %q is not installed", identifier))
	}

	units := parseDpkgList(output, installDatesFromLogs(dpkgLogPaths))
	if len(units) == 0 {
		return nil, backend.NewError(backend.ErrNotFound, fmt.Sprintf("package %q is not installed", identifier))
	}

	detail := &backend.UnitDetail{PackageUnit: units[0]}

	if show, err := a.exec.OutputQuiet(ctx, "apt-cache", "show", identifier); err == nil {
		detail.Description, detail.Maintainer = parseAptCacheShow(show)
	}
	if depends, err := a.exec.OutputQuiet(ctx, "apt-cache", "depends", identifier); err == nil {
		detail.Dependencies = parseAptCacheDepends(depends)
	}

	return detail, nil
}

// parseAptCacheShow extracts the short description and maintainer.
func parseAptCacheShow(output string) (description, maintainer string) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Description:"), strings.HasPrefix(line, "Description-en:"):
			if description == "" {
				description = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			}
		case strings.HasPrefix(line, "Maintainer:"):
			if maintainer == "" {
				maintainer = strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
			}
		}
	}
	return description, maintainer
}

// parseAptCacheDepends extracts the Depends/PreDepends package names.
func parseAptCacheDepends(output string) []string {
	var deps []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Depends:") && !strings.HasPrefix(line, "PreDepends:") {
			continue
		}
		name := strings.TrimSpace(strings.SplitN(line, ":", 2)[1])
		// Virtual packages are printed as "<name>".
		name = strings.Trim(name, "<>")
		if name != "" && !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}

	return deps
}

// RemoveStandard uninstalls via apt remove.
func (a *APT) RemoveStandard(ctx context.Context, identifier string) backend.RemovalResult {
	stderr, err := a.exec.RunElevated(ctx, "apt", "remove", "-y", identifier)
	if err != nil {
		return backend.Failed(backend.KindAPT, identifier, backend.ModeStandard, ClassifyAptError(stderr, err))
	}

	var warnings []string
	if _, err := a.exec.RunElevated(ctx, "apt", "autoremove", "-y"); err != nil {
		warnings = append(warnings, "autoremove of unused dependencies failed")
	}

	return backend.Succeeded(backend.KindAPT, identifier, backend.ModeStandard, warnings...)
}

// RemoveForced deletes the package's files and then drops its dpkg
// registration bypassing dependency checks.
func (a *APT) RemoveForced(ctx context.Context, identifier string) backend.RemovalResult {
	warnings := []string{"dependency checks bypassed (dpkg --force-remove-reinstreq); dependent packages may be left inconsistent"}

	if files := a.installedFiles(ctx, identifier); len(files) > 0 {
		// Best effort: a partially deleted file set is still removed from
		// the dpkg database below.
		args := append([]string{"-f", "--"}, files...)
		if _, err := a.exec.RunElevated(ctx, "rm", args...); err != nil {
			warnings = append(warnings, "some package files could not be deleted")
		}
	}

	stderr, err := a.exec.RunElevated(ctx, "dpkg", "--remove", "--force-remove-reinstreq", identifier)
	if err != nil {
		return backend.Failed(backend.KindAPT, identifier, backend.ModeForced, ClassifyAptError(stderr, err), warnings...)
	}

	return backend.Succeeded(backend.KindAPT, identifier, backend.ModeForced, warnings...)
}

// installedFiles returns the regular files dpkg recorded for the package.
func (a *APT) installedFiles(ctx context.Context, identifier string) []string {
	output, err := a.exec.OutputQuiet(ctx, "dpkg", "-L", identifier)
	if err != nil {
		return nil
	}

	var files []string
	for _, line := range strings.Split(output, "\n") {
		path := strings.TrimSpace(line)
		if path == "" || path == "/." {
			continue
		}
		info, err := os.Lstat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, path)
	}
	return files
}

// formatDisplayName turns a package identifier into a readable name.
func formatDisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
