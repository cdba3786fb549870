// Package appimage implements the backend for standalone AppImage binaries.
package appimage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

// DefaultSearchDirs returns the directories AppImages are commonly kept in.
func DefaultSearchDirs() []string {
	dirs := []string{"/opt"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append([]string{
			filepath.Join(home, "Applications"),
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, "bin"),
		}, dirs...)
	}
	return dirs
}

// AppImage implements the Backend interface by scanning the filesystem.
// There is no package database: the search directories are the state.
type AppImage struct {
	exec       *executor.Executor
	searchDirs []string
}

// New creates a new AppImage backend scanning the given directories.
func New(exec *executor.Executor, searchDirs []string) *AppImage {
	if len(searchDirs) == 0 {
		searchDirs = DefaultSearchDirs()
	}
	return &AppImage{exec: exec, searchDirs: searchDirs}
}

// Kind returns the backend kind.
func (a *AppImage) Kind() backend.Kind {
	return backend.KindAppImage
}

// DisplayName returns the human-readable name.
func (a *AppImage) DisplayName() string {
	return "AppImage"
}

// IsAvailable always returns true: AppImages need no tooling.
func (a *AppImage) IsAvailable() bool {
	return true
}

// List enumerates *.AppImage files in the search directories.
func (a *AppImage) List(ctx context.Context) ([]backend.PackageUnit, error) {
	var units []backend.PackageUnit

	for _, dir := range a.searchDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".appimage") {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			unit := backend.PackageUnit{
				Identifier:  entry.Name(),
				DisplayName: ParseDisplayName(entry.Name()),
				Kind:        backend.KindAppImage,
				SourcePath:  path,
			}
			if info, err := entry.Info(); err == nil {
				unit.InstalledSizeBytes = info.Size()
				unit.InstallDate = info.ModTime()
			}

			units = append(units, unit)
		}
	}

	return units, nil
}

// Describe returns metadata for one AppImage file.
func (a *AppImage) Describe(ctx context.Context, identifier string) (*backend.UnitDetail, error) {
	path, err := a.resolve(identifier)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, backend.WrapError(backend.ErrFilesystem, "cannot stat "+path, err)
	}

	return &backend.UnitDetail{
		PackageUnit: backend.PackageUnit{
			Identifier:         identifier,
			DisplayName:        ParseDisplayName(identifier),
			Kind:               backend.KindAppImage,
			InstalledSizeBytes: info.Size(),
			InstallDate:        info.ModTime(),
			SourcePath:         path,
		},
		Description: "AppImage: " + path,
	}, nil
}

// RemoveStandard deletes the AppImage binary.
func (a *AppImage) RemoveStandard(ctx context.Context, identifier string) backend.RemovalResult {
	path, err := a.resolve(identifier)
	if err != nil {
		return backend.Failed(backend.KindAppImage, identifier, backend.ModeStandard, backend.AsError(err))
	}

	if cause := a.deleteFile(ctx, path); cause != nil {
		return backend.Failed(backend.KindAppImage, identifier, backend.ModeStandard, cause)
	}
	return backend.Succeeded(backend.KindAppImage, identifier, backend.ModeStandard)
}

// RemoveForced deletes the binary and any desktop-integration entry whose
// name derives from the AppImage's own metadata.
func (a *AppImage) RemoveForced(ctx context.Context, identifier string) backend.RemovalResult {
	warnings := []string{"desktop-integration entries deleted without consulting their owner"}

	path, err := a.resolve(identifier)
	if err != nil {
		return backend.Failed(backend.KindAppImage, identifier, backend.ModeForced, backend.AsError(err), warnings...)
	}

	if cause := a.deleteFile(ctx, path); cause != nil {
		return backend.Failed(backend.KindAppImage, identifier, backend.ModeForced, cause, warnings...)
	}

	for _, desktop := range a.desktopEntries(identifier) {
		if err := os.Remove(desktop); err != nil {
			warnings = append(warnings, fmt.Sprintf("desktop entry %s could not be deleted", desktop))
		}
	}

	return backend.Succeeded(backend.KindAppImage, identifier, backend.ModeForced, warnings...)
}

// resolve finds the AppImage file for an identifier in the search dirs.
func (a *AppImage) resolve(identifier string) (string, error) {
	if filepath.IsAbs(identifier) {
		if _, err := os.Lstat(identifier); err == nil {
			return identifier, nil
		}
		return "", backend.NewError(backend.ErrNotFound, fmt.Sprintf("no such AppImage: %s", identifier))
	}

	for _, dir := range a.searchDirs {
		path := filepath.Join(dir, identifier)
		if _, err := os.Lstat(path); err == nil {
			return path, nil
		}
	}
	return "", backend.NewError(backend.ErrNotFound, fmt.Sprintf("no such AppImage: %s", identifier))
}

// deleteFile removes one file, escalating when the direct unlink is denied.
func (a *AppImage) deleteFile(ctx context.Context, path string) *backend.Error {
	err := os.Remove(path)
	if err == nil {
		return nil
	}
	if !os.IsPermission(err) {
		return backend.WrapError(backend.ErrFilesystem, "cannot delete "+path, err)
	}

	stderr, err := a.exec.RunElevated(ctx, "rm", "-f", "--", path)
	if err != nil {
		if backend.IsElevationDenied(stderr) {
			return backend.ElevationDeniedError(stderr)
		}
		return backend.WrapError(backend.ErrFilesystem, "cannot delete "+path, err)
	}
	return nil
}

// desktopEntries finds launcher files created for this AppImage.
func (a *AppImage) desktopEntries(identifier string) []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	dir := filepath.Join(home, ".local", "share", "applications")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	needle := strings.ToLower(strings.ReplaceAll(ParseDisplayName(identifier), " ", ""))
	if needle == "" {
		return nil
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".desktop") {
			continue
		}
		flat := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, "-", ""), "_", ""))
		if strings.Contains(flat, needle) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	return matches
}

// arch and version tokens stripped from AppImage file names.
var archTokens = map[string]bool{
	"x86_64": true, "amd64": true, "arm64": true, "aarch64": true, "i386": true,
}

// ParseDisplayName derives a readable application name from an AppImage
// file name, e.g. "Obsidian-1.5.3-arm64.AppImage" -> "Obsidian".
func ParseDisplayName(filename string) string {
	name := filename
	if strings.HasSuffix(strings.ToLower(name), ".appimage") {
		name = name[:len(name)-len(".AppImage")]
	}

	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == ' '
	})

	var kept []string
	for _, part := range parts {
		if archTokens[part] || isVersionToken(part) {
			continue
		}
		kept = append(kept, part)
	}

	if len(kept) == 0 {
		return name
	}
	return strings.Join(kept, " ")
}

// isVersionToken reports whether a token looks like a version tag ("1.5.3",
// "v2.0").
func isVersionToken(tok string) bool {
	trimmed := strings.TrimPrefix(tok, "v")
	if trimmed == "" {
		return false
	}
	digits := 0
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		default:
			return false
		}
	}
	return digits > 0
}
