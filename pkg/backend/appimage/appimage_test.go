package appimage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

func TestParseDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Obsidian-1.5.3-arm64.AppImage", "Obsidian"},
		{"krita-5.2.2-x86_64.appimage", "krita"},
		{"Some-Cool-Tool-v2.0.AppImage", "Some Cool Tool"},
		{"plain.AppImage", "plain"},
		{"1.2.3.AppImage", "1.2.3"},
	}

	for _, tt := range tests {
		if got := ParseDisplayName(tt.in); got != tt.want {
			t.Errorf("ParseDisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsVersionToken(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1.5.3", true},
		{"v2.0", true},
		{"2", true},
		{"v", false},
		{"arm64", false},
		{"Obsidian", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isVersionToken(tt.in); got != tt.want {
			t.Errorf("isVersionToken(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestListFindsAppImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Obsidian-1.5.3-x86_64.AppImage", "krita.appimage", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "Nested.AppImage"), 0o755); err != nil {
		t.Fatal(err)
	}

	a := New(executor.New(false, false), []string{dir, filepath.Join(dir, "missing")})
	units, err := a.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(units) != 2 {
		t.Fatalf("expected 2 AppImages, got %d", len(units))
	}
	for _, u := range units {
		if u.Kind != backend.KindAppImage {
			t.Errorf("%s: kind = %s", u.Identifier, u.Kind)
		}
		if u.SourcePath == "" {
			t.Errorf("%s: missing source path", u.Identifier)
		}
	}
}

func TestRemoveStandardDeletesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Tool-1.0.AppImage")
	if err := os.WriteFile(path, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	a := New(executor.New(false, false), []string{dir})
	result := a.RemoveStandard(context.Background(), "Tool-1.0.AppImage")
	if result.Status != backend.StatusSucceeded {
		t.Fatalf("expected success, got %s (%v)", result.Status, result.Err)
	}
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Error("AppImage was not deleted")
	}
}

func TestRemoveStandardNotFound(t *testing.T) {
	a := New(executor.New(false, false), []string{t.TempDir()})
	result := a.RemoveStandard(context.Background(), "Ghost.AppImage")
	if result.Status != backend.StatusFailed {
		t.Fatalf("expected failure, got %s", result.Status)
	}
	if result.Err == nil || result.Err.Kind != backend.ErrNotFound {
		t.Errorf("expected not-found, got %v", result.Err)
	}
}

func TestRemoveForcedCarriesWarning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Tool.AppImage")
	if err := os.WriteFile(path, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	a := New(executor.New(false, false), []string{dir})
	result := a.RemoveForced(context.Background(), "Tool.AppImage")
	if result.Status != backend.StatusSucceeded {
		t.Fatalf("expected success, got %s (%v)", result.Status, result.Err)
	}
	if len(result.Warnings) == 0 {
		t.Error("forced removal must always carry a warning")
	}
}
