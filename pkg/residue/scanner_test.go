package residue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uproot/pkg/backend"
)

func aptUnit(id string) backend.PackageUnit {
	return backend.PackageUnit{Identifier: id, DisplayName: id, Kind: backend.KindAPT}
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func mkfile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanExactMatch(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "foo-tools")
	mkdir(t, root, "unrelated")

	s := NewScanner([]Rule{{Root: root, Kind: KindConfig}})
	candidates, err := s.Scan(context.Background(), aptUnit("foo-tools"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Path != filepath.Join(root, "foo-tools") {
		t.Errorf("path = %q", c.Path)
	}
	if c.Confidence != ConfidenceExact {
		t.Errorf("confidence = %s, want exact", c.Confidence)
	}
	if c.Kind != KindConfig {
		t.Errorf("kind = %s, want config", c.Kind)
	}
}

func TestScanSegmentBoundary(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "app")
	mkdir(t, root, "app-cache")
	mkdir(t, root, "application-data")
	mkdir(t, root, "myapp.log")

	s := NewScanner([]Rule{{Root: root, Kind: KindData}})
	candidates, err := s.Scan(context.Background(), aptUnit("app"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := make(map[string]Confidence, len(candidates))
	for _, c := range candidates {
		got[filepath.Base(c.Path)] = c.Confidence
	}

	if got["app"] != ConfidenceExact {
		t.Errorf("app: confidence = %s, want exact", got["app"])
	}
	if got["app-cache"] != ConfidencePattern {
		t.Errorf("app-cache: confidence = %s, want pattern", got["app-cache"])
	}
	if got["myapp.log"] != "" {
		t.Error("myapp.log should not match: 'app' is not on a segment boundary")
	}
	if _, ok := got["application-data"]; ok {
		t.Error("application-data should not match: incidental substring overlap")
	}
}

func TestScanPatternFilter(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "foo.log"), 10)
	mkfile(t, filepath.Join(root, "foo.conf"), 10)

	s := NewScanner([]Rule{{Root: root, Pattern: "*.log", Kind: KindLog}})
	candidates, err := s.Scan(context.Background(), aptUnit("foo"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if filepath.Base(candidates[0].Path) != "foo.log" {
		t.Errorf("got %q, want foo.log", candidates[0].Path)
	}
}

func TestScanDedupeKeepsHighestConfidence(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "foo")

	// Two rules over the same root produce one candidate per path.
	s := NewScanner([]Rule{
		{Root: root, Pattern: "foo*", Kind: KindCache},
		{Root: root, Kind: KindConfig},
	})
	candidates, err := s.Scan(context.Background(), aptUnit("foo"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 deduplicated candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Confidence != ConfidenceExact {
		t.Errorf("confidence = %s, want exact", c.Confidence)
	}
	// Both rules appear in the combined note.
	if !strings.Contains(c.MatchedRule, "foo*") || !strings.Contains(c.MatchedRule, "; ") {
		t.Errorf("matched rule note does not combine rules: %q", c.MatchedRule)
	}
}

func TestScanSymlinkRecordedNotFollowed(t *testing.T) {
	dataRoot := t.TempDir()
	linkRoot := t.TempDir()

	target := mkdir(t, dataRoot, "payload")
	mkfile(t, filepath.Join(target, "big"), 4096)

	link := filepath.Join(linkRoot, "foo")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	s := NewScanner([]Rule{{Root: linkRoot, Kind: KindData}})
	candidates, err := s.Scan(context.Background(), aptUnit("foo"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if !c.Symlink {
		t.Error("candidate should be marked as a symlink")
	}
	// The link itself is recorded, never the 4 KiB behind it.
	if c.SizeBytes >= 4096 {
		t.Errorf("symlink size = %d, target must not be followed", c.SizeBytes)
	}
}

func TestScanDirectorySize(t *testing.T) {
	root := t.TempDir()
	dir := mkdir(t, root, "foo")
	mkfile(t, filepath.Join(dir, "a"), 100)
	sub := mkdir(t, dir, "nested")
	mkfile(t, filepath.Join(sub, "b"), 50)

	s := NewScanner([]Rule{{Root: root, Kind: KindData}})
	candidates, err := s.Scan(context.Background(), aptUnit("foo"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].SizeBytes != 150 {
		t.Errorf("size = %d, want 150", candidates[0].SizeBytes)
	}
}

func TestScanMissingRootSkipped(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "foo")

	s := NewScanner([]Rule{
		{Root: filepath.Join(root, "does-not-exist"), Kind: KindConfig},
		{Root: root, Kind: KindConfig},
	})
	candidates, err := s.Scan(context.Background(), aptUnit("foo"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("expected 1 candidate from the readable root, got %d", len(candidates))
	}
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "foo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner([]Rule{{Root: root, Kind: KindConfig}})
	if _, err := s.Scan(ctx, aptUnit("foo")); err == nil {
		t.Error("expected error from cancelled scan")
	}
}

func TestScanResultsSorted(t *testing.T) {
	root := t.TempDir()
	mkdir(t, root, "foo-logs")
	mkdir(t, root, "foo")
	mkdir(t, root, "foo-cache")

	s := NewScanner([]Rule{{Root: root, Kind: KindData}})
	candidates, err := s.Scan(context.Background(), aptUnit("foo"))
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i-1].Path >= candidates[i].Path {
			t.Errorf("candidates not sorted: %q before %q", candidates[i-1].Path, candidates[i].Path)
		}
	}
}

func TestCandidateNames(t *testing.T) {
	tests := []struct {
		name string
		unit backend.PackageUnit
		want []string
	}{
		{
			name: "apt plain",
			unit: backend.PackageUnit{Identifier: "foo-tools", DisplayName: "Foo Tools", Kind: backend.KindAPT},
			want: []string{"foo-tools"},
		},
		{
			name: "underscores folded",
			unit: backend.PackageUnit{Identifier: "Foo_Bar", Kind: backend.KindAPT},
			want: []string{"foo-bar"},
		},
		{
			name: "flatpak reverse dns",
			unit: backend.PackageUnit{Identifier: "org.gimp.GIMP", DisplayName: "GNU Image Manipulation Program", Kind: backend.KindFlatpak},
			want: []string{"org.gimp.gimp", "gnu-image-manipulation-program", "gimp"},
		},
		{
			name: "appimage tags stripped",
			unit: backend.PackageUnit{Identifier: "Obsidian-1.5.3-x86_64.AppImage", DisplayName: "Obsidian", Kind: backend.KindAppImage},
			want: []string{"obsidian"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := candidateNames(tt.unit)
			for _, want := range tt.want {
				found := false
				for _, name := range got {
					if name == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("candidateNames(%q) = %v, missing %q", tt.unit.Identifier, got, want)
				}
			}
		})
	}
}

func TestStripAppImageTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Obsidian-1.5.3-x86_64.AppImage", "obsidian"},
		{"App_Name-1.2.3.AppImage", "app-name"},
		{"krita-5.2.2-arm64.appimage", "krita"},
		{"plain.AppImage", "plain"},
		{"v2.AppImage", "v2"},
		{"Tool-v2.0-amd64.AppImage", "tool"},
	}

	for _, tt := range tests {
		if got := stripAppImageTags(tt.in); got != tt.want {
			t.Errorf("stripAppImageTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo Tools", "foo-tools"},
		{"foo_bar", "foo-bar"},
		{"  spaced  ", "spaced"},
		{"-edge-", "edge"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsSegment(t *testing.T) {
	tests := []struct {
		entry string
		name  string
		want  bool
	}{
		{"app", "app", true},
		{"app-cache", "app", true},
		{"my.app", "app", true},
		{"application-data", "app", false},
		{"myapp", "app", false},
		{"foo-app-bar", "app", true},
		{"xappx-app", "app", true},
	}

	for _, tt := range tests {
		if got := containsSegment(tt.entry, tt.name); got != tt.want {
			t.Errorf("containsSegment(%q, %q) = %v, want %v", tt.entry, tt.name, got, tt.want)
		}
	}
}

func TestWithinRoot(t *testing.T) {
	tests := []struct {
		path, root string
		want       bool
	}{
		{"/etc/foo", "/etc", true},
		{"/etc", "/etc", true},
		{"/etcetera/foo", "/etc", false},
		{"/etc/../var/foo", "/etc", false},
		{"/var/log/foo", "/var/log", true},
	}

	for _, tt := range tests {
		if got := withinRoot(tt.path, tt.root); got != tt.want {
			t.Errorf("withinRoot(%q, %q) = %v, want %v", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestRoots(t *testing.T) {
	roots := Roots([]Rule{
		{Root: "/etc"},
		{Root: "/etc/"},
		{Root: "/var/log"},
	})
	if len(roots) != 2 {
		t.Errorf("expected 2 deduplicated roots, got %v", roots)
	}
}
