package universal

import (
	"testing"

	"uproot/pkg/backend"
)

func TestParseFlatpakList(t *testing.T) {
	output := "org.gimp.GIMP\t2.10.36\tGNU Image Manipulation Program\n" +
		"org.mozilla.firefox\t122.0\t\n" +
		"com.spotify.Client\n" +
		"\n"

	units := parseFlatpakList(output)
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}

	gimp := units[0]
	if gimp.Identifier != "org.gimp.GIMP" {
		t.Errorf("identifier = %q", gimp.Identifier)
	}
	if gimp.Version != "2.10.36" {
		t.Errorf("version = %q", gimp.Version)
	}
	if gimp.DisplayName != "GNU Image Manipulation Program" {
		t.Errorf("display name = %q", gimp.DisplayName)
	}
	if gimp.Kind != backend.KindFlatpak {
		t.Errorf("kind = %s", gimp.Kind)
	}

	// An empty name column falls back to the reverse-DNS tail.
	if units[1].DisplayName != "firefox" {
		t.Errorf("firefox display name = %q", units[1].DisplayName)
	}
	if units[2].DisplayName != "Client" {
		t.Errorf("spotify display name = %q", units[2].DisplayName)
	}
}

func TestFlatpakDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"org.gimp.GIMP", "GIMP"},
		{"io.github.some.App", "App"},
		{"plainname", "plainname"},
		{"trailing.", "trailing."},
	}

	for _, tt := range tests {
		if got := flatpakDisplayName(tt.in); got != tt.want {
			t.Errorf("flatpakDisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFlatpakInfo(t *testing.T) {
	output := `Name: GIMP
Version: 2.10.36
Subject: Update to 2.10.36
Origin: flathub
Installed: 1.2 GB
`

	detail := parseFlatpakInfo(output)
	if detail.DisplayName != "GIMP" {
		t.Errorf("display name = %q", detail.DisplayName)
	}
	if detail.Version != "2.10.36" {
		t.Errorf("version = %q", detail.Version)
	}
	if detail.Description != "Update to 2.10.36" {
		t.Errorf("description = %q", detail.Description)
	}
	if detail.Maintainer != "flathub" {
		t.Errorf("maintainer = %q", detail.Maintainer)
	}
	gib := float64(1 << 30)
	if detail.InstalledSizeBytes != int64(1.2*gib) {
		t.Errorf("size = %d", detail.InstalledSizeBytes)
	}
}

func TestClassifyFlatpakError(t *testing.T) {
	got := classifyFlatpakError("error: org.gimp.GIMP not installed", nil)
	if got.Kind != backend.ErrNotFound {
		t.Errorf("kind = %s, want not-found", got.Kind)
	}

	got = classifyFlatpakError(`error: app/com.example.App/x86_64/stable is not installed`, nil)
	if got.Kind != backend.ErrNotFound {
		t.Errorf("kind = %s, want not-found", got.Kind)
	}

	got = classifyFlatpakError("error: While trying to remove: transaction aborted", nil)
	if got.Kind != backend.ErrBackendReported {
		t.Errorf("kind = %s, want backend-reported", got.Kind)
	}

	got = classifyFlatpakError("Error executing command as another user: Request dismissed", nil)
	if got.Kind != backend.ErrElevationDenied {
		t.Errorf("kind = %s, want elevation-denied", got.Kind)
	}
}
