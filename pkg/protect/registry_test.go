package protect

import (
	"testing"

	"uproot/pkg/backend"
)

func TestRegistryProtected(t *testing.T) {
	reg := NewRegistry(map[backend.Kind][]string{
		backend.KindAPT:  {"bash", "coreutils"},
		backend.KindSnap: {"snapd"},
	})

	tests := []struct {
		kind backend.Kind
		id   string
		want bool
	}{
		{backend.KindAPT, "bash", true},
		{backend.KindAPT, "coreutils", true},
		{backend.KindAPT, "vim", false},
		{backend.KindSnap, "snapd", true},
		// Protection is per kind: a snap named bash is fair game.
		{backend.KindSnap, "bash", false},
		{backend.KindFlatpak, "snapd", false},
	}

	for _, tt := range tests {
		if got := reg.Protected(tt.kind, tt.id); got != tt.want {
			t.Errorf("Protected(%s, %q) = %v, want %v", tt.kind, tt.id, got, tt.want)
		}
	}
}

func TestRegistryCaseSensitive(t *testing.T) {
	reg := NewRegistry(map[backend.Kind][]string{
		backend.KindAPT: {"bash"},
	})

	if reg.Protected(backend.KindAPT, "Bash") {
		t.Error("matching must be case-sensitive; 'Bash' should not be protected")
	}
	if reg.Protected(backend.KindAPT, "bash ") {
		t.Error("matching must be exact; trailing whitespace should not match")
	}
}

func TestRegistryIgnoresEmptyIdentifiers(t *testing.T) {
	reg := NewRegistry(map[backend.Kind][]string{
		backend.KindAPT: {"", "bash", ""},
	})

	if reg.Len() != 1 {
		t.Errorf("expected 1 identifier, got %d", reg.Len())
	}
	if reg.Protected(backend.KindAPT, "") {
		t.Error("empty identifier must never be protected")
	}
}

func TestRegistryIdentifiersSorted(t *testing.T) {
	reg := NewRegistry(map[backend.Kind][]string{
		backend.KindAPT: {"sed", "bash", "grep"},
	})

	ids := reg.Identifiers(backend.KindAPT)
	want := []string{"bash", "grep", "sed"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d identifiers, got %d", len(want), len(ids))
	}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("identifiers[%d] = %q, want %q", i, ids[i], id)
		}
	}
}

func TestDefaultIdentifiers(t *testing.T) {
	defaults := DefaultIdentifiers()
	reg := NewRegistry(defaults)

	if reg.Len() == 0 {
		t.Fatal("default protection set must not be empty")
	}

	// The package manager and init system must always be covered.
	for _, id := range []string{"apt", "dpkg", "systemd", "libc6"} {
		if !reg.Protected(backend.KindAPT, id) {
			t.Errorf("expected %q to be protected by default", id)
		}
	}
	if !reg.Protected(backend.KindSnap, "snapd") {
		t.Error("expected snapd to be protected by default")
	}
}
