package backend

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("removing: %w", NewError(ErrProtected, "protected"))

	if !errors.Is(err, NewError(ErrProtected, "")) {
		t.Error("errors.Is should match on the kind alone")
	}
	if errors.Is(err, NewError(ErrNotFound, "")) {
		t.Error("errors.Is must not match a different kind")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := NewError(ErrNotFound, "package is not installed").Error(); got != "not-found: package is not installed" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewError(ErrUnknown, "").Error(); got != "unknown" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("exit status 1")
	err := WrapError(ErrBackendReported, "apt remove failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable through errors.Is")
	}
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Error("AsError(nil) must be nil")
	}

	structured := NewError(ErrProtected, "protected")
	if AsError(structured) != structured {
		t.Error("AsError must return a *Error unchanged")
	}

	plain := errors.New("something odd")
	got := AsError(plain)
	if got.Kind != ErrUnknown {
		t.Errorf("plain errors classify as unknown, got %s", got.Kind)
	}
	if !errors.Is(got, plain) {
		t.Error("the plain error must be preserved as the cause")
	}
}

func TestIsElevationDenied(t *testing.T) {
	tests := []struct {
		stderr string
		want   bool
	}{
		{"Error executing command as another user: Not authorized", true},
		{"Error executing command as another user: Request dismissed", true},
		{"sudo: a password is required", true},
		{"sudo: 1 incorrect password attempt", true},
		{"E: Unable to locate package foo", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsElevationDenied(tt.stderr); got != tt.want {
			t.Errorf("IsElevationDenied(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}

func TestKindValid(t *testing.T) {
	for _, kind := range Kinds() {
		if !kind.Valid() {
			t.Errorf("%s should be valid", kind)
		}
	}
	if Kind("rpm").Valid() {
		t.Error("rpm is not a known kind")
	}
}

func TestUnitKey(t *testing.T) {
	u := PackageUnit{Identifier: "curl", Kind: KindAPT, Version: "8.5.0"}
	key := u.Key()
	if key.Kind != KindAPT || key.Identifier != "curl" {
		t.Errorf("Key() = %+v", key)
	}

	// Identity ignores version: a unit is keyed by backend and identifier.
	other := PackageUnit{Identifier: "curl", Kind: KindAPT, Version: "7.0.0"}
	if u.Key() != other.Key() {
		t.Error("keys must be equal across versions")
	}
}

func TestRemovalResultConstructors(t *testing.T) {
	ok := Succeeded(KindAPT, "curl", ModeStandard, "autoremove skipped")
	if !ok.OK() || ok.Status != StatusSucceeded || len(ok.Warnings) != 1 {
		t.Errorf("Succeeded = %+v", ok)
	}

	failed := Failed(KindSnap, "hello", ModeForced, NewError(ErrNotFound, "gone"))
	if failed.OK() || failed.Status != StatusFailed || failed.Err == nil {
		t.Errorf("Failed = %+v", failed)
	}

	cancelled := Cancelled(KindFlatpak, "org.gimp.GIMP", ModeStandard)
	if cancelled.OK() || cancelled.Status != StatusCancelled {
		t.Errorf("Cancelled = %+v", cancelled)
	}
}
