// Package backend provides the core abstraction over the software backends
// uproot can inventory and remove packages from.
package backend

import "time"

// Kind identifies one of the supported package backends. The set is closed:
// protection and orchestration logic reason over all kinds exhaustively.
type Kind string

const (
	// KindAPT represents packages managed by APT/DPKG.
	KindAPT Kind = "apt"
	// KindSnap represents snapd-managed snaps.
	KindSnap Kind = "snap"
	// KindFlatpak represents Flatpak applications.
	KindFlatpak Kind = "flatpak"
	// KindAppImage represents standalone AppImage binaries.
	KindAppImage Kind = "appimage"
)

// Kinds returns all backend kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindAPT, KindSnap, KindFlatpak, KindAppImage}
}

// Valid reports whether k is one of the known backend kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAPT, KindSnap, KindFlatpak, KindAppImage:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// PackageUnit is one installed software unit as seen by exactly one backend.
// It is an immutable snapshot: a new listing supersedes it, nothing mutates it.
type PackageUnit struct {
	Identifier         string    `json:"identifier"`
	DisplayName        string    `json:"display_name"`
	Kind               Kind      `json:"kind"`
	Version            string    `json:"version"`
	InstalledSizeBytes int64     `json:"installed_size_bytes"`
	InstallDate        time.Time `json:"install_date,omitempty"`
	// SourcePath is the binary path for AppImages and a backend-internal
	// reference (if any) for the other kinds.
	SourcePath string `json:"source_path,omitempty"`
}

// UnitKey is the globally unique identity of a unit: identifiers are only
// unique within one backend kind.
type UnitKey struct {
	Kind       Kind
	Identifier string
}

// Key returns the unit's global identity.
func (u PackageUnit) Key() UnitKey {
	return UnitKey{Kind: u.Kind, Identifier: u.Identifier}
}

// UnitDetail is the extended metadata a backend can describe for one unit.
type UnitDetail struct {
	PackageUnit
	Description  string   `json:"description,omitempty"`
	Maintainer   string   `json:"maintainer,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// Mode selects the removal path.
type Mode string

const (
	// ModeStandard uses the backend's native uninstall path.
	ModeStandard Mode = "standard"
	// ModeForced bypasses the backend's safety checks. Forced results carry
	// at least one warning naming the bypassed check, even on success.
	ModeForced Mode = "forced"
)

// Status is the terminal (or pending) state of one removal attempt.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	// StatusCancelled marks a target that was never attempted because the
	// batch was cancelled. Distinct from StatusFailed.
	StatusCancelled Status = "cancelled"
)

// RemovalResult is the outcome of one removal attempt. Created once per unit
// per orchestration run, immutable, never retried automatically.
type RemovalResult struct {
	Identifier string   `json:"identifier"`
	Kind       Kind     `json:"kind"`
	Mode       Mode     `json:"mode"`
	Status     Status   `json:"status"`
	Err        *Error   `json:"error,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OK reports whether the removal succeeded.
func (r RemovalResult) OK() bool {
	return r.Status == StatusSucceeded
}

// Succeeded builds a successful result.
func Succeeded(kind Kind, id string, mode Mode, warnings ...string) RemovalResult {
	return RemovalResult{Identifier: id, Kind: kind, Mode: mode, Status: StatusSucceeded, Warnings: warnings}
}

// Failed builds a failed result carrying a structured cause.
func Failed(kind Kind, id string, mode Mode, err *Error, warnings ...string) RemovalResult {
	return RemovalResult{Identifier: id, Kind: kind, Mode: mode, Status: StatusFailed, Err: err, Warnings: warnings}
}

// Cancelled builds a result for a target that was never attempted.
func Cancelled(kind Kind, id string, mode Mode) RemovalResult {
	return RemovalResult{Identifier: id, Kind: kind, Mode: mode, Status: StatusCancelled}
}
