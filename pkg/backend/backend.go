package backend

import "context"

// Backend is the capability set every package backend implements. Adapters
// are stateless between calls; all backend state lives in the underlying
// package-manager installation.
type Backend interface {
	// Kind returns the backend's kind (closed enum dispatch).
	Kind() Kind

	// DisplayName returns a human-readable name (e.g. "APT/DPKG").
	DisplayName() string

	// IsAvailable returns true if the backend's tooling is present and usable.
	IsAvailable() bool

	// List enumerates the units currently installed through this backend
	// only. When the backend tool is absent it returns ErrUnavailable; it
	// never reports units belonging to another backend.
	List(ctx context.Context) ([]PackageUnit, error)

	// Describe returns extended metadata for one installed unit.
	Describe(ctx context.Context, identifier string) (*UnitDetail, error)

	// RemoveStandard invokes the backend's native uninstall path.
	RemoveStandard(ctx context.Context, identifier string) RemovalResult

	// RemoveForced removes the unit bypassing the backend's safety checks.
	// The result always carries at least one warning, even on success.
	RemoveForced(ctx context.Context, identifier string) RemovalResult
}
