package cli

import "errors"

var (
	// ErrNoTargets is returned when no packages are specified.
	ErrNoTargets = errors.New("no packages specified")

	// ErrUnknownBackend is returned when --backend names an unknown kind.
	ErrUnknownBackend = errors.New("unknown backend; expected apt, snap, flatpak, or appimage")

	// ErrAborted is returned when the user aborts an operation.
	ErrAborted = errors.New("operation aborted by user")

	// ErrRemovalFailed is returned when at least one target failed.
	ErrRemovalFailed = errors.New("one or more removals failed")

	// ErrCleanFailed is returned when at least one residue path failed to delete.
	ErrCleanFailed = errors.New("one or more paths could not be deleted")
)
