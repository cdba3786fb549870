package backend

import "strings"

// Markers pkexec and sudo emit when the user refuses or fails escalation.
var elevationDenialMarkers = []string{
	"Error executing command as another user: Not authorized", // pkexec, dialog denied
	"Error executing command as another user: Request dismissed",
	"a password is required",        // sudo -n without cached credentials
	"incorrect password attempt",    // sudo, wrong password
	"sudo: 3 incorrect password attempts",
	"polkit agent",
}

// IsElevationDenied reports whether the captured stderr shows a user-denied
// privilege escalation rather than a backend failure.
func IsElevationDenied(stderr string) bool {
	for _, marker := range elevationDenialMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

// ElevationDeniedError builds the canonical "elevation denied" cause.
func ElevationDeniedError(stderr string) *Error {
	return &Error{Kind: ErrElevationDenied, Detail: "elevation denied", Stderr: stderr}
}
