package native

import (
	"regexp"
	"strings"

	"uproot/pkg/backend"
)

// Patterns for classifying apt/dpkg stderr.
var (
	// Matches: "E: Unable to locate package foo"
	aptNotFoundPattern = regexp.MustCompile(`Unable to locate package (\S+)`)

	// Matches: "dpkg: warning: ignoring request to remove foo which isn't installed"
	// and "E: Package 'foo' is not installed, so not removed"
	dpkgNotInstalledPattern = regexp.MustCompile(`(?i:package '?(\S+?)'? is not installed|remove (\S+) which isn't installed)`)

	// Matches apt's unmet-dependency refusals and dpkg's dependency problems.
	dependencyPattern = regexp.MustCompile(`(?:unmet dependencies|dependency problems|pkgProblemResolver)`)

	// Matches: "E: Could not get lock /var/lib/dpkg/lock-frontend"
	dbLockedPattern = regexp.MustCompile(`Could not get lock (\S+)`)
)

// ClassifyAptError turns apt/dpkg stderr plus the exec error into a
// structured cause. Unrecognised output is reported verbatim as a
// backend-reported failure, never retried.
func ClassifyAptError(stderr string, err error) *backend.Error {
	if backend.IsElevationDenied(stderr) {
		return backend.ElevationDeniedError(stderr)
	}

	switch {
	case aptNotFoundPattern.MatchString(stderr), dpkgNotInstalledPattern.MatchString(stderr):
		return &backend.Error{
			Kind:   backend.ErrNotFound,
			Detail: "package is not installed",
			Stderr: stderr,
		}
	case dependencyPattern.MatchString(stderr):
		return &backend.Error{
			Kind:   backend.ErrDependencyConflict,
			Detail: "removal refused: other packages depend on this one",
			Stderr: stderr,
		}
	case dbLockedPattern.MatchString(stderr):
		return &backend.Error{
			Kind:   backend.ErrBackendReported,
			Detail: "package database is locked; another package manager may be running",
			Stderr: stderr,
		}
	}

	detail := strings.TrimSpace(stderr)
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return backend.WrapError(backend.ErrBackendReported, detail, err)
}
