package residue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

// Cleaner deletes residue paths recorded by a prior scan. Deletion is
// recursive, best-effort per path, and irreversible.
type Cleaner struct {
	exec  *executor.Executor
	roots []string

	mu      sync.Mutex
	scanned map[string]struct{}
}

// CleanResult reports the outcome of one deletion attempt.
type CleanResult struct {
	Path      string
	Succeeded bool
	Cancelled bool
	Err       error
}

// NewCleaner creates a Cleaner confined to the roots of the given rules.
func NewCleaner(exec *executor.Executor, rules []Rule) *Cleaner {
	return &Cleaner{exec: exec, roots: Roots(rules), scanned: make(map[string]struct{})}
}

// Record registers scan output as eligible for cleaning. Only recorded paths
// are ever deleted.
func (c *Cleaner) Record(candidates []Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cand := range candidates {
		c.scanned[filepath.Clean(cand.Path)] = struct{}{}
	}
}

// Clean deletes each path and returns one result per input path, in input
// order. A failing path never blocks the remaining ones. On cancellation,
// remaining paths are marked cancelled rather than attempted.
func (c *Cleaner) Clean(ctx context.Context, paths []string) []CleanResult {
	results := make([]CleanResult, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			results = append(results, CleanResult{Path: path, Cancelled: true})
			continue
		}
		results = append(results, c.cleanOne(ctx, path))
	}
	return results
}

func (c *Cleaner) cleanOne(ctx context.Context, path string) CleanResult {
	result := CleanResult{Path: path}
	clean := filepath.Clean(path)

	// Re-validated here, not only at scan time: the path list may have been
	// edited or gone stale since the scan.
	if !c.recorded(clean) {
		result.Err = backend.NewError(backend.ErrFilesystem, "path was not produced by a scan")
		return result
	}
	if !c.insideRoots(clean) {
		result.Err = backend.NewError(backend.ErrFilesystem, "path is outside the configured scan roots")
		return result
	}
	if _, err := os.Lstat(clean); err != nil {
		result.Err = backend.WrapError(backend.ErrFilesystem, "path no longer exists", err)
		return result
	}

	err := os.RemoveAll(clean)
	if err != nil && errors.Is(err, os.ErrPermission) && executor.CanElevate() {
		stderr, eerr := c.exec.RunElevated(ctx, "rm", "-rf", "--", clean)
		if eerr != nil {
			if backend.IsElevationDenied(stderr) {
				result.Err = backend.ElevationDeniedError(stderr)
			} else {
				result.Err = backend.WrapError(backend.ErrFilesystem, "elevated deletion failed", eerr)
			}
			return result
		}
		err = nil
	}
	if err != nil {
		result.Err = backend.WrapError(backend.ErrFilesystem, "deletion failed", err)
		return result
	}

	result.Succeeded = true
	return result
}

func (c *Cleaner) recorded(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.scanned[path]
	return ok
}

func (c *Cleaner) insideRoots(path string) bool {
	clean := filepath.Clean(path)

	// A root itself is never a deletion target, even when scan roots nest
	// and the inner root lies within an outer one.
	for _, root := range c.roots {
		if clean == root {
			return false
		}
	}
	for _, root := range c.roots {
		if withinRoot(clean, root) {
			return true
		}
	}
	return false
}
