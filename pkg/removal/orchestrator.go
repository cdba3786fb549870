// Package removal drives standard and forced package removal across backends.
package removal

import (
	"context"
	"fmt"
	"sync"

	"uproot/pkg/backend"
	"uproot/pkg/protect"
)

// DefaultWorkers bounds how many targets are processed concurrently.
const DefaultWorkers = 4

// Orchestrator dispatches removal targets to their owning backends and
// aggregates per-target outcomes. It never stops on the first failure: every
// target yields exactly one result.
type Orchestrator struct {
	backends map[backend.Kind]backend.Backend
	registry *protect.Registry
	workers  int

	// The dpkg database tolerates no concurrent writers, so APT removals
	// are serialized against each other. The other backends may overlap.
	aptMu sync.Mutex
}

// NewOrchestrator creates an Orchestrator over the given backends.
func NewOrchestrator(backends []backend.Backend, registry *protect.Registry) *Orchestrator {
	byKind := make(map[backend.Kind]backend.Backend, len(backends))
	for _, be := range backends {
		byKind[be.Kind()] = be
	}
	return &Orchestrator{backends: byKind, registry: registry, workers: DefaultWorkers}
}

// SetWorkers overrides the worker bound.
func (o *Orchestrator) SetWorkers(n int) {
	if n > 0 {
		o.workers = n
	}
}

// Remove processes every target and returns one result per target, in input
// order. On cancellation, completed results are preserved, in-flight backend
// calls are interrupted through ctx, and not-yet-started targets are marked
// cancelled rather than attempted.
func (o *Orchestrator) Remove(ctx context.Context, targets []backend.UnitKey, mode backend.Mode) []backend.RemovalResult {
	results := make([]backend.RemovalResult, len(targets))

	workers := o.workers
	if workers > len(targets) {
		workers = len(targets)
	}
	if workers < 1 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = o.removeOne(ctx, targets[idx], mode)
			}
		}()
	}

	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// removeOne handles a single target: Pending -> InProgress -> terminal.
func (o *Orchestrator) removeOne(ctx context.Context, target backend.UnitKey, mode backend.Mode) backend.RemovalResult {
	if ctx.Err() != nil {
		return backend.Cancelled(target.Kind, target.Identifier, mode)
	}

	be, ok := o.backends[target.Kind]
	if !ok {
		return backend.Failed(target.Kind, target.Identifier, mode,
			backend.NewError(backend.ErrUnavailable, fmt.Sprintf("no backend for kind %q", target.Kind)))
	}

	// Re-verified at removal time: the selection may come from a stale
	// inventory snapshot.
	if o.registry.Protected(target.Kind, target.Identifier) {
		return backend.Failed(target.Kind, target.Identifier, mode,
			backend.NewError(backend.ErrProtected, "protected"))
	}

	if target.Kind == backend.KindAPT {
		o.aptMu.Lock()
		defer o.aptMu.Unlock()
		// The wait for the lock can outlive the batch: a target that was
		// queued behind another APT removal when cancellation arrived was
		// never attempted, so it is cancelled, not failed.
		if ctx.Err() != nil {
			return backend.Cancelled(target.Kind, target.Identifier, mode)
		}
	}

	if mode == backend.ModeForced {
		return be.RemoveForced(ctx, target.Identifier)
	}
	return be.RemoveStandard(ctx, target.Identifier)
}

// Summary aggregates result counts for reporting.
type Summary struct {
	Succeeded int
	Failed    int
	Cancelled int
}

// Summarize counts terminal states in a result set.
func Summarize(results []backend.RemovalResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case backend.StatusSucceeded:
			s.Succeeded++
		case backend.StatusCancelled:
			s.Cancelled++
		default:
			s.Failed++
		}
	}
	return s
}
