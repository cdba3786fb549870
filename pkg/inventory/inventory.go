// Package inventory merges the backends' listings into one annotated catalog.
package inventory

import (
	"context"
	"sync"
	"time"

	"uproot/pkg/backend"
	"uproot/pkg/protect"
)

// DefaultListTimeout bounds how long one backend may take to enumerate.
const DefaultListTimeout = 30 * time.Second

// Entry is a PackageUnit annotated with protection and selection state.
// Selected is mutated by the presentation layer only; everything else is an
// immutable snapshot.
type Entry struct {
	backend.PackageUnit
	Protected bool `json:"protected"`
	Selected  bool `json:"selected"`
}

// BackendIssue reports a backend that could not contribute to the catalog.
type BackendIssue struct {
	Kind backend.Kind
	Err  *backend.Error
}

// Inventory is the merged catalog of one build. A new build supersedes it.
type Inventory struct {
	Entries []Entry
	Issues  []BackendIssue
	BuiltAt time.Time
}

// Lookup returns the entry with the given identity, if present.
func (inv *Inventory) Lookup(key backend.UnitKey) (Entry, bool) {
	for _, e := range inv.Entries {
		if e.Key() == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Builder aggregates listings across all backends.
type Builder struct {
	backends []backend.Backend
	registry *protect.Registry
	timeout  time.Duration
}

// NewBuilder creates a Builder over the given backends.
func NewBuilder(backends []backend.Backend, registry *protect.Registry) *Builder {
	return &Builder{backends: backends, registry: registry, timeout: DefaultListTimeout}
}

// SetListTimeout overrides the per-backend enumeration timeout.
func (b *Builder) SetListTimeout(d time.Duration) {
	if d > 0 {
		b.timeout = d
	}
}

// Build lists every backend concurrently and merges the results. Backends
// whose tooling is absent or whose listing fails degrade to an Issue entry;
// the build itself only fails when the context is cancelled. Entries from the
// same backend keep that backend's enumeration order.
func (b *Builder) Build(ctx context.Context) (*Inventory, error) {
	type slot struct {
		units []backend.PackageUnit
		err   error
	}

	slots := make([]slot, len(b.backends))
	var wg sync.WaitGroup

	for i, be := range b.backends {
		wg.Add(1)
		go func(i int, be backend.Backend) {
			defer wg.Done()

			listCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			units, err := be.List(listCtx)
			slots[i] = slot{units: dedupe(units), err: err}
		}(i, be)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inv := &Inventory{BuiltAt: time.Now()}
	for i, be := range b.backends {
		if err := slots[i].err; err != nil {
			inv.Issues = append(inv.Issues, BackendIssue{Kind: be.Kind(), Err: backend.AsError(err)})
			continue
		}
		for _, unit := range slots[i].units {
			inv.Entries = append(inv.Entries, Entry{
				PackageUnit: unit,
				Protected:   b.registry.Protected(unit.Kind, unit.Identifier),
			})
		}
	}

	return inv, nil
}

// dedupe drops duplicate identities within one backend's listing; the later
// occurrence wins silently.
func dedupe(units []backend.PackageUnit) []backend.PackageUnit {
	if len(units) < 2 {
		return units
	}

	index := make(map[backend.UnitKey]int, len(units))
	out := units[:0]
	for _, u := range units {
		if i, seen := index[u.Key()]; seen {
			out[i] = u
			continue
		}
		index[u.Key()] = len(out)
		out = append(out, u)
	}
	return out
}
