package inventory

import (
	"context"
	"testing"

	"uproot/pkg/backend"
	"uproot/pkg/protect"
)

// listBackend serves a canned listing, or a canned error.
type listBackend struct {
	kind  backend.Kind
	units []backend.PackageUnit
	err   error
}

func (l *listBackend) Kind() backend.Kind  { return l.kind }
func (l *listBackend) DisplayName() string { return string(l.kind) }
func (l *listBackend) IsAvailable() bool   { return l.err == nil }

func (l *listBackend) List(ctx context.Context) ([]backend.PackageUnit, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.units, nil
}

func (l *listBackend) Describe(ctx context.Context, identifier string) (*backend.UnitDetail, error) {
	return nil, backend.NewError(backend.ErrNotFound, "not found")
}

func (l *listBackend) RemoveStandard(ctx context.Context, identifier string) backend.RemovalResult {
	return backend.Succeeded(l.kind, identifier, backend.ModeStandard)
}

func (l *listBackend) RemoveForced(ctx context.Context, identifier string) backend.RemovalResult {
	return backend.Succeeded(l.kind, identifier, backend.ModeForced)
}

func unit(kind backend.Kind, id, version string) backend.PackageUnit {
	return backend.PackageUnit{Identifier: id, DisplayName: id, Version: version, Kind: kind}
}

func emptyRegistry() *protect.Registry {
	return protect.NewRegistry(nil)
}

func TestBuildMergesBackends(t *testing.T) {
	apt := &listBackend{kind: backend.KindAPT, units: []backend.PackageUnit{
		unit(backend.KindAPT, "curl", "8.5.0"),
		unit(backend.KindAPT, "jq", "1.7"),
	}}
	snap := &listBackend{kind: backend.KindSnap, units: []backend.PackageUnit{
		unit(backend.KindSnap, "hello", "2.12"),
	}}

	b := NewBuilder([]backend.Backend{apt, snap}, emptyRegistry())
	inv, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(inv.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(inv.Entries))
	}
	if len(inv.Issues) != 0 {
		t.Errorf("expected no issues, got %d", len(inv.Issues))
	}
	if inv.BuiltAt.IsZero() {
		t.Error("BuiltAt must be set")
	}

	if _, ok := inv.Lookup(backend.UnitKey{Kind: backend.KindSnap, Identifier: "hello"}); !ok {
		t.Error("snap hello missing from merged inventory")
	}
}

func TestBuildDedupeLaterWins(t *testing.T) {
	apt := &listBackend{kind: backend.KindAPT, units: []backend.PackageUnit{
		unit(backend.KindAPT, "curl", "8.4.0"),
		unit(backend.KindAPT, "jq", "1.7"),
		unit(backend.KindAPT, "curl", "8.5.0"),
	}}

	b := NewBuilder([]backend.Backend{apt}, emptyRegistry())
	inv, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(inv.Entries) != 2 {
		t.Fatalf("expected 2 entries after dedupe, got %d", len(inv.Entries))
	}

	// The later occurrence wins and keeps the first occurrence's position.
	if inv.Entries[0].Identifier != "curl" || inv.Entries[0].Version != "8.5.0" {
		t.Errorf("entry 0 = %s %s, want curl 8.5.0",
			inv.Entries[0].Identifier, inv.Entries[0].Version)
	}
	if inv.Entries[1].Identifier != "jq" {
		t.Errorf("entry 1 = %s, want jq", inv.Entries[1].Identifier)
	}
}

func TestBuildDegradesFailingBackend(t *testing.T) {
	apt := &listBackend{kind: backend.KindAPT, units: []backend.PackageUnit{
		unit(backend.KindAPT, "curl", "8.5.0"),
	}}
	flatpak := &listBackend{
		kind: backend.KindFlatpak,
		err:  backend.NewError(backend.ErrUnavailable, "flatpak not found"),
	}

	b := NewBuilder([]backend.Backend{apt, flatpak}, emptyRegistry())
	inv, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build must not fail when one backend degrades: %v", err)
	}

	if len(inv.Entries) != 1 {
		t.Errorf("expected 1 entry from the healthy backend, got %d", len(inv.Entries))
	}
	if len(inv.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(inv.Issues))
	}
	issue := inv.Issues[0]
	if issue.Kind != backend.KindFlatpak {
		t.Errorf("issue kind = %s, want flatpak", issue.Kind)
	}
	if issue.Err == nil || issue.Err.Kind != backend.ErrUnavailable {
		t.Errorf("issue error = %v, want unavailable", issue.Err)
	}
}

func TestBuildAnnotatesProtection(t *testing.T) {
	apt := &listBackend{kind: backend.KindAPT, units: []backend.PackageUnit{
		unit(backend.KindAPT, "bash", "5.2"),
		unit(backend.KindAPT, "curl", "8.5.0"),
	}}
	registry := protect.NewRegistry(map[backend.Kind][]string{
		backend.KindAPT: {"bash"},
	})

	b := NewBuilder([]backend.Backend{apt}, registry)
	inv, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	bash, ok := inv.Lookup(backend.UnitKey{Kind: backend.KindAPT, Identifier: "bash"})
	if !ok {
		t.Fatal("bash missing from inventory")
	}
	if !bash.Protected {
		t.Error("bash should be annotated protected")
	}

	curl, _ := inv.Lookup(backend.UnitKey{Kind: backend.KindAPT, Identifier: "curl"})
	if curl.Protected {
		t.Error("curl should not be annotated protected")
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder([]backend.Backend{&listBackend{kind: backend.KindAPT}}, emptyRegistry())
	if _, err := b.Build(ctx); err == nil {
		t.Error("expected error from cancelled build")
	}
}

func TestBuildIdempotent(t *testing.T) {
	apt := &listBackend{kind: backend.KindAPT, units: []backend.PackageUnit{
		unit(backend.KindAPT, "curl", "8.5.0"),
		unit(backend.KindAPT, "jq", "1.7"),
	}}
	b := NewBuilder([]backend.Backend{apt}, emptyRegistry())

	first, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	second, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}

	if len(first.Entries) != len(second.Entries) {
		t.Fatalf("builds disagree: %d vs %d entries", len(first.Entries), len(second.Entries))
	}
	for i := range first.Entries {
		if first.Entries[i].Key() != second.Entries[i].Key() {
			t.Errorf("entry %d differs between builds", i)
		}
	}
}
