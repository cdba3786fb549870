package cli

import (
	"context"
	"fmt"

	"uproot/internal/ui"
	"uproot/pkg/backend"
	"uproot/pkg/inventory"
)

func parseKind(name string) (backend.Kind, error) {
	kind := backend.Kind(name)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return kind, nil
}

// resolveUnit maps an identifier argument to an installed unit. When the
// identifier exists under several backends and no --backend was given, the
// user picks one; with --yes the first match wins. Unknown identifiers are
// still dispatched (defaulting to APT) so the owning backend reports the
// not-found diagnostic itself.
func resolveUnit(inv *inventory.Inventory, arg, backendFlag string) (backend.PackageUnit, error) {
	var kind backend.Kind
	if backendFlag != "" {
		var err error
		kind, err = parseKind(backendFlag)
		if err != nil {
			return backend.PackageUnit{}, err
		}
	}

	var matches []inventory.Entry
	for _, e := range inv.Entries {
		if e.Identifier != arg {
			continue
		}
		if kind != "" && e.Kind != kind {
			continue
		}
		matches = append(matches, e)
	}

	switch {
	case len(matches) == 1:
		return matches[0].PackageUnit, nil
	case len(matches) > 1:
		if cfg.General.AutoConfirm {
			return matches[0].PackageUnit, nil
		}
		entry, err := ui.SelectEntry(matches, fmt.Sprintf("%q is installed via multiple backends", arg))
		if err != nil {
			return backend.PackageUnit{}, err
		}
		return entry.PackageUnit, nil
	}

	// Not installed (or listing degraded). Dispatch anyway and let the
	// backend produce the not-found diagnostic.
	if kind == "" {
		kind = backend.KindAPT
	}
	return backend.PackageUnit{Identifier: arg, DisplayName: arg, Kind: kind}, nil
}

// resolveUnits maps identifier arguments to installed units, building the
// inventory once.
func resolveUnits(ctx context.Context, args []string, backendFlag string) ([]backend.PackageUnit, error) {
	if len(args) == 0 {
		return nil, ErrNoTargets
	}

	inv, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	units := make([]backend.PackageUnit, 0, len(args))
	for _, arg := range args {
		unit, err := resolveUnit(inv, arg, backendFlag)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// resolveTargets maps identifier arguments to removal targets.
func resolveTargets(ctx context.Context, args []string, backendFlag string) ([]backend.UnitKey, error) {
	units, err := resolveUnits(ctx, args, backendFlag)
	if err != nil {
		return nil, err
	}

	targets := make([]backend.UnitKey, 0, len(units))
	for _, unit := range units {
		targets = append(targets, backend.UnitKey{Kind: unit.Kind, Identifier: unit.Identifier})
	}
	return targets, nil
}
