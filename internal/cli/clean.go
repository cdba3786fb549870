package cli

import (
	"context"

	"github.com/spf13/cobra"

	"uproot/internal/journal"
	"uproot/internal/ui"
	"uproot/pkg/backend"
	"uproot/pkg/residue"
)

var cleanBackend string

var cleanCmd = &cobra.Command{
	Use:   "clean [package]",
	Short: "Delete leftover files of a package",
	Long: `Scan for leftover files of a package and delete them after
confirmation. Deletion is recursive and cannot be undone; one path's
failure never blocks the remaining paths.

Examples:
  uproot clean firefox            # Scan, confirm, delete
  uproot clean -y old-tool        # Delete without confirmation`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanBackend, "backend", "b", "", "backend owning the package (apt, snap, flatpak, appimage)")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	inv, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	unit, err := resolveUnit(inv, args[0], cleanBackend)
	if err != nil {
		return err
	}

	return cleanUnit(ctx, unit)
}

// cleanUnit scans a unit's residue and deletes it after confirmation.
// Shared by the clean and purge commands.
func cleanUnit(ctx context.Context, unit backend.PackageUnit) error {
	var candidates []residue.Candidate
	err := ui.WithSpinner("Scanning for residue...", func() error {
		var err error
		candidates, err = scanner.Scan(ctx, unit)
		return err
	})
	if err != nil {
		return err
	}
	cleaner.Record(candidates)

	if len(candidates) == 0 {
		ui.MutedMsg("No residue found for %s", unit.Identifier)
		return nil
	}

	ui.PrintCandidates(candidates)
	var total int64
	for _, c := range candidates {
		total += c.SizeBytes
	}
	ui.WarningMsg("Deleting %d path(s) (%s) cannot be undone", len(candidates), ui.FormatSize(total))

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Delete these paths?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	if cfg.General.DryRun {
		ui.MutedMsg("Dry run: nothing deleted")
		return nil
	}

	paths := make([]string, len(candidates))
	for i, c := range candidates {
		paths[i] = c.Path
	}
	results := cleaner.Clean(ctx, paths)

	// Record in journal (ignore errors)
	if store, storeErr := journal.Open(); storeErr == nil {
		_ = store.Record(journal.NewCleanEntry(results)) //nolint:errcheck
		_ = store.Close()                                 //nolint:errcheck
	}

	ui.PrintCleanResults(results)

	var failed int
	for _, r := range results {
		if !r.Succeeded && !r.Cancelled {
			failed++
		}
	}
	if failed > 0 {
		return ErrCleanFailed
	}
	return nil
}
