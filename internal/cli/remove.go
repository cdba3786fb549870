package cli

import (
	"github.com/spf13/cobra"

	"uproot/internal/journal"
	"uproot/internal/ui"
	"uproot/pkg/backend"
	"uproot/pkg/removal"
)

var (
	removeForce   bool
	removePurge   bool
	removeBackend string
)

var removeCmd = &cobra.Command{
	Use:     "remove [packages...]",
	Aliases: []string{"uninstall", "rm"},
	Short:   "Remove one or more packages",
	Long: `Remove packages through the backend that owns them. Protected
packages are refused in every mode.

Forced mode deletes the package's files directly and then forces the
backend's own removal, bypassing dependency checks. Other packages may
stop working afterwards.

Examples:
  uproot remove vim                   # Standard removal
  uproot remove -y firefox chromium   # Remove without confirmation
  uproot remove -b snap spotify       # Disambiguate the backend
  uproot remove --force broken-pkg    # Forced removal
  uproot remove --purge-residue vim   # Remove, then clean leftovers`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&removeForce, "force", false, "bypass dependency checks and delete files directly")
	removeCmd.Flags().BoolVar(&removePurge, "purge-residue", false, "also delete leftover files of successfully removed packages")
	removeCmd.Flags().StringVarP(&removeBackend, "backend", "b", "", "backend owning the packages (apt, snap, flatpak, appimage)")
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	units, err := resolveUnits(ctx, args, removeBackend)
	if err != nil {
		return err
	}
	targets := make([]backend.UnitKey, 0, len(units))
	for _, unit := range units {
		targets = append(targets, backend.UnitKey{Kind: unit.Kind, Identifier: unit.Identifier})
	}

	mode := backend.ModeStandard
	if removeForce {
		mode = backend.ModeForced
		ui.WarningMsg("Forced removal bypasses dependency checks; dependent software may break")
	}

	ui.InfoMsg("Removing %d package(s)", len(targets))
	for _, t := range targets {
		ui.MutedMsg("  - %s [%s]", t.Identifier, t.Kind)
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Proceed with removal?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	results := orchestrator.Remove(ctx, targets, mode)

	// Record in journal (ignore errors)
	if store, storeErr := journal.Open(); storeErr == nil {
		_ = store.Record(journal.NewRemovalEntry(mode, results)) //nolint:errcheck
		_ = store.Close()                                         //nolint:errcheck
	}

	ui.PrintRemovalResults(results)

	summary := removal.Summarize(results)
	ui.MutedMsg("\n%d removed, %d failed, %d cancelled", summary.Succeeded, summary.Failed, summary.Cancelled)

	if removePurge {
		// Residue of failed or cancelled targets is left alone.
		for i, r := range results {
			if r.Status != backend.StatusSucceeded {
				continue
			}
			if err := cleanUnit(ctx, units[i]); err != nil {
				return err
			}
		}
	}

	if summary.Failed > 0 {
		return ErrRemovalFailed
	}
	return nil
}
