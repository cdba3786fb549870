package cli

import (
	"github.com/spf13/cobra"

	"uproot/internal/journal"
	"uproot/internal/ui"
	"uproot/pkg/backend"
	"uproot/pkg/removal"
)

var (
	purgeForce   bool
	purgeBackend string
)

var purgeCmd = &cobra.Command{
	Use:   "purge [package]",
	Short: "Remove a package and delete its leftovers",
	Long: `Remove a package, then scan for and delete the files it left
behind. Equivalent to 'uproot remove' followed by 'uproot clean'.

Examples:
  uproot purge old-tool           # Remove and clean up
  uproot purge --force broken-pkg # Forced removal first`,
	Args: cobra.ExactArgs(1),
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeForce, "force", false, "bypass dependency checks and delete files directly")
	purgeCmd.Flags().StringVarP(&purgeBackend, "backend", "b", "", "backend owning the package (apt, snap, flatpak, appimage)")
}

func runPurge(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	inv, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	unit, err := resolveUnit(inv, args[0], purgeBackend)
	if err != nil {
		return err
	}

	mode := backend.ModeStandard
	if purgeForce {
		mode = backend.ModeForced
		ui.WarningMsg("Forced removal bypasses dependency checks; dependent software may break")
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Remove "+unit.Identifier+" and delete its leftovers?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	targets := []backend.UnitKey{{Kind: unit.Kind, Identifier: unit.Identifier}}
	results := orchestrator.Remove(ctx, targets, mode)

	if store, storeErr := journal.Open(); storeErr == nil {
		_ = store.Record(journal.NewRemovalEntry(mode, results)) //nolint:errcheck
		_ = store.Close()                                         //nolint:errcheck
	}

	ui.PrintRemovalResults(results)

	summary := removal.Summarize(results)
	if summary.Succeeded == 0 {
		// Residue of a failed removal is left alone; a rerun after the
		// cause is fixed will still find it.
		return ErrRemovalFailed
	}

	return cleanUnit(ctx, unit)
}
