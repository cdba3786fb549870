package cli

import (
	"github.com/spf13/cobra"

	"uproot/internal/journal"
	"uproot/internal/tui"
	"uproot/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal user interface",
	Long: `Launch the interactive terminal user interface (TUI) for uproot.

The TUI provides a visual way to:
  - Browse installed software across all backends
  - Mark several packages and remove them in one batch
  - Scan a package's residue and clean it up
  - Review the operation journal
  - Check backend availability

Navigation:
  - Use arrow keys or j/k to navigate
  - Press 1-4 to switch tabs
  - Press space to mark, r to remove, s to scan
  - Press ? for help
  - Press q to quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Open journal store
	journalStore, err := journal.Open()
	if err != nil {
		ui.WarningMsg("Could not open journal: %v", err)
		// Continue without a journal
	}
	defer func() {
		if journalStore != nil {
			journalStore.Close()
		}
	}()

	return tui.Run(tui.Deps{
		Backends:     backends,
		Builder:      builder,
		Orchestrator: orchestrator,
		Scanner:      scanner,
		Cleaner:      cleaner,
		Journal:      journalStore,
		Config:       cfg,
	})
}
