package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"uproot/internal/journal"
	"uproot/internal/ui"
)

var (
	historyLimit     int
	historyPruneDays int
	historyClear     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the journal of removal and clean operations",
	Long: `Display the journal of destructive operations performed by uproot.
The journal is an audit log; it is never used to decide future behavior.

Examples:
  uproot history                # Show recent operations
  uproot history -l 20          # Show last 20 operations
  uproot history --prune 90     # Drop entries older than 90 days`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "number of entries to show")
	historyCmd.Flags().IntVar(&historyPruneDays, "prune", 0, "remove entries older than this many days")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "remove all entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := journal.Open()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer store.Close()

	if historyClear {
		if err := store.Clear(); err != nil {
			return err
		}
		ui.SuccessMsg("Journal cleared")
		return nil
	}

	if historyPruneDays > 0 {
		deleted, err := store.Prune(time.Duration(historyPruneDays) * 24 * time.Hour)
		if err != nil {
			return err
		}
		ui.SuccessMsg("Pruned %d entries", deleted)
		return nil
	}

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if len(entries) == 0 {
		ui.MutedMsg("No journal entries found")
		return nil
	}

	ui.HeaderMsg("Operation Journal")

	for i, entry := range entries {
		fmt.Printf("%2d. %s\n", i+1, entry.Summary())
		for _, item := range entry.Items {
			switch {
			case item.Succeeded:
				ui.MutedMsg("      %s %s", ui.Green(ui.SymbolSuccess), item.Identifier)
			case item.Cancelled:
				ui.MutedMsg("      %s %s (cancelled)", ui.SymbolCancelled, item.Identifier)
			default:
				ui.MutedMsg("      %s %s: %s", ui.Red(ui.SymbolError), item.Identifier, item.Detail)
			}
		}
	}

	return nil
}
