package cli

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"uproot/internal/ui"
	"uproot/pkg/backend"
	"uproot/pkg/inventory"
)

var (
	listBackend string
	listPattern string
	listLimit   int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed software across all backends",
	Long: `Build an inventory of installed software from every available
backend. Unavailable backends are reported and skipped.

Examples:
  uproot list                   # Everything
  uproot list -b snap           # Snaps only
  uproot list -p fire           # Names containing 'fire'
  uproot list -l 20             # First 20 entries`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listBackend, "backend", "b", "", "restrict to one backend (apt, snap, flatpak, appimage)")
	listCmd.Flags().StringVarP(&listPattern, "pattern", "p", "", "filter by name substring")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "limit number of results")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	var inv *inventory.Inventory
	err := ui.WithSpinner("Building inventory...", func() error {
		var err error
		inv, err = builder.Build(ctx)
		return err
	})
	if err != nil {
		return err
	}

	for _, issue := range inv.Issues {
		ui.WarningMsg("%s unavailable: %v", issue.Kind, issue.Err)
	}

	entries := inv.Entries
	if listBackend != "" {
		kind, err := parseKind(listBackend)
		if err != nil {
			return err
		}
		entries = filterByKind(entries, kind)
	}
	if listPattern != "" {
		entries = filterByPattern(entries, listPattern)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].Identifier < entries[j].Identifier
	})

	if listLimit > 0 && len(entries) > listLimit {
		entries = entries[:listLimit]
	}

	ui.PrintEntries(entries)
	ui.MutedMsg("\nTotal: %d package(s)", len(entries))

	return nil
}

func filterByKind(entries []inventory.Entry, kind backend.Kind) []inventory.Entry {
	var out []inventory.Entry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func filterByPattern(entries []inventory.Entry, pattern string) []inventory.Entry {
	pattern = strings.ToLower(pattern)
	var out []inventory.Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Identifier), pattern) ||
			strings.Contains(strings.ToLower(e.DisplayName), pattern) {
			out = append(out, e)
		}
	}
	return out
}
