package cli

import (
	"github.com/spf13/cobra"

	"uproot/internal/ui"
	"uproot/pkg/backend"
)

var protectedCmd = &cobra.Command{
	Use:   "protected",
	Short: "List packages that uproot refuses to remove",
	Long: `Show the protection registry: identifiers that are refused in
both standard and forced mode. Entries are exact matches, configured in
the [protected] section of the config file.`,
	RunE: runProtected,
}

func runProtected(cmd *cobra.Command, args []string) error {
	ui.HeaderMsg("Protected packages")

	for _, kind := range backend.Kinds() {
		identifiers := registry.Identifiers(kind)
		if len(identifiers) == 0 {
			continue
		}
		ui.InfoMsg("%s (%d)", kind, len(identifiers))
		for _, id := range identifiers {
			ui.MutedMsg("  %s %s", ui.SymbolLock, id)
		}
	}

	ui.MutedMsg("\nTotal: %d identifier(s)", registry.Len())
	return nil
}
