package cli

import (
	"github.com/spf13/cobra"

	"uproot/internal/ui"
	"uproot/pkg/residue"
)

var scanBackend string

var scanCmd = &cobra.Command{
	Use:   "scan [package]",
	Short: "Locate leftover files of a package without deleting anything",
	Long: `Scan the configured residue roots for configuration, cache, log,
and data paths matching the package. Nothing is deleted.

Examples:
  uproot scan firefox             # Leftovers of an installed or removed package
  uproot scan -b flatpak spotify  # Disambiguate the backend`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanBackend, "backend", "b", "", "backend owning the package (apt, snap, flatpak, appimage)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := opContext()
	defer cancel()

	inv, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	unit, err := resolveUnit(inv, args[0], scanBackend)
	if err != nil {
		return err
	}

	var candidates []residue.Candidate
	err = ui.WithSpinner("Scanning for residue...", func() error {
		var err error
		candidates, err = scanner.Scan(ctx, unit)
		return err
	})
	if err != nil {
		return err
	}

	ui.PrintCandidates(candidates)
	if len(candidates) > 0 {
		var total int64
		for _, c := range candidates {
			total += c.SizeBytes
		}
		ui.MutedMsg("\n%d path(s), %s reclaimable", len(candidates), ui.FormatSize(total))
		ui.MutedMsg("Run 'uproot clean %s' to delete them", unit.Identifier)
	}

	return nil
}
