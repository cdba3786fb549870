package cli

import (
	"os"

	"github.com/spf13/cobra"

	"uproot/internal/config"
	"uproot/internal/executor"
	"uproot/internal/journal"
	"uproot/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose backend and configuration issues",
	Long: `Check backend availability, elevation capability, the residue
scan roots, and the journal database.

Examples:
  uproot doctor             # Run diagnostics`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	issues := 0

	ui.HeaderMsg("Backends")
	for _, be := range backends {
		if be.IsAvailable() {
			ui.SuccessMsg("%s (%s) is available", be.DisplayName(), be.Kind())
		} else {
			ui.MutedMsg("%s (%s) is not available", be.DisplayName(), be.Kind())
		}
	}
	if len(availableBackends()) == 0 {
		ui.ErrorMsg("No backend is available; nothing can be listed or removed")
		issues++
	}

	ui.HeaderMsg("Privileges")
	switch {
	case executor.IsRoot():
		ui.SuccessMsg("Running as root")
	case executor.CanElevate():
		ui.SuccessMsg("Elevation available via %s", executor.ElevationMethod())
	default:
		ui.WarningMsg("Neither pkexec nor sudo found; removals needing privileges will fail")
		issues++
	}

	ui.HeaderMsg("Configuration")
	path := cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		ui.SuccessMsg("Config file: %s", path)
	} else {
		ui.MutedMsg("No config file at %s (using defaults)", path)
	}
	ui.InfoMsg("Protected identifiers: %d", registry.Len())

	ui.HeaderMsg("Residue scan roots")
	for _, rule := range scanner.Rules() {
		if _, err := os.Stat(rule.Root); err == nil {
			ui.SuccessMsg("%s [%s]", rule.Root, rule.Kind)
		} else {
			ui.MutedMsg("%s [%s] does not exist (skipped during scans)", rule.Root, rule.Kind)
		}
	}

	ui.HeaderMsg("Journal")
	if store, err := journal.Open(); err == nil {
		count, _ := store.Count() //nolint:errcheck
		ui.SuccessMsg("Journal database: %s (%d entries)", config.JournalPath(), count)
		_ = store.Close() //nolint:errcheck
	} else {
		ui.WarningMsg("Journal unavailable: %v", err)
		issues++
	}

	ui.HeaderMsg("Summary")
	if issues == 0 {
		ui.SuccessMsg("No issues found! Uproot is ready to use.")
	} else {
		ui.WarningMsg("Found %d issue(s). Some features may not work correctly.", issues)
	}

	return nil
}
