// Package cli implements the command-line interface for uproot.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uproot/internal/config"
	"uproot/internal/executor"
	"uproot/internal/ui"
	"uproot/pkg/backend"
	"uproot/pkg/backend/appimage"
	"uproot/pkg/backend/native"
	"uproot/pkg/backend/universal"
	"uproot/pkg/inventory"
	"uproot/pkg/protect"
	"uproot/pkg/removal"
	"uproot/pkg/residue"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	dryRun  bool
	yes     bool
	verbose bool
	noColor bool

	// Global state
	cfg          *config.Config
	exec         *executor.Executor
	registry     *protect.Registry
	backends     []backend.Backend
	builder      *inventory.Builder
	orchestrator *removal.Orchestrator
	scanner      *residue.Scanner
	cleaner      *residue.Cleaner
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "uproot",
	Short: "Uninstall software and its leftovers across package backends",
	Long: `Uproot removes installed software through the backend that owns it
(APT/DPKG, Snap, Flatpak, or standalone AppImage files) and hunts down
the configuration, cache, and data directories packages leave behind.

System-critical packages are protected and refused in every mode.

Examples:
  uproot list                        # Inventory across all backends
  uproot remove vim                  # Standard removal
  uproot remove --force broken-pkg   # Forced removal, dependency checks bypassed
  uproot scan firefox                # Show leftover files without deleting
  uproot clean firefox               # Delete leftovers after confirmation
  uproot purge old-tool              # Remove, then clean leftovers`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(protectedCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(doctorCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initializeApp sets up the application state.
func initializeApp() error {
	// Load configuration; an unparseable or unsafe config is fatal
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if yes {
		cfg.General.AutoConfirm = true
	}
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}

	// Initialize UI
	ui.Init(cfg.ShouldUseColor())

	exec = executor.New(cfg.General.DryRun, cfg.Output.Verbose)
	registry = cfg.Registry()

	backends = []backend.Backend{
		native.NewAPT(exec),
		universal.NewSnap(exec),
		universal.NewFlatpak(exec),
		appimage.New(exec, cfg.AppImageSearchDirs()),
	}

	builder = inventory.NewBuilder(backends, registry)
	if cfg.General.ListTimeoutSecs > 0 {
		builder.SetListTimeout(listTimeout())
	}

	orchestrator = removal.NewOrchestrator(backends, registry)
	orchestrator.SetWorkers(cfg.General.MaxWorkers)

	rules := cfg.ResidueRules()
	scanner = residue.NewScanner(rules)
	cleaner = residue.NewCleaner(exec, rules)

	return nil
}

func listTimeout() time.Duration {
	return time.Duration(cfg.General.ListTimeoutSecs) * time.Second
}

// opContext returns a context cancelled by SIGINT/SIGTERM so mid-batch
// interrupts yield cancelled results instead of a killed process.
func opContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// availableBackends returns the backends whose tooling is present.
func availableBackends() []backend.Backend {
	var out []backend.Backend
	for _, be := range backends {
		if be.IsAvailable() {
			out = append(out, be)
		}
	}
	return out
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print uproot version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("uproot version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
