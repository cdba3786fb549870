package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"uproot/pkg/backend"
	"uproot/pkg/protect"
	"uproot/pkg/residue"
)

// Config represents the complete uproot configuration.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Output    OutputConfig    `toml:"output"`
	Protected ProtectedConfig `toml:"protected"`
	AppImage  AppImageConfig  `toml:"appimage"`
	ScanRules []ScanRule      `toml:"scan_rules"`
}

// GeneralConfig contains general uproot settings.
type GeneralConfig struct {
	// AutoConfirm skips confirmation prompts when true (like -y flag).
	AutoConfirm bool `toml:"auto_confirm"`

	// DryRun shows what would happen without executing when true.
	DryRun bool `toml:"dry_run"`

	// MaxWorkers bounds concurrent removal targets per batch.
	MaxWorkers int `toml:"max_workers"`

	// ListTimeoutSecs bounds each backend's inventory listing.
	ListTimeoutSecs int `toml:"list_timeout_secs"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	// Color enables colored output (respects NO_COLOR env var).
	Color bool `toml:"color"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`
}

// ProtectedConfig lists identifiers that must never be removed, per backend.
// Entries are exact identifiers; wildcards are not supported.
type ProtectedConfig struct {
	APT      []string `toml:"apt"`
	Snap     []string `toml:"snap"`
	Flatpak  []string `toml:"flatpak"`
	AppImage []string `toml:"appimage"`
}

// AppImageConfig contains AppImage discovery settings.
type AppImageConfig struct {
	// SearchDirs lists the directories scanned for *.AppImage files.
	// A leading "~/" is expanded to the user's home directory.
	SearchDirs []string `toml:"search_dirs"`
}

// ScanRule configures one residue scan root.
type ScanRule struct {
	// Root is the directory to scan. A leading "~/" is expanded.
	Root string `toml:"root"`

	// Pattern filters entry names with glob syntax; empty means "*".
	Pattern string `toml:"pattern"`

	// Kind is one of: config, cache, log, data, other.
	Kind string `toml:"kind"`
}

// Default returns the default configuration.
func Default() *Config {
	defaults := protect.DefaultIdentifiers()
	return &Config{
		General: GeneralConfig{
			AutoConfirm:     false,
			DryRun:          false,
			MaxWorkers:      4,
			ListTimeoutSecs: 30,
		},
		Output: OutputConfig{
			Color:   true,
			Verbose: false,
		},
		Protected: ProtectedConfig{
			APT:      defaults[backend.KindAPT],
			Snap:     defaults[backend.KindSnap],
			Flatpak:  defaults[backend.KindFlatpak],
			AppImage: defaults[backend.KindAppImage],
		},
		AppImage: AppImageConfig{
			SearchDirs: []string{"~/Applications", "~/.local/bin", "~/bin", "/opt"},
		},
		ScanRules: []ScanRule{
			{Root: "/etc", Kind: "config"},
			{Root: "/var/log", Kind: "log"},
			{Root: "/var/lib", Kind: "data"},
			{Root: "/opt", Kind: "data"},
			{Root: "/usr/local", Kind: "other"},
			{Root: "~/.config", Kind: "config"},
			{Root: "~/.cache", Kind: "cache"},
			{Root: "~/.local/share", Kind: "data"},
			{Root: "~/.local/state", Kind: "data"},
		},
	}
}

// Load loads the configuration from the default path.
// A missing config file yields the defaults; an unparseable or invalid file
// is an error, since operating without known protections is unsafe.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that would make removal or
// residue cleaning unsafe.
func (c *Config) Validate() error {
	if c.Registry().Len() == 0 {
		return fmt.Errorf("protection registry is empty")
	}
	for i, rule := range c.ScanRules {
		if rule.Root == "" {
			return fmt.Errorf("scan_rules[%d]: root is required", i)
		}
		root := ExpandHome(rule.Root)
		if !filepath.IsAbs(root) {
			return fmt.Errorf("scan_rules[%d]: root %q is not absolute", i, rule.Root)
		}
		if root == "/" {
			return fmt.Errorf("scan_rules[%d]: refusing to scan /", i)
		}
		if rule.Kind != "" && !residue.Kind(rule.Kind).Valid() {
			return fmt.Errorf("scan_rules[%d]: unknown kind %q", i, rule.Kind)
		}
		if rule.Pattern != "" {
			if _, err := filepath.Match(rule.Pattern, "probe"); err != nil {
				return fmt.Errorf("scan_rules[%d]: bad pattern %q: %w", i, rule.Pattern, err)
			}
		}
	}
	if c.General.MaxWorkers < 0 {
		return fmt.Errorf("general.max_workers must not be negative")
	}
	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// Registry builds the immutable protection registry from the configured
// identifier lists.
func (c *Config) Registry() *protect.Registry {
	return protect.NewRegistry(map[backend.Kind][]string{
		backend.KindAPT:      c.Protected.APT,
		backend.KindSnap:     c.Protected.Snap,
		backend.KindFlatpak:  c.Protected.Flatpak,
		backend.KindAppImage: c.Protected.AppImage,
	})
}

// ResidueRules converts the configured scan rules, expanding "~/" roots.
// Rules whose root cannot be resolved are dropped.
func (c *Config) ResidueRules() []residue.Rule {
	rules := make([]residue.Rule, 0, len(c.ScanRules))
	for _, r := range c.ScanRules {
		root := ExpandHome(r.Root)
		if !filepath.IsAbs(root) {
			continue
		}
		kind := residue.Kind(r.Kind)
		if !kind.Valid() {
			kind = residue.KindOther
		}
		rules = append(rules, residue.Rule{Root: filepath.Clean(root), Pattern: r.Pattern, Kind: kind})
	}
	return rules
}

// AppImageSearchDirs returns the configured AppImage directories with "~/"
// expanded.
func (c *Config) AppImageSearchDirs() []string {
	dirs := make([]string, 0, len(c.AppImage.SearchDirs))
	for _, d := range c.AppImage.SearchDirs {
		dirs = append(dirs, ExpandHome(d))
	}
	return dirs
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}

// ExpandHome replaces a leading "~/" with the current user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
