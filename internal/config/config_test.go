package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uproot/pkg/backend"
	"uproot/pkg/residue"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	if cfg.General.MaxWorkers != 4 {
		t.Errorf("expected 4 workers by default, got %d", cfg.General.MaxWorkers)
	}
	if cfg.General.ListTimeoutSecs != 30 {
		t.Errorf("expected 30s list timeout by default, got %d", cfg.General.ListTimeoutSecs)
	}
	if cfg.General.AutoConfirm {
		t.Error("expected AutoConfirm to be false by default")
	}
	if cfg.General.DryRun {
		t.Error("expected DryRun to be false by default")
	}
	if !cfg.Output.Color {
		t.Error("expected Color to be true by default")
	}

	if cfg.Registry().Len() == 0 {
		t.Error("default protection registry must not be empty")
	}
	if len(cfg.ResidueRules()) == 0 {
		t.Error("default scan rules must not be empty")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config must yield defaults, got error: %v", err)
	}
	if cfg.General.MaxWorkers != 4 {
		t.Errorf("expected default workers, got %d", cfg.General.MaxWorkers)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[general]
auto_confirm = true
max_workers = 2

[output]
color = false
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if !cfg.General.AutoConfirm {
		t.Error("auto_confirm should be overridden to true")
	}
	if cfg.General.MaxWorkers != 2 {
		t.Errorf("max_workers = %d, want 2", cfg.General.MaxWorkers)
	}
	if cfg.Output.Color {
		t.Error("color should be overridden to false")
	}
	// Unset sections keep their defaults.
	if cfg.Registry().Len() == 0 {
		t.Error("protection defaults must survive a partial config")
	}
}

func TestLoadFromBadToml(t *testing.T) {
	path := writeConfig(t, "[general\nbroken")
	if _, err := LoadFrom(path); err == nil {
		t.Error("unparseable config must be an error")
	}
}

func TestLoadFromUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[general]
max_wrokers = 4
`)
	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("unknown key must be an error")
	}
	if !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("error should name the unknown key: %v", err)
	}
}

func TestLoadFromInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
[[scan_rules]]
root = "/"
kind = "config"
`)
	if _, err := LoadFrom(path); err == nil {
		t.Error("a scan rule rooted at / must be rejected")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(c *Config) {}, true},
		{
			"empty protection registry",
			func(c *Config) { c.Protected = ProtectedConfig{} },
			false,
		},
		{
			"missing root",
			func(c *Config) { c.ScanRules = append(c.ScanRules, ScanRule{Kind: "config"}) },
			false,
		},
		{
			"relative root",
			func(c *Config) { c.ScanRules = append(c.ScanRules, ScanRule{Root: "etc", Kind: "config"}) },
			false,
		},
		{
			"filesystem root",
			func(c *Config) { c.ScanRules = append(c.ScanRules, ScanRule{Root: "/", Kind: "config"}) },
			false,
		},
		{
			"unknown kind",
			func(c *Config) { c.ScanRules = append(c.ScanRules, ScanRule{Root: "/etc", Kind: "junk"}) },
			false,
		},
		{
			"bad pattern",
			func(c *Config) { c.ScanRules = append(c.ScanRules, ScanRule{Root: "/etc", Pattern: "[", Kind: "config"}) },
			false,
		},
		{
			"negative workers",
			func(c *Config) { c.General.MaxWorkers = -1 },
			false,
		},
		{
			"home root",
			func(c *Config) { c.ScanRules = append(c.ScanRules, ScanRule{Root: "~/.config/foo", Kind: "config"}) },
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestResidueRules(t *testing.T) {
	cfg := &Config{ScanRules: []ScanRule{
		{Root: "/etc", Kind: "config"},
		{Root: "/var/log", Pattern: "*.log", Kind: "log"},
		{Root: "/opt", Kind: "bogus"},
		{Root: "relative", Kind: "config"},
	}}

	rules := cfg.ResidueRules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules (relative root dropped), got %d", len(rules))
	}
	if rules[0].Kind != residue.KindConfig {
		t.Errorf("rules[0].Kind = %s", rules[0].Kind)
	}
	if rules[1].Pattern != "*.log" {
		t.Errorf("rules[1].Pattern = %q", rules[1].Pattern)
	}
	// Unknown kinds degrade to other instead of dropping the rule.
	if rules[2].Kind != residue.KindOther {
		t.Errorf("rules[2].Kind = %s, want other", rules[2].Kind)
	}
}

func TestRegistryPerKind(t *testing.T) {
	cfg := &Config{Protected: ProtectedConfig{
		APT:  []string{"bash"},
		Snap: []string{"snapd"},
	}}

	reg := cfg.Registry()
	if !reg.Protected(backend.KindAPT, "bash") {
		t.Error("bash should be protected for apt")
	}
	if reg.Protected(backend.KindSnap, "bash") {
		t.Error("bash should not be protected for snap")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.General.MaxWorkers = 8
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.General.MaxWorkers != 8 {
		t.Errorf("max_workers = %d after round trip, want 8", loaded.General.MaxWorkers)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	if got := ExpandHome("~/.config"); got != filepath.Join(home, ".config") {
		t.Errorf("ExpandHome(~/.config) = %q", got)
	}
	if got := ExpandHome("~"); got != home {
		t.Errorf("ExpandHome(~) = %q", got)
	}
	if got := ExpandHome("/etc"); got != "/etc" {
		t.Errorf("absolute paths must pass through, got %q", got)
	}
	if got := ExpandHome("~user/x"); got != "~user/x" {
		t.Errorf("~user form is not expanded, got %q", got)
	}
}

func TestShouldUseColor(t *testing.T) {
	cfg := Default()

	t.Setenv("NO_COLOR", "")
	if !cfg.ShouldUseColor() {
		t.Error("color should be on by default")
	}

	t.Setenv("NO_COLOR", "1")
	if cfg.ShouldUseColor() {
		t.Error("NO_COLOR must disable color")
	}

	t.Setenv("NO_COLOR", "")
	cfg.Output.Color = false
	if cfg.ShouldUseColor() {
		t.Error("config can disable color")
	}
}
