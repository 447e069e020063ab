package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}
	if cfg.Grid.Rows < 1 || cfg.Grid.Cols < 1 || cfg.Grid.Levels < 1 {
		t.Errorf("default grid dimensions invalid: %+v", cfg.Grid)
	}
	if len(cfg.Clades) == 0 {
		t.Fatal("defaults define no clades")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	user := `
seed: 7
grid:
  rows: 3
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading merged config: %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Seed)
	}
	if cfg.Grid.Rows != 3 {
		t.Errorf("grid.rows = %d, want 3", cfg.Grid.Rows)
	}
	// Fields absent from the user file keep their defaults.
	defaults, _ := Load("")
	if cfg.Grid.Cols != defaults.Grid.Cols {
		t.Errorf("grid.cols = %d, want default %d", cfg.Grid.Cols, defaults.Grid.Cols)
	}
}

func TestLoadReplacesCladeList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	user := `
clades:
  - name: a
    proportion: 0.5
    arrival_affinity: 1.0
    division_affinity: 1.0
    ppr: 1.0
    mcr: 0.5
    photosynthetic_reduction: 2.0
    residence: {days: 30}
    g0: {days: 5}
    g1sg2m: {days: 2}
    surplus: {shape: 2.0, scale: 0.5, max: 3.0}
  - name: b
    proportion: 0.5
    arrival_affinity: 1.0
    division_affinity: 1.0
    ppr: 1.0
    mcr: 0.5
    photosynthetic_reduction: 2.0
    residence: {days: 30}
    g0: {days: 5}
    g1sg2m: {days: 2}
    surplus: {shape: 2.0, scale: 0.5, max: 3.0}
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config with clade list: %v", err)
	}
	if len(cfg.Clades) != 2 {
		t.Fatalf("clade count = %d, want 2 (user list must replace defaults)", len(cfg.Clades))
	}
	if cfg.Clades[0].Name != "a" || cfg.Clades[1].Name != "b" {
		t.Errorf("clade names = %q, %q", cfg.Clades[0].Name, cfg.Clades[1].Name)
	}
}

func validConfig() *Config {
	cfg, _ := Load("")
	return cfg
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			"proportions not summing to one",
			func(c *Config) { c.Clades[0].Proportion = 0.9 },
			"proportions",
		},
		{
			"unknown grid shape",
			func(c *Config) { c.Grid.Shape = "triangular" },
			"shape",
		},
		{
			"unknown placement",
			func(c *Config) { c.Population.Placement = "spiral" },
			"placement",
		},
		{
			"unknown refuzz policy",
			func(c *Config) { c.Host.Refuzz = "hourly" },
			"refuzz",
		},
		{
			"zero grid dimension",
			func(c *Config) { c.Grid.Levels = 0 },
			"dimensions",
		},
		{
			"non-positive horizon",
			func(c *Config) { c.HorizonDay = 0 },
			"horizon",
		},
		{
			"non-positive ppr",
			func(c *Config) { c.Clades[0].PPR = 0 },
			"ppr",
		},
		{
			"negative surplus scale",
			func(c *Config) { c.Clades[0].Surplus.Scale = -1 },
			"scale",
		},
		{
			"probability above one",
			func(c *Config) { c.Clades[0].ArrivalAffinity = 1.5 },
			"arrival_affinity",
		},
		{
			"reduction below one",
			func(c *Config) { c.Clades[0].PhotoReduction = 0.5 },
			"reduction",
		},
		{
			"no clades",
			func(c *Config) { c.Clades = nil },
			"clade",
		},
		{
			"negative arrival gap",
			func(c *Config) { c.Arrivals.MeanGapDays = -1 },
			"mean_gap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() accepted an invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidateAcceptsMultiClade(t *testing.T) {
	cfg := validConfig()
	a := cfg.Clades[0]
	b := a
	a.Proportion = 0.6
	b.Proportion = 0.4
	b.Name = "specialist"
	cfg.Clades = []CladeConfig{a, b}

	if err := cfg.Validate(); err != nil {
		t.Errorf("two clades summing to 1.0 rejected: %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := validConfig()
	cfg.Seed = 99
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written yaml: %v", err)
	}
	if back.Seed != 99 {
		t.Errorf("seed after round trip = %d, want 99", back.Seed)
	}
	if len(back.Clades) != len(cfg.Clades) {
		t.Errorf("clade count after round trip = %d, want %d", len(back.Clades), len(cfg.Clades))
	}
}
