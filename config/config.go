// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Seed       int64            `yaml:"seed"`
	HorizonDay float64          `yaml:"horizon_days"`
	Grid       GridConfig       `yaml:"grid"`
	Population PopulationConfig `yaml:"population"`
	Arrivals   ArrivalsConfig   `yaml:"arrivals"`
	Host       HostConfig       `yaml:"host"`
	Eviction   EvictionConfig   `yaml:"eviction"`
	Clades     []CladeConfig    `yaml:"clades"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// GridConfig holds host tissue lattice dimensions and adjacency shape.
type GridConfig struct {
	Rows   int    `yaml:"rows"`
	Cols   int    `yaml:"cols"`
	Levels int    `yaml:"levels"`
	Shape  string `yaml:"shape"` // square | hex
}

// PopulationConfig holds the initial seeding parameters.
type PopulationConfig struct {
	Initial   int    `yaml:"initial"`
	Placement string `yaml:"placement"` // randomize | horizontal | vertical | quadrant
}

// ArrivalsConfig holds the arrival renewal process parameters.
type ArrivalsConfig struct {
	MeanGapDays float64 `yaml:"mean_gap_days"` // 0 disables arrivals
}

// HostConfig holds host cell demand parameters.
type HostConfig struct {
	CellDemand float64 `yaml:"cell_demand"` // photosynthate demanded per cell per day
	DemandFuzz float64 `yaml:"demand_fuzz"` // ± fraction applied to cell_demand
	Refuzz     string  `yaml:"refuzz"`      // fixed (once per cell) | daily (each economy pass)
}

// EvictionConfig controls what happens to the individual evicted at mitosis.
type EvictionConfig struct {
	Relocate bool `yaml:"relocate"` // move to an adjacent open cell instead of removal
}

// CladeConfig holds the immutable parameter block for one clade.
type CladeConfig struct {
	Name               string         `yaml:"name"`
	Proportion         float64        `yaml:"proportion"`
	ArrivalAffinity    float64        `yaml:"arrival_affinity"`
	DivisionAffinity   float64        `yaml:"division_affinity"`
	PPR                float64        `yaml:"ppr"` // photosynthate produced per day at the surface
	PPRFuzz            float64        `yaml:"ppr_fuzz"`
	MCR                float64        `yaml:"mcr"` // photosynthate consumed per day in G1SG2M
	MCRFuzz            float64        `yaml:"mcr_fuzz"`
	PhotoReduction     float64        `yaml:"photosynthetic_reduction"` // production divisor at the deepest level
	Residence          PhaseConfig    `yaml:"residence"`
	G0                 PhaseConfig    `yaml:"g0"`
	G1SG2M             PhaseConfig    `yaml:"g1sg2m"`
	G0EscapeProb       float64        `yaml:"g0_escape_prob"`
	G1SG2MEscapeProb   float64        `yaml:"g1sg2m_escape_prob"`
	ParentEvictionProb float64        `yaml:"parent_eviction_prob"`
	Surplus            SurplusConfig  `yaml:"surplus"`
	Mutation           MutationConfig `yaml:"mutation"`
}

// PhaseConfig holds a duration baseline in days and its fuzz fraction.
type PhaseConfig struct {
	Days float64 `yaml:"days"`
	Fuzz float64 `yaml:"fuzz"`
}

// SurplusConfig holds the initial photosynthate surplus distribution.
type SurplusConfig struct {
	Shape float64 `yaml:"shape"`
	Scale float64 `yaml:"scale"`
	Max   float64 `yaml:"max"` // cap on the gamma draw
}

// MutationConfig holds the phenotypic mutation model parameters.
// Magnitudes are gamma draws read as a percentage of the child's baseline PPR.
type MutationConfig struct {
	Prob            float64     `yaml:"prob"`
	DeleteriousProb float64     `yaml:"deleterious_prob"`
	Deleterious     GammaConfig `yaml:"deleterious"`
	Beneficial      GammaConfig `yaml:"beneficial"`
}

// GammaConfig holds shape/scale for a gamma distribution.
type GammaConfig struct {
	Shape float64 `yaml:"shape"`
	Scale float64 `yaml:"scale"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	OutputDir   string `yaml:"output_dir"`
	WriteExits  bool   `yaml:"write_exits"`  // per-symbiont exit detail records
	LogEvents   bool   `yaml:"log_events"`   // per-event debug logging
	ArchivePath string `yaml:"archive_path"` // sqlite run archive (empty = disabled)
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// A user file that declares clades replaces the default clade list
		// rather than merging field-by-field into it.
		var probe struct {
			Clades []CladeConfig `yaml:"clades"`
		}
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if probe.Clades != nil {
			cfg.Clades = nil
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// EffectiveYAML renders the effective configuration as YAML bytes.
func (c *Config) EffectiveYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
