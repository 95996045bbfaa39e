package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ClearanceAlways = "always"
	ClearanceNever  = "never"
)

// TilerConfig represents options that configure the global behavior of the program
type TilerConfig struct {
	// Smallest beat difference treated as a real difference
	Epsilon float64 `yaml:"epsilon"`

	// HoldingGap is how far beyond the last clip on a track the holding region starts, in beats
	HoldingGap float64 `yaml:"holding_gap"`

	// Clearance is "always" to clear every duplicate destination first, or "never" to skip it
	Clearance string `yaml:"clearance"`

	// StripPreRoll trims pre-roll from tiles of looping clips
	StripPreRoll bool `yaml:"strip_pre_roll"`

	// Tempo in BPM used by the simulated host
	Tempo float64 `yaml:"tempo"`

	LogLevel string `yaml:"log_level"`

	// JournalPath is the SQLite file results are recorded to. Empty disables the journal.
	JournalPath string `yaml:"journal_path"`

	// DeadlineSeconds stops a batch from starting new requests after this long. Zero means no deadline.
	DeadlineSeconds float64 `yaml:"deadline_seconds"`
}

// Create a new TilerConfig object with reasonable defaults for real usage
func NewTilerConfig() TilerConfig {
	return TilerConfig{
		Epsilon:      1e-3,
		HoldingGap:   1024,
		Clearance:    ClearanceAlways,
		StripPreRoll: true,
		Tempo:        120,
		LogLevel:     "info",
	}
}

// LoadTilerConfig reads a YAML file over the defaults. Keys missing from the file keep their default value.
func LoadTilerConfig(path string) (TilerConfig, error) {
	cfg := NewTilerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values can drive the engine.
func (c TilerConfig) Validate() error {
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %v", c.Epsilon)
	}
	if c.HoldingGap <= 0 {
		return fmt.Errorf("holding_gap must be positive, got %v", c.HoldingGap)
	}
	if c.Clearance != ClearanceAlways && c.Clearance != ClearanceNever {
		return fmt.Errorf("clearance must be %q or %q, got %q", ClearanceAlways, ClearanceNever, c.Clearance)
	}
	if c.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %v", c.Tempo)
	}
	if c.DeadlineSeconds < 0 {
		return fmt.Errorf("deadline_seconds cannot be negative, got %v", c.DeadlineSeconds)
	}
	return nil
}
