package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all personagen configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Population source
	Population PopulationConfig `yaml:"population"`

	// Optional text-generation collaborator
	LLM LLMConfig `yaml:"llm"`

	// Pipeline tuning
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// PopulationConfig configures the read-only population repository.
type PopulationConfig struct {
	// DatabasePath points at the SQLite users database. When empty the CLI
	// falls back to a deterministic synthetic population.
	DatabasePath string `yaml:"database_path"`
	Table        string `yaml:"table"`

	// SampleSize caps the in-memory population; 0 keeps everything.
	SampleSize int `yaml:"sample_size"`
}

// LLMConfig configures the text-generation collaborator. The collaborator is
// advisory only: every caller has a deterministic fallback, and it must be
// safe to construct with no credential present.
type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// PipelineConfig configures filtering and clustering behavior.
type PipelineConfig struct {
	// KMin/KMax bound the cluster-count scan. Zero values defer to the
	// intent-specific ranges.
	KMin int `yaml:"k_min"`
	KMax int `yaml:"k_max"`

	// MinClusterPct drops clusters smaller than this fraction of the subset.
	MinClusterPct float64 `yaml:"min_cluster_pct"`

	// MaxPersonas truncates output after sorting by size.
	MaxPersonas int `yaml:"max_personas"`

	// MinSubset is the minimum usable filtered-subset size; below it the
	// pipeline returns an empty persona list with a warning.
	MinSubset int `yaml:"min_subset"`

	// SubsetCap down-samples oversized subsets deterministically.
	SubsetCap int `yaml:"subset_cap"`

	// RelaxationSize is the top-slice size taken when strict filtering
	// yields an empty subset.
	RelaxationSize int `yaml:"relaxation_size"`

	// Seed drives every deterministic random choice (down-sampling, KMeans).
	Seed int64 `yaml:"seed"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "personagen",
		Version: "0.1.0",

		Population: PopulationConfig{
			DatabasePath: "",
			Table:        "users",
			SampleSize:   5000,
		},

		LLM: LLMConfig{
			Enabled: false,
			Model:   "gemini-2.0-flash",
			Timeout: "20s",
		},

		Pipeline: PipelineConfig{
			KMin:           0, // intent-dependent
			KMax:           0,
			MinClusterPct:  0.03,
			MaxPersonas:    6,
			MinSubset:      100,
			SubsetCap:      2000,
			RelaxationSize: 1000,
			Seed:           42,
		},

		Logging: LoggingConfig{
			Dir:   ".personagen",
			Debug: false,
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if v := os.Getenv("PERSONAGEN_ENABLE_LLM"); v == "1" || v == "true" {
		c.LLM.Enabled = true
	}
	if path := os.Getenv("PERSONAGEN_DB"); path != "" {
		c.Population.DatabasePath = path
	}
}

// GetLLMTimeout returns the collaborator timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// Validate checks pipeline tuning for configuration errors. These fail fast,
// before any filtering or clustering work begins.
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.KMin < 0 || p.KMax < 0 {
		return fmt.Errorf("k range must be non-negative: k_min=%d k_max=%d", p.KMin, p.KMax)
	}
	if (p.KMin == 0) != (p.KMax == 0) {
		return fmt.Errorf("k_min and k_max must both be set or both be zero: k_min=%d k_max=%d", p.KMin, p.KMax)
	}
	if p.KMin > 0 {
		if p.KMin < 2 {
			return fmt.Errorf("k_min must be at least 2, got %d", p.KMin)
		}
		if p.KMin > p.KMax {
			return fmt.Errorf("invalid k range: k_min=%d > k_max=%d", p.KMin, p.KMax)
		}
	}
	if p.MinClusterPct < 0 || p.MinClusterPct >= 1 {
		return fmt.Errorf("min_cluster_pct must be in [0,1), got %v", p.MinClusterPct)
	}
	if p.MaxPersonas <= 0 {
		return fmt.Errorf("max_personas must be positive, got %d", p.MaxPersonas)
	}
	if p.MinSubset <= 0 {
		return fmt.Errorf("min_subset must be positive, got %d", p.MinSubset)
	}
	if p.SubsetCap < p.MinSubset {
		return fmt.Errorf("subset_cap %d below min_subset %d", p.SubsetCap, p.MinSubset)
	}
	if p.RelaxationSize <= 0 {
		return fmt.Errorf("relaxation_size must be positive, got %d", p.RelaxationSize)
	}
	return nil
}
