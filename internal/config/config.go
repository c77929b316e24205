// Package config loads the YAML configuration that wires storage,
// index, search, and logging settings together, following the nested
// yaml-tagged struct shape of kailas-cloud-vecdex's internal/config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document for the irtree engine.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects and configures the page store backend.
type StorageConfig struct {
	Backend        string `yaml:"backend"` // "disk" or "memory"
	DataDir        string `yaml:"data_dir"`
	PageSize       int    `yaml:"page_size"`
	BufferPoolSize int    `yaml:"buffer_pool_size"`
}

// IndexConfig holds the tunable properties of the R-tree backing the index.
type IndexConfig struct {
	TreeVariant              string  `yaml:"tree_variant"` // linear, quadratic, rstar
	FillFactor               float64 `yaml:"fill_factor"`
	IndexCapacity            int     `yaml:"index_capacity"`
	LeafCapacity             int     `yaml:"leaf_capacity"`
	NearMinimumOverlapFactor int     `yaml:"near_minimum_overlap_factor"`
	SplitDistributionFactor  float64 `yaml:"split_distribution_factor"`
	ReinsertFactor           float64 `yaml:"reinsert_factor"`
	Dimension                int     `yaml:"dimension"`
	NumClusters              int     `yaml:"num_clusters"`
}

// SearchConfig configures combinedScore and top-k behavior.
type SearchConfig struct {
	Alpha       float64 `yaml:"alpha"`
	MaxD        float64 `yaml:"max_distance"`
	DefaultTopK int     `yaml:"default_top_k"`
}

// LoggingConfig selects the zap environment/level.
type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// MetricsConfig toggles the Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads and validates configuration from a YAML file, expanding
// ${VAR} / ${VAR:-default} references against the process environment.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: invalid: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with reasonable defaults for a
// freshly created tree.
func (c *Config) ApplyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.PageSize <= 0 {
		c.Storage.PageSize = 16384
	}
	if c.Storage.BufferPoolSize <= 0 {
		c.Storage.BufferPoolSize = 64
	}
	if c.Index.TreeVariant == "" {
		c.Index.TreeVariant = "rstar"
	}
	if c.Index.FillFactor <= 0 {
		c.Index.FillFactor = 0.4
	}
	if c.Index.IndexCapacity <= 0 {
		c.Index.IndexCapacity = 50
	}
	if c.Index.LeafCapacity <= 0 {
		c.Index.LeafCapacity = 50
	}
	if c.Index.NearMinimumOverlapFactor <= 0 {
		c.Index.NearMinimumOverlapFactor = 32
	}
	if c.Index.SplitDistributionFactor <= 0 {
		c.Index.SplitDistributionFactor = 0.4
	}
	if c.Index.ReinsertFactor <= 0 {
		c.Index.ReinsertFactor = 0.3
	}
	if c.Index.Dimension <= 0 {
		c.Index.Dimension = 2
	}
	if c.Search.Alpha <= 0 {
		c.Search.Alpha = 0.5
	}
	if c.Search.MaxD <= 0 {
		c.Search.MaxD = 1.0
	}
	if c.Search.DefaultTopK <= 0 {
		c.Search.DefaultTopK = 10
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks cross-field constraints on the loaded configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Index.TreeVariant) {
	case "linear", "quadratic", "rstar":
	default:
		return fmt.Errorf("index.tree_variant must be linear, quadratic, or rstar, got %q", c.Index.TreeVariant)
	}
	if c.Index.FillFactor <= 0 || c.Index.FillFactor >= 1 {
		return fmt.Errorf("index.fill_factor must be in (0, 1), got %v", c.Index.FillFactor)
	}
	if c.Index.IndexCapacity < 3 {
		return fmt.Errorf("index.index_capacity must be >= 3, got %d", c.Index.IndexCapacity)
	}
	if c.Index.LeafCapacity < 3 {
		return fmt.Errorf("index.leaf_capacity must be >= 3, got %d", c.Index.LeafCapacity)
	}
	if c.Index.Dimension < 2 {
		return fmt.Errorf("index.dimension must be >= 2, got %d", c.Index.Dimension)
	}
	if c.Index.SplitDistributionFactor <= 0 || c.Index.SplitDistributionFactor >= 1 {
		return fmt.Errorf("index.split_distribution_factor must be in (0, 1), got %v", c.Index.SplitDistributionFactor)
	}
	if c.Index.ReinsertFactor <= 0 || c.Index.ReinsertFactor >= 1 {
		return fmt.Errorf("index.reinsert_factor must be in (0, 1), got %v", c.Index.ReinsertFactor)
	}
	maxCap := c.Index.IndexCapacity
	if c.Index.LeafCapacity < maxCap {
		maxCap = c.Index.LeafCapacity
	}
	if c.Index.NearMinimumOverlapFactor < 1 || c.Index.NearMinimumOverlapFactor > maxCap {
		return fmt.Errorf("index.near_minimum_overlap_factor must be in [1, %d], got %d", maxCap, c.Index.NearMinimumOverlapFactor)
	}
	switch c.Storage.Backend {
	case "disk", "memory":
	default:
		return fmt.Errorf("storage.backend must be disk or memory, got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "disk" && c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required when storage.backend is disk")
	}
	return nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
