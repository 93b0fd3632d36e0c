package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the placedex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Stats     StatsConfig     `yaml:"stats"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
	// DataQualityWarnings enables a warn log whenever an index hit is missing
	// an expected field (category, address) and a default is substituted.
	DataQualityWarnings bool `yaml:"data_quality_warnings"`
}

// AuthConfig holds API authentication settings.
// APIKeys maps a bearer token to the account it authenticates.
type AuthConfig struct {
	APIKeys map[string]string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EndpointConfig holds the connection settings for one index store.
type EndpointConfig struct {
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	IndexName string   `yaml:"index_name"`
}

// IndexConfig holds the two document index handles: the primary store serving
// text/filter search and aggregations, and the vector-enabled store serving
// KNN recommendation queries.
type IndexConfig struct {
	Primary           EndpointConfig `yaml:"primary"`
	Vector            EndpointConfig `yaml:"vector"`
	RequestTimeoutSec int            `yaml:"request_timeout_sec"`
	ReadinessTimeout  int            `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds query construction settings.
type SearchConfig struct {
	// City constrains every query to the served metropolitan area.
	City            string `yaml:"city"`
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	KNNK            int    `yaml:"knn_k"`
	KNNCandidates   int    `yaml:"knn_candidates"`
}

// StatsConfig holds aggregation caps.
type StatsConfig struct {
	RatingTopN    int `yaml:"rating_top_n"`
	CategoryTopN  int `yaml:"category_top_n"`
	RegionTopN    int `yaml:"region_top_n"`
	ListingCap    int `yaml:"listing_cap"`
	HeatmapCap    int `yaml:"heatmap_cap"`
}

// StorageConfig holds key naming settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	Provider          string `yaml:"provider"`
	Model             string `yaml:"model"`
	Dimensions        int    `yaml:"dimensions"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Index.Primary.IndexName == "" {
		c.Index.Primary.IndexName = "places:idx"
	}
	if c.Index.Vector.IndexName == "" {
		c.Index.Vector.IndexName = "places:vec:idx"
	}
	if c.Index.RequestTimeoutSec <= 0 {
		c.Index.RequestTimeoutSec = 5
	}
	if c.Index.ReadinessTimeout <= 0 {
		c.Index.ReadinessTimeout = 10
	}
	if c.Search.City == "" {
		c.Search.City = "Chicago"
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.KNNK <= 0 {
		c.Search.KNNK = 5
	}
	if c.Search.KNNCandidates <= 0 {
		c.Search.KNNCandidates = 50
	}
	if c.Stats.RatingTopN <= 0 {
		c.Stats.RatingTopN = 10
	}
	if c.Stats.CategoryTopN <= 0 {
		c.Stats.CategoryTopN = 10
	}
	if c.Stats.RegionTopN <= 0 {
		c.Stats.RegionTopN = 50
	}
	if c.Stats.ListingCap <= 0 {
		c.Stats.ListingCap = 100
	}
	if c.Stats.HeatmapCap <= 0 {
		c.Stats.HeatmapCap = 1000
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "placedex:"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.RequestTimeoutSec <= 0 {
		c.Embedding.RequestTimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Index.Primary.Addrs) == 0 {
		return fmt.Errorf("index.primary.addrs is required")
	}
	if len(c.Index.Vector.Addrs) == 0 {
		return fmt.Errorf("index.vector.addrs is required")
	}
	if c.Search.KNNCandidates < c.Search.KNNK {
		return fmt.Errorf(
			"search.knn_candidates must be >= search.knn_k, got %d < %d",
			c.Search.KNNCandidates, c.Search.KNNK,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
