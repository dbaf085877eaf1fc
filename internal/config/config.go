// Package config loads YAML configuration by environment name with ${VAR}
// expansion, defaults, and validation.
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

// Config holds the profile search API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Search     SearchConfig     `yaml:"search"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // label for logs and metrics
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheTTL   int    `yaml:"cache_ttl_sec"` // 0 = no expiry
}

// CompletionConfig holds the chat completion model settings for query
// enhancement and re-ranking.
type CompletionConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	CacheSize   int     `yaml:"enhancement_cache_size"`
}

// SearchConfig holds fusion and re-ranking tunables.
type SearchConfig struct {
	ExactVectorWeight     float64  `yaml:"exact_vector_weight"`
	ExactLexicalWeight    float64  `yaml:"exact_lexical_weight"`
	SemanticVectorWeight  float64  `yaml:"semantic_vector_weight"`
	SemanticLexicalWeight float64  `yaml:"semantic_lexical_weight"`
	ConfidenceThreshold   int      `yaml:"confidence_threshold"`
	CandidateMultiplier   int      `yaml:"candidate_multiplier"`
	GenericTitles         []string `yaml:"generic_titles"`
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
		// LLM re-ranking can keep a request open well past typical API budgets.
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1024
	}
	if c.Completion.MaxTokens <= 0 {
		c.Completion.MaxTokens = 1024
	}
	if c.Completion.CacheSize <= 0 {
		c.Completion.CacheSize = 1024
	}
	if c.Search.ExactVectorWeight <= 0 {
		c.Search.ExactVectorWeight = 0.3
	}
	if c.Search.ExactLexicalWeight <= 0 {
		c.Search.ExactLexicalWeight = 0.7
	}
	if c.Search.SemanticVectorWeight <= 0 {
		c.Search.SemanticVectorWeight = 0.7
	}
	if c.Search.SemanticLexicalWeight <= 0 {
		c.Search.SemanticLexicalWeight = 0.3
	}
	if c.Search.ConfidenceThreshold <= 0 {
		c.Search.ConfidenceThreshold = 40
	}
	if c.Search.CandidateMultiplier <= 0 {
		c.Search.CandidateMultiplier = 2
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Completion.Model == "" {
		return fmt.Errorf("completion.model is required")
	}
	if sum := c.Search.ExactVectorWeight + c.Search.ExactLexicalWeight; !weightSumOK(sum) {
		return fmt.Errorf("exact fusion weights must sum to 1.0, got %g", sum)
	}
	if sum := c.Search.SemanticVectorWeight + c.Search.SemanticLexicalWeight; !weightSumOK(sum) {
		return fmt.Errorf("semantic fusion weights must sum to 1.0, got %g", sum)
	}
	if c.Search.ConfidenceThreshold > 100 {
		return fmt.Errorf("search.confidence_threshold must be at most 100, got %d", c.Search.ConfidenceThreshold)
	}
	return nil
}

func weightSumOK(sum float64) bool {
	return sum > 0.999 && sum < 1.001
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
