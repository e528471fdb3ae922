package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the lexcase configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generation GenerationConfig `yaml:"generation"`
	Cache      CacheConfig      `yaml:"cache"`
	Journal    JournalConfig    `yaml:"journal"`
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

// CorpusConfig locates the statute and precedent collections.
type CorpusConfig struct {
	LawsPath       string `yaml:"laws_path"`
	PrecedentsPath string `yaml:"precedents_path"`
	SkipMalformed  bool   `yaml:"skip_malformed"`
}

// RetrievalConfig holds index and ranking parameters.
type RetrievalConfig struct {
	RelevanceFloor       *float64 `yaml:"relevance_floor"` // nil = default; 0 is a valid floor
	LawMaxFeatures       int      `yaml:"law_max_features"`
	PrecedentMaxFeatures int      `yaml:"precedent_max_features"`
	TopKLaws             int      `yaml:"top_k_laws"`
	TopKPrecedents       int      `yaml:"top_k_precedents"`
}

// GenerationConfig holds the OpenAI-compatible text-generation provider settings.
type GenerationConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	Temperature *float32 `yaml:"temperature"`
	TopP        float32  `yaml:"top_p"`
	MaxTokens   int      `yaml:"max_tokens"`
}

// CacheConfig holds the optional generation cache. Empty addrs disables it.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// JournalConfig holds the optional ruling journal. Empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the journal is configured.
func (c JournalConfig) Enabled() bool { return c.Path != "" }

// Reference tuning, mirrored by the retrieval and generation packages.
const (
	defaultRelevanceFloor       = 0.04
	defaultLawMaxFeatures       = 60000
	defaultPrecedentMaxFeatures = 80000
	defaultTopK                 = 10
	defaultTemperature          = float32(0.2)
	defaultTopP                 = float32(0.9)
	defaultGenerationTimeoutSec = 180
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.LawsPath == "" {
		c.Corpus.LawsPath = filepath.Join("data", "laws", "laws.jsonl")
	}
	if c.Corpus.PrecedentsPath == "" {
		c.Corpus.PrecedentsPath = filepath.Join("data", "precedents", "precedents.jsonl")
	}
	if c.Retrieval.RelevanceFloor == nil {
		floor := defaultRelevanceFloor
		c.Retrieval.RelevanceFloor = &floor
	}
	if c.Retrieval.LawMaxFeatures == 0 {
		c.Retrieval.LawMaxFeatures = defaultLawMaxFeatures
	}
	if c.Retrieval.PrecedentMaxFeatures == 0 {
		c.Retrieval.PrecedentMaxFeatures = defaultPrecedentMaxFeatures
	}
	if c.Retrieval.TopKLaws == 0 {
		c.Retrieval.TopKLaws = defaultTopK
	}
	if c.Retrieval.TopKPrecedents == 0 {
		c.Retrieval.TopKPrecedents = defaultTopK
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = defaultGenerationTimeoutSec
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// a generate request may take the whole provider timeout
		c.HTTP.WriteTimeoutSec = c.Generation.TimeoutSec + 10
	}
	if c.Generation.Temperature == nil {
		t := defaultTemperature
		c.Generation.Temperature = &t
	}
	if c.Generation.TopP == 0 {
		c.Generation.TopP = defaultTopP
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Floor returns the configured relevance floor. Call after ApplyDefaults.
func (r RetrievalConfig) Floor() float64 {
	if r.RelevanceFloor == nil {
		return defaultRelevanceFloor
	}
	return *r.RelevanceFloor
}

// Temp returns the configured sampling temperature. Call after ApplyDefaults.
func (g GenerationConfig) Temp() float32 {
	if g.Temperature == nil {
		return defaultTemperature
	}
	return *g.Temperature
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if f := c.Retrieval.Floor(); f < 0 || f >= 1 {
		return fmt.Errorf("retrieval.relevance_floor must be in [0, 1), got %g", f)
	}
	if c.Retrieval.LawMaxFeatures < 0 || c.Retrieval.PrecedentMaxFeatures < 0 {
		return errors.New("retrieval.*_max_features must not be negative")
	}
	if c.Retrieval.TopKLaws < 0 || c.Retrieval.TopKPrecedents < 0 {
		return errors.New("retrieval.top_k_* must be positive")
	}
	if c.Generation.BaseURL == "" {
		return errors.New("generation.base_url is required")
	}
	if c.Generation.Model == "" {
		return errors.New("generation.model is required")
	}
	if t := c.Generation.Temp(); t < 0 || t > 2 {
		return fmt.Errorf("generation.temperature must be in [0, 2], got %g", t)
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		return fmt.Errorf("generation.top_p must be in (0, 1], got %g", c.Generation.TopP)
	}
	if c.Generation.MaxTokens < 0 {
		return fmt.Errorf("generation.max_tokens must not be negative, got %d", c.Generation.MaxTokens)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
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
