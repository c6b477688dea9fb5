package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/fee-simulator/internal/mempool"
)

// Source selection values accepted by the CLI, YAML, and environment.
const (
	SourceAuto      = ""
	SourceLive      = "live"
	SourceSnapshot  = "snapshot"
	SourceSynthetic = "synthetic"
)

const (
	// DefaultBlockSize is the standard block weight limit expressed in
	// vbytes (4,000,000 weight units / 4).
	DefaultBlockSize = 1_000_000

	defaultPort           = "8080"
	defaultFetchTimeout   = 10 * time.Second
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	BlockSize      int64         `yaml:"block_size"`
	Source         string        `yaml:"source"`
	APIURL         string        `yaml:"api_url"`
	FetchTimeout   time.Duration `yaml:"-"`
	SnapshotPath   string        `yaml:"snapshot_path"`
	SyntheticCount int           `yaml:"synthetic_count"`
	TopN           int           `yaml:"top"`

	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  time.Duration `yaml:"-"`
	ReadHeaderTimeout    time.Duration `yaml:"-"`
	WriteTimeout         time.Duration `yaml:"-"`
	IdleTimeout          time.Duration `yaml:"-"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimitRPS         float64       `yaml:"-"`
	RateLimitBurst       int           `yaml:"-"`
}

// yamlConfig represents the YAML configuration file structure. Durations are
// strings so operators can write "10s" rather than nanosecond counts.
type yamlConfig struct {
	BlockSize            int64         `yaml:"block_size"`
	Source               string        `yaml:"source"`
	APIURL               string        `yaml:"api_url"`
	FetchTimeout         string        `yaml:"fetch_timeout"`
	SnapshotPath         string        `yaml:"snapshot_path"`
	SyntheticCount       int           `yaml:"synthetic_count"`
	TopN                 int           `yaml:"top"`
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	BlockSize      *int64
	Source         *string
	APIURL         *string
	SnapshotPath   *string
	SyntheticCount *int
	TopN           *int
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	applyEnvConfig(&cfg)

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		BlockSize:            DefaultBlockSize,
		Source:               SourceAuto,
		APIURL:               mempool.DefaultAPIURL,
		FetchTimeout:         defaultFetchTimeout,
		SyntheticCount:       mempool.DefaultSyntheticCount,
		TopN:                 12,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.BlockSize > 0 {
		cfg.BlockSize = yamlCfg.BlockSize
	}

	if yamlCfg.Source != "" {
		cfg.Source = yamlCfg.Source
	}

	if yamlCfg.APIURL != "" {
		cfg.APIURL = yamlCfg.APIURL
	}

	if yamlCfg.SnapshotPath != "" {
		cfg.SnapshotPath = yamlCfg.SnapshotPath
	}

	if yamlCfg.SyntheticCount > 0 {
		cfg.SyntheticCount = yamlCfg.SyntheticCount
	}

	if yamlCfg.TopN > 0 {
		cfg.TopN = yamlCfg.TopN
	}

	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{yamlCfg.FetchTimeout, &cfg.FetchTimeout},
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	} {
		if d.raw == "" {
			continue
		}
		if parsed, err := time.ParseDuration(d.raw); err == nil {
			*d.dst = parsed
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	if yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv("BLOCK_SIZE")); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.BlockSize = value
		}
	}

	if url := strings.TrimSpace(os.Getenv("MEMPOOL_API_URL")); url != "" {
		cfg.APIURL = url
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.BlockSize != nil && *overrides.BlockSize > 0 {
		cfg.BlockSize = *overrides.BlockSize
	}

	if overrides.Source != nil && *overrides.Source != "" {
		cfg.Source = *overrides.Source
	}

	if overrides.APIURL != nil && *overrides.APIURL != "" {
		cfg.APIURL = *overrides.APIURL
	}

	if overrides.SnapshotPath != nil && *overrides.SnapshotPath != "" {
		cfg.SnapshotPath = *overrides.SnapshotPath
	}

	if overrides.SyntheticCount != nil && *overrides.SyntheticCount > 0 {
		cfg.SyntheticCount = *overrides.SyntheticCount
	}

	if overrides.TopN != nil && *overrides.TopN > 0 {
		cfg.TopN = *overrides.TopN
	}

	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("block size must be a positive number of vbytes, got %d", cfg.BlockSize)
	}
	switch cfg.Source {
	case SourceAuto, SourceLive, SourceSnapshot, SourceSynthetic:
	default:
		return fmt.Errorf("unknown source %q (want live, snapshot, or synthetic)", cfg.Source)
	}
	if cfg.Source == SourceSnapshot && cfg.SnapshotPath == "" {
		return fmt.Errorf("snapshot source requires a snapshot path")
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
