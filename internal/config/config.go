package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the minimal settings required to boot the triage service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Model   ModelConfig   `yaml:"model"`
	Signals SignalsConfig `yaml:"signals"`
	Cache   CacheConfig   `yaml:"cache"`
	Batch   BatchConfig   `yaml:"batch"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ModelConfig configures the external model signal. When disabled the
// ensemble runs on the rule and lexicon signals alone.
type ModelConfig struct {
	Enabled           bool          `yaml:"enabled"`
	APIKey            string        `yaml:"apiKey"`
	Model             string        `yaml:"model"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
}

// SignalsConfig controls rule-pack loading for the rule signal.
type SignalsConfig struct {
	RulesPath string `yaml:"rulesPath"`
}

// CacheConfig selects and tunes the result and job store backend.
type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend      string        `yaml:"backend"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	ResultTTL    time.Duration `yaml:"resultTTL"`
}

// BatchConfig bounds asynchronous batch processing.
type BatchConfig struct {
	Workers         int           `yaml:"workers"`
	MaxBatchSize    int           `yaml:"maxBatchSize"`
	JobTTL          time.Duration `yaml:"jobTTL"`
	EstimatePerItem time.Duration `yaml:"estimatePerItem"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CIVIC_TRIAGE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Cache.Backend != "memory" && cfg.Cache.Backend != "redis" {
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			GracefulTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Model: ModelConfig{
			Enabled:           false,
			Model:             "claude-3-5-haiku-latest",
			RequestsPerSecond: 2,
			Timeout:           10 * time.Second,
		},
		Signals: SignalsConfig{RulesPath: "configs/rules/default.yaml"},
		Cache: CacheConfig{
			Backend:      "memory",
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			ResultTTL:    time.Hour,
		},
		Batch: BatchConfig{
			Workers:         4,
			MaxBatchSize:    100,
			JobTTL:          24 * time.Hour,
			EstimatePerItem: 2 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CIVIC_TRIAGE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("CIVIC_TRIAGE_MODEL_ENABLED"); v != "" {
		cfg.Model.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_MODEL_NAME"); v != "" {
		cfg.Model.Model = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_MODEL_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Model.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("CIVIC_TRIAGE_MODEL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Model.Timeout = d
		}
	}
	if v := os.Getenv("CIVIC_TRIAGE_RULES_PATH"); v != "" {
		cfg.Signals.RulesPath = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("CIVIC_TRIAGE_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("CIVIC_TRIAGE_CACHE_RESULT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ResultTTL = d
		}
	}
	if v := os.Getenv("CIVIC_TRIAGE_BATCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.Workers = n
		}
	}
	if v := os.Getenv("CIVIC_TRIAGE_BATCH_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Batch.MaxBatchSize = n
		}
	}
	if v := os.Getenv("CIVIC_TRIAGE_BATCH_JOB_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Batch.JobTTL = d
		}
	}
}
