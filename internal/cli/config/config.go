package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ojclient/internal/client/oj"
	"ojclient/internal/client/state"
	"ojclient/pkg/utils/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL         = "http://127.0.0.1:8080"
	DefaultTimeout         = 10 * time.Second
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultPollMaxAttempts = 240
	DefaultRacePolicy      = "last-settled-wins"
)

// Environment overrides, also read from a .env file in the working directory.
const (
	EnvBaseURL  = "OJ_BASE_URL"
	EnvTimeout  = "OJ_TIMEOUT"
	EnvLogLevel = "OJ_LOG_LEVEL"
)

// GravatarConfig sizes the avatar cache.
type GravatarConfig struct {
	CacheSize int           `yaml:"cacheSize"`
	TTL       time.Duration `yaml:"ttl"`
}

// Config holds CLI configuration.
type Config struct {
	BaseURL         string            `yaml:"baseURL"`
	Timeout         time.Duration     `yaml:"timeout"`
	PollInterval    time.Duration     `yaml:"pollInterval"`
	PollMaxAttempts int               `yaml:"pollMaxAttempts"`
	RacePolicy      string            `yaml:"racePolicy"`
	Headers         map[string]string `yaml:"headers"`
	Messages        state.Config      `yaml:"messages"`
	Gravatar        GravatarConfig    `yaml:"gravatar"`
	Log             logger.Config     `yaml:"log"`
	PrettyJSON      *bool             `yaml:"prettyJSON"`
}

// Load reads the YAML file at path, then applies environment overrides and defaults.
// A missing file is not an error; the CLI runs on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file failed: %w", err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read config file failed: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env failed: %w", err)
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = dur
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = DefaultPollMaxAttempts
	}
	if cfg.RacePolicy == "" {
		cfg.RacePolicy = DefaultRacePolicy
	}
	if cfg.Messages.Capacity <= 0 {
		cfg.Messages.Capacity = state.DefaultCapacity
	}
	if cfg.Messages.ShowDuration <= 0 {
		cfg.Messages.ShowDuration = state.DefaultShowDuration
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.OutputPath == "" {
		cfg.Log.OutputPath = "stderr"
	}
	if cfg.PrettyJSON == nil {
		value := true
		cfg.PrettyJSON = &value
	}
}

// Client returns the facade settings.
func (c Config) Client() oj.Config {
	return oj.Config{
		PollInterval:      c.PollInterval,
		PollMaxAttempts:   c.PollMaxAttempts,
		GravatarCacheSize: c.Gravatar.CacheSize,
		GravatarTTL:       c.Gravatar.TTL,
	}
}
