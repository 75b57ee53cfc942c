// Package config loads the qamatch.yaml file used by the command line tool.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/qamatch/ai"
	"github.com/poiesic/qamatch/confirm"
	"github.com/poiesic/qamatch/retrieval"
	"github.com/poiesic/qamatch/vectorize"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "qamatch.yaml"

// OracleConfig configures the confirmation oracle.
type OracleConfig struct {
	Host         string  `yaml:"host"`
	Model        string  `yaml:"model"`
	APIKeyEnv    string  `yaml:"api_key_env"`
	Temperature  float64 `yaml:"temperature"`
	Attempts     int     `yaml:"attempts"`
	RetryDelayMs int     `yaml:"retry_delay_ms"`
}

// SearchConfig configures retrieval and confirmation.
type SearchConfig struct {
	K             int `yaml:"k"`
	MaxCandidates int `yaml:"max_candidates"`
	Threshold     int `yaml:"threshold"`
}

// BuildConfig configures offline corpus builds.
type BuildConfig struct {
	MaxFeatures int `yaml:"max_features"`
	PoolSize    int `yaml:"pool_size"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	StoreDir string       `yaml:"store_dir"`
	Oracle   OracleConfig `yaml:"oracle"`
	Search   SearchConfig `yaml:"search"`
	Build    BuildConfig  `yaml:"build"`
}

// Load reads a config from path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./qamatch.yaml first, then ~/.config/qamatch/qamatch.yaml.
// If neither exists it returns defaults and an empty path.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return Default(), "", nil
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	return Default(), "", nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// AIConfig converts the oracle section into an ai.Config. The API key is
// read from the configured environment variable, falling back to the
// standard ones.
func (c *AppConfig) AIConfig() *ai.Config {
	opts := []ai.ConfigOption{
		ai.WithOracleHost(c.Oracle.Host),
		ai.WithOracleModel(c.Oracle.Model),
		ai.WithTemperature(c.Oracle.Temperature),
	}
	if c.Oracle.APIKeyEnv != "" {
		if key := strings.TrimSpace(os.Getenv(c.Oracle.APIKeyEnv)); key != "" {
			opts = append(opts, ai.WithAPIKey(key))
		}
	}
	return ai.NewConfig(opts...)
}

// RetryDelay returns the oracle retry base delay.
func (c *AppConfig) RetryDelay() time.Duration {
	return time.Duration(c.Oracle.RetryDelayMs) * time.Millisecond
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qamatch", FileName), nil
}

func applyDefaults(cfg *AppConfig) {
	defaults := ai.DefaultConfig()
	if cfg.StoreDir == "" {
		cfg.StoreDir = "qa_store"
	}
	if cfg.Oracle.Host == "" {
		cfg.Oracle.Host = defaults.OracleHost
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = defaults.OracleModel
	}
	if cfg.Oracle.Attempts == 0 {
		cfg.Oracle.Attempts = 1
	}
	if cfg.Oracle.RetryDelayMs == 0 {
		cfg.Oracle.RetryDelayMs = 500
	}
	if cfg.Search.K == 0 {
		cfg.Search.K = retrieval.DefaultK
	}
	if cfg.Search.MaxCandidates == 0 {
		cfg.Search.MaxCandidates = confirm.DefaultMaxCandidates
	}
	if cfg.Search.Threshold == 0 {
		cfg.Search.Threshold = confirm.DefaultThreshold
	}
	if cfg.Build.MaxFeatures == 0 {
		cfg.Build.MaxFeatures = vectorize.DefaultMaxFeatures
	}
}
