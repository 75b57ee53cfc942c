// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"net/url"
	"os"
	"strings"
)

// Environment variables consulted for the oracle API key, in order.
const (
	APIKeyEnv       = "QAMATCH_API_KEY"
	OpenAIAPIKeyEnv = "OPENAI_API_KEY"
)

// Config holds configuration for AI service providers.
type Config struct {
	// OracleHost is the base URL of the chat completion API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	OracleHost string

	// OracleModel is the model identifier used for confirmation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	OracleModel string

	// APIKey authenticates against the oracle service. Local servers that
	// need no authentication can leave it empty.
	APIKey string

	// Temperature is the sampling temperature. Default: 0
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithOracleHost sets the oracle service host URL.
func WithOracleHost(host string) ConfigOption {
	return func(c *Config) {
		c.OracleHost = host
	}
}

// WithOracleModel sets the oracle model identifier.
func WithOracleModel(model string) ConfigOption {
	return func(c *Config) {
		c.OracleModel = model
	}
}

// WithAPIKey sets the oracle API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// DefaultConfig returns a Config with sensible defaults for a local
// OpenAI-compatible service. The API key is taken from QAMATCH_API_KEY or,
// failing that, OPENAI_API_KEY.
func DefaultConfig() *Config {
	return &Config{
		OracleHost:  "http://localhost:11434/v1",
		OracleModel: "qwen2.5:3b",
		APIKey:      APIKeyFromEnv(),
		Temperature: 0,
	}
}

// APIKeyFromEnv returns the first non-empty API key variable.
func APIKeyFromEnv() string {
	for _, name := range []string{APIKeyEnv, OpenAIAPIKeyEnv} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithOracleHost("https://api.openai.com/v1"),
//	    WithOracleModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// A host given without any path gets the /v1 suffix most OpenAI-compatible
// servers (Ollama, LocalAI, vLLM) expect. Hosts that already carry a path,
// such as https://example.com/api/v3, are left alone apart from a trailing
// slash.
func (c *Config) Normalize() {
	c.OracleHost = strings.TrimSpace(c.OracleHost)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.OracleHost == "" {
		return
	}
	c.OracleHost = strings.TrimSuffix(c.OracleHost, "/")
	if u, err := url.Parse(c.OracleHost); err == nil && u.Host != "" && u.Path == "" {
		c.OracleHost += "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.OracleHost == "" {
		return errors.New("ai config: OracleHost is required")
	}
	if u, err := url.Parse(c.OracleHost); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("ai config: OracleHost must be an absolute URL")
	}
	if c.OracleModel == "" {
		return errors.New("ai config: OracleModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	return nil
}
