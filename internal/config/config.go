// Package config loads toolgauge configuration with the priority ladder
// defaults -> TOML file -> environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/toolgauge/toolgauge/internal/common"
)

// Config represents the application configuration.
type Config struct {
	Pricing   PricingConfig        `toml:"pricing"`
	Estimator EstimatorConfig      `toml:"estimator"`
	Catalogs  CatalogsConfig       `toml:"catalogs"`
	Live      LiveConfig           `toml:"live"`
	Logging   common.LoggingConfig `toml:"logging"`
}

// PricingConfig holds the dollar-cost knobs.
type PricingConfig struct {
	PricePerMillionTokens  float64 `toml:"price_per_million_tokens"`
	MonthlyRequestsPerUser int     `toml:"monthly_requests_per_user"`
	AvgTokensPerOperation  int     `toml:"avg_tokens_per_operation"`
}

// EstimatorConfig selects the token estimation strategy.
type EstimatorConfig struct {
	// Strategy is "heuristic" (default) or "tiktoken".
	Strategy string `toml:"strategy"`
	// Model selects the tiktoken vocabulary.
	Model string `toml:"model"`
}

// CatalogsConfig locates static catalog documents.
type CatalogsConfig struct {
	Dir string `toml:"dir"`
}

// LiveConfig holds live-measurement endpoint settings.
type LiveConfig struct {
	ServerURL string `toml:"server_url"`
	Token     string `toml:"token"`
	TokenFile string `toml:"token_file"`
}

// LoadFromFile loads configuration from a TOML file with defaults and env
// overrides. A missing file is not an error; defaults apply.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies TOOLGAUGE_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TOOLGAUGE_PRICE_PER_MILLION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pricing.PricePerMillionTokens = f
		}
	}
	if v := os.Getenv("TOOLGAUGE_MONTHLY_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pricing.MonthlyRequestsPerUser = n
		}
	}
	if v := os.Getenv("TOOLGAUGE_AVG_TOKENS_PER_OPERATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pricing.AvgTokensPerOperation = n
		}
	}
	if v := os.Getenv("TOOLGAUGE_ESTIMATOR"); v != "" {
		cfg.Estimator.Strategy = v
	}
	if v := os.Getenv("TOOLGAUGE_MODEL"); v != "" {
		cfg.Estimator.Model = v
	}
	if v := os.Getenv("TOOLGAUGE_CATALOG_DIR"); v != "" {
		cfg.Catalogs.Dir = v
	}
	if v := os.Getenv("TOOLGAUGE_SERVER_URL"); v != "" {
		cfg.Live.ServerURL = v
	}
	if v := os.Getenv("TOOLGAUGE_TOKEN"); v != "" {
		cfg.Live.Token = v
	}
	if v := os.Getenv("TOOLGAUGE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// ResolveLiveToken returns the live credential: the configured token, or the
// contents of token_file. The credential is opaque to everything downstream.
func (c *Config) ResolveLiveToken() (string, error) {
	if c.Live.Token != "" {
		return c.Live.Token, nil
	}
	if c.Live.TokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Live.TokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", c.Live.TokenFile, err)
	}
	return strings.TrimSpace(string(data)), nil
}
