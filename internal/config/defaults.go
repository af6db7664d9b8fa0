package config

import "github.com/toolgauge/toolgauge/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Pricing: PricingConfig{
			PricePerMillionTokens:  3.0,
			MonthlyRequestsPerUser: 1000,
			AvgTokensPerOperation:  140,
		},
		Estimator: EstimatorConfig{
			Strategy: "heuristic",
			Model:    "gpt-4o",
		},
		Catalogs: CatalogsConfig{
			Dir: "catalogs",
		},
		Live: LiveConfig{},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/toolgauge.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
