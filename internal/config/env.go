package config

import (
	"os"
	"time"
)

// LoadFromEnv applies SHBENCH_* environment overrides to cfg.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SHBENCH_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SHBENCH_SPARQL_ENDPOINT"); v != "" {
		cfg.SPARQLEndpoint = v
	}
	if v := os.Getenv("SHBENCH_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SHBENCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
}
