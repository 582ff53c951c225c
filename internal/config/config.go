// Package config holds the benchmark run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes one benchmark run. Built once in main, read-only after.
type Config struct {
	BaseURL          string            `yaml:"base_url"`
	SPARQLEndpoint   string            `yaml:"sparql_endpoint"`
	Timeout          time.Duration     `yaml:"timeout"`
	BatchSizes       []int             `yaml:"batch_sizes"`
	BatchSettle      time.Duration     `yaml:"batch_settle"`
	PhaseSettle      time.Duration     `yaml:"phase_settle"`
	VerifySampleCap  int               `yaml:"verify_sample_cap"`
	OutputDir        string            `yaml:"output_dir"`
	ValidatePayloads bool              `yaml:"validate_payloads"`
	EntityTypes      map[string]string `yaml:"entity_types"`
}

// Default returns the canonical benchmark configuration.
func Default() *Config {
	return &Config{
		BaseURL:         "http://localhost:3000",
		SPARQLEndpoint:  "http://localhost:7001/shexpose",
		Timeout:         30 * time.Second,
		BatchSizes:      []int{5, 10, 15, 20},
		BatchSettle:     5 * time.Second,
		PhaseSettle:     5 * time.Second,
		VerifySampleCap: 50,
		OutputDir:       ".",
		EntityTypes: map[string]string{
			"drittmittelprojekt": "http://kerndatensatz-forschung.de/owl/Basis#Drittmittelprojekt",
			"event":              "http://purl.org/NET/c4dm/event.owl#Event",
			"grossgeraete":       "http://fis.tu-chemnitz.de/ontology/tucfis#Grossgeraete",
			"person":             "http://xmlns.com/foaf/0.1/Person",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path) // #nosec G304 - user-supplied config path
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// A configured entity map replaces the default outright; yaml would
	// otherwise merge the two.
	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, ok := keys["entity_types"]; ok {
		cfg.EntityTypes = map[string]string{}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the run cannot work with.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("config: base_url is required")
	}
	if c.SPARQLEndpoint == "" {
		return errors.New("config: sparql_endpoint is required")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if len(c.BatchSizes) == 0 {
		return errors.New("config: batch_sizes must not be empty")
	}
	for _, n := range c.BatchSizes {
		if n <= 0 {
			return fmt.Errorf("config: invalid batch size %d", n)
		}
	}
	if c.VerifySampleCap <= 0 {
		return errors.New("config: verify_sample_cap must be positive")
	}
	if len(c.EntityTypes) == 0 {
		return errors.New("config: entity_types must not be empty")
	}
	return nil
}

// EntityNames returns the configured entity names in stable order.
func (c *Config) EntityNames() []string {
	names := make([]string, 0, len(c.EntityTypes))
	for name := range c.EntityTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
