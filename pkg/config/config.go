// Package config reads the optional cbrelay.yaml describing where the
// debug.log comes from, where outputs go, and any annotation-table
// extensions needed for a bitcoind newer than the built-in vocabularies.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a cbrelay.yaml file.
type Config struct {
	Version int     `yaml:"version"`
	Source  Source  `yaml:"source"`
	Output  Output  `yaml:"output"`
	Tables  Tables  `yaml:"tables,omitempty"`
}

// Source selects where log lines are read from.
type Source struct {
	Kind      string `yaml:"kind"`                // file | journald | docker
	Path      string `yaml:"path,omitempty"`      // file
	Unit      string `yaml:"unit,omitempty"`      // journald
	Container string `yaml:"container,omitempty"` // docker
}

// Output names the artifact paths for parse and plot.
type Output struct {
	XLSX    string `yaml:"xlsx,omitempty"`
	CSVDir  string `yaml:"csv_dir,omitempty"`
	PlotDir string `yaml:"plot_dir,omitempty"`
}

// Tables extends the built-in annotation vocabularies. Bitcoind grows log
// categories and thread names between releases; listing them here beats
// rebuilding.
type Tables struct {
	ExtraCategories []string `yaml:"extra_categories,omitempty"`
	ExtraThreads    []string `yaml:"extra_threads,omitempty"`
}

// Default returns the config written by `cbrelay config init`.
func Default() *Config {
	return &Config{
		Version: 1,
		Source: Source{
			Kind: "file",
			Path: "debug.log",
		},
		Output: Output{
			XLSX:    "compactblocksdata.xlsx",
			PlotDir: "plots",
		},
	}
}

// Parse decodes a config from yaml bytes.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// Load reads and decodes a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Save writes the config to path as yaml.
func Save(c *Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the config for structural correctness.
func Validate(c *Config) []error {
	var errs []error

	if c.Version != 1 {
		errs = append(errs, fmt.Errorf("version must be 1, got %d", c.Version))
	}

	switch c.Source.Kind {
	case "file":
		if c.Source.Path == "" {
			errs = append(errs, fmt.Errorf("source (file): path is required"))
		}
	case "journald":
		if c.Source.Unit == "" {
			errs = append(errs, fmt.Errorf("source (journald): unit is required"))
		}
	case "docker":
		if c.Source.Container == "" {
			errs = append(errs, fmt.Errorf("source (docker): container is required"))
		}
	case "":
		errs = append(errs, fmt.Errorf("source: kind is required"))
	default:
		errs = append(errs, fmt.Errorf("source: unknown kind %q", c.Source.Kind))
	}

	for _, cat := range c.Tables.ExtraCategories {
		if cat == "" {
			errs = append(errs, fmt.Errorf("tables: empty extra category"))
		}
	}
	for _, th := range c.Tables.ExtraThreads {
		if th == "" {
			errs = append(errs, fmt.Errorf("tables: empty extra thread name"))
		}
	}

	return errs
}
