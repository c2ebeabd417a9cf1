// Package config loads session settings from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up inside a project directory.
const FileName = "citysim.yaml"

// Default returns the settings of the desktop prototype: a 12×12 map,
// 10% tax, a 5% event chance per tick and one tick per second.
func Default() *Config {
	return &Config{
		City:    CityDef{Width: 12, Height: 12},
		Economy: Economy{TaxRate: 0.10},
		Events:  EventsDef{Enabled: true, Chance: 0.05},
		Simulation: Simulation{
			TickInterval: time.Second,
			AutoTick:     true,
			LogHistory:   200,
		},
		Storage: Storage{Path: "citysim.db"},
		Server:  Server{Port: 8080},
	}
}

// Load reads a config from a YAML file. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// LoadProject loads citysim.yaml from a project directory.
func LoadProject(projectDir string) (*Config, error) {
	return Load(filepath.Join(projectDir, FileName))
}

// Write stores cfg as YAML at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
