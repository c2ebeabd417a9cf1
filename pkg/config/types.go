package config

import "time"

// Config is the top-level configuration for a simulation session.
type Config struct {
	City       CityDef    `yaml:"city" json:"city"`
	Economy    Economy    `yaml:"economy" json:"economy"`
	Events     EventsDef  `yaml:"events" json:"events"`
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Storage    Storage    `yaml:"storage" json:"storage"`
	Server     Server     `yaml:"server" json:"server"`
}

type CityDef struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

type Economy struct {
	TaxRate float64 `yaml:"tax_rate" json:"tax_rate"`
}

// EventsDef controls random events. A zero Seed means seed from the clock.
type EventsDef struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Chance  float64 `yaml:"chance" json:"chance"`
	Seed    uint64  `yaml:"seed" json:"seed"`
}

type Simulation struct {
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval"`
	AutoTick     bool          `yaml:"auto_tick" json:"auto_tick"`
	LogHistory   int           `yaml:"log_history" json:"log_history"`
}

type Storage struct {
	Path string `yaml:"path" json:"path"`
}

type Server struct {
	Port int `yaml:"port" json:"port"`
}
