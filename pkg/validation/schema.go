package validation

import (
	"fmt"

	"github.com/samlin1112/CitySim/pkg/config"
	"github.com/samlin1112/CitySim/pkg/grid"
)

// largeGridCells is the cell count above which a tick scan is flagged as slow.
const largeGridCells = 250_000

// ValidateConfig checks a session config before any city is created.
func ValidateConfig(c *config.Config) *Report {
	r := NewReport()

	validateCity(c, r)
	validateEconomy(c, r)
	validateEvents(c, r)
	validateSimulation(c, r)
	validateServer(c, r)

	return r
}

func validateCity(c *config.Config, r *Report) {
	if c.City.Width < 1 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "city width must be at least 1",
			Path:        "city.width",
			ActualValue: c.City.Width,
			Expected:    ">= 1",
		})
	}
	if c.City.Height < 1 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "city height must be at least 1",
			Path:        "city.height",
			ActualValue: c.City.Height,
			Expected:    ">= 1",
		})
	}
	if c.City.Width < 1 || c.City.Height < 1 {
		return
	}
	if c.City.Width > grid.MaxCells/c.City.Height {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("grid %dx%d exceeds %d cells", c.City.Width, c.City.Height, grid.MaxCells),
			Path:        "city",
			Expected:    fmt.Sprintf("width*height <= %d", grid.MaxCells),
			Suggestions: []string{"Reduce width or height"},
		})
		return
	}
	if cells := c.City.Width * c.City.Height; cells > largeGridCells {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("grid has %d cells; every tick scans all of them", cells),
			Path:        "city",
			ActualValue: cells,
			Suggestions: []string{"Reduce width or height"},
		})
	}
}

func validateEconomy(c *config.Config, r *Report) {
	if !(c.Economy.TaxRate >= 0 && c.Economy.TaxRate <= 1) {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("tax_rate %.2f is outside valid range (0-1)", c.Economy.TaxRate),
			Path:        "economy.tax_rate",
			ActualValue: c.Economy.TaxRate,
			Expected:    "0-1",
		})
	}
	if c.Economy.TaxRate > 0.2 {
		r.AddInfo(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("tax_rate %.2f strongly suppresses population growth", c.Economy.TaxRate),
			Path:        "economy.tax_rate",
			ActualValue: c.Economy.TaxRate,
		})
	}
}

func validateEvents(c *config.Config, r *Report) {
	if !(c.Events.Chance >= 0 && c.Events.Chance <= 1) {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("event chance %.2f is outside valid range (0-1)", c.Events.Chance),
			Path:        "events.chance",
			ActualValue: c.Events.Chance,
			Expected:    "0-1",
		})
	}
	if c.Events.Enabled && c.Events.Chance == 0 {
		r.AddWarning(Result{
			Level:       LevelConfig,
			Message:     "events are enabled but chance is 0; no event will ever fire",
			Path:        "events.chance",
			ActualValue: c.Events.Chance,
			Suggestions: []string{"Set events.enabled to false", "Raise events.chance"},
		})
	}
}

func validateSimulation(c *config.Config, r *Report) {
	if c.Simulation.AutoTick && c.Simulation.TickInterval <= 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "tick_interval must be positive when auto_tick is on",
			Path:        "simulation.tick_interval",
			ActualValue: c.Simulation.TickInterval.String(),
			Expected:    "> 0",
		})
	}
	if c.Simulation.LogHistory < 0 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     "log_history must not be negative",
			Path:        "simulation.log_history",
			ActualValue: c.Simulation.LogHistory,
			Expected:    ">= 0",
		})
	}
}

func validateServer(c *config.Config, r *Report) {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		r.AddError(Result{
			Level:       LevelConfig,
			Message:     fmt.Sprintf("port %d is not a valid TCP port", c.Server.Port),
			Path:        "server.port",
			ActualValue: c.Server.Port,
			Expected:    "0-65535",
		})
	}
}
