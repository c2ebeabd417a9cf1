// Package sim holds the authoritative city state and the operations that
// mutate it: the per-tick update and construction commands.
package sim

import (
	"fmt"

	"github.com/samlin1112/CitySim/pkg/grid"
)

// Starting resources of a fresh city.
const (
	StartMoney      = 8000
	StartMaterials  = 200
	StartPopulation = 100
	StartJobs       = 60
)

// City is the complete mutable state of one simulation. A City is not safe
// for concurrent use; drivers that share one must serialize access.
type City struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Grid   *grid.Grid `json:"-"`

	// Money is signed; maintenance and earthquakes may push it below zero.
	Money      int `json:"money"`
	Power      int `json:"power"`
	Water      int `json:"water"`
	Materials  int `json:"materials"`
	Population int `json:"population"`
	Jobs       int `json:"jobs"`
	Pollution  int `json:"pollution"`
	TickCount  int `json:"tick_count"`
}

// New creates a width×height city with the starting resources and an
// all-Empty grid.
func New(width, height int) (*City, error) {
	g, err := grid.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating city: %w", err)
	}
	return &City{
		Width:      width,
		Height:     height,
		Grid:       g,
		Money:      StartMoney,
		Materials:  StartMaterials,
		Population: StartPopulation,
		Jobs:       StartJobs,
	}, nil
}

// Clone returns a deep copy sharing no tiles with c.
func (c *City) Clone() *City {
	cp := *c
	cp.Grid = c.Grid.Clone()
	return &cp
}

// Equal reports whether two cities have identical scalars and tiles.
func (c *City) Equal(o *City) bool {
	if c == nil || o == nil {
		return c == o
	}
	a, b := *c, *o
	a.Grid, b.Grid = nil, nil
	return a == b && c.Grid.Equal(o.Grid)
}

// Tile returns the tile at (x, y).
func (c *City) Tile(x, y int) (grid.Tile, error) {
	return c.Grid.Get(x, y)
}

// Summary is the one-line status written every tenth tick.
func (c *City) Summary() string {
	return fmt.Sprintf("Tick %d: population=%d, money=%d, jobs=%d, pollution=%d",
		c.TickCount, c.Population, c.Money, c.Jobs, c.Pollution)
}
