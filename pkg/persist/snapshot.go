// Package persist converts a city to and from a flat snapshot and encodes
// snapshots as XML, JSON or YAML documents.
package persist

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/sim"
)

var (
	// ErrCorruptSnapshot is returned for malformed or out-of-range save data.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	// ErrIO wraps failures of the underlying reader or writer.
	ErrIO = errors.New("snapshot i/o failure")
)

// Snapshot is the flattened form of a city. Scalars are pointers so that a
// field missing from a document can be told apart from a zero value.
// The XML layout reads and writes the save files of the desktop prototype.
type Snapshot struct {
	XMLName xml.Name `xml:"SerializableCityState" json:"-" yaml:"-"`

	Width  *int         `xml:"Width" json:"width" yaml:"width"`
	Height *int         `xml:"Height" json:"height" yaml:"height"`
	Tiles  []TileRecord `xml:"Tiles>SerializableTile" json:"tiles" yaml:"tiles"`

	Money      *int `xml:"Money" json:"money" yaml:"money"`
	Power      *int `xml:"Power" json:"power" yaml:"power"`
	Water      *int `xml:"Water" json:"water" yaml:"water"`
	Materials  *int `xml:"Materials" json:"materials" yaml:"materials"`
	Population *int `xml:"Population" json:"population" yaml:"population"`
	Jobs       *int `xml:"Jobs" json:"jobs" yaml:"jobs"`
	Pollution  *int `xml:"Pollution" json:"pollution" yaml:"pollution"`
	TickCount  *int `xml:"TickCount" json:"tick_count" yaml:"tick_count"`
}

// TileRecord is one cell. Type holds the category name.
type TileRecord struct {
	X     int    `xml:"X" json:"x" yaml:"x"`
	Y     int    `xml:"Y" json:"y" yaml:"y"`
	Type  string `xml:"Type" json:"type" yaml:"type"`
	Level int    `xml:"Level" json:"level" yaml:"level"`
}

func ptr(v int) *int { return &v }

// Serialize flattens c. Every cell is recorded, Empty ones included,
// column by column.
func Serialize(c *sim.City) Snapshot {
	s := Snapshot{
		Width:      ptr(c.Width),
		Height:     ptr(c.Height),
		Tiles:      make([]TileRecord, 0, c.Width*c.Height),
		Money:      ptr(c.Money),
		Power:      ptr(c.Power),
		Water:      ptr(c.Water),
		Materials:  ptr(c.Materials),
		Population: ptr(c.Population),
		Jobs:       ptr(c.Jobs),
		Pollution:  ptr(c.Pollution),
		TickCount:  ptr(c.TickCount),
	}
	for x := 0; x < c.Width; x++ {
		for y := 0; y < c.Height; y++ {
			t, _ := c.Grid.Get(x, y)
			s.Tiles = append(s.Tiles, TileRecord{X: x, Y: y, Type: t.Category.String(), Level: t.Level})
		}
	}
	return s
}

// Deserialize rebuilds a city from s. Cells missing from s are Empty; when a
// cell appears twice the later record wins. Any problem reported by Check
// fails with ErrCorruptSnapshot.
func Deserialize(s Snapshot) (*sim.City, error) {
	if err := Check(s).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	c, err := sim.New(*s.Width, *s.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	c.Money = *s.Money
	c.Power = *s.Power
	c.Water = *s.Water
	c.Materials = *s.Materials
	c.Population = *s.Population
	c.Jobs = *s.Jobs
	c.Pollution = *s.Pollution
	c.TickCount = *s.TickCount

	for _, rec := range s.Tiles {
		cat, _ := grid.ParseCategory(rec.Type)
		level := rec.Level
		if cat == grid.Empty {
			level = 1
		}
		if err := c.Grid.Set(rec.X, rec.Y, grid.Tile{Category: cat, Level: level}); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
	}
	return c, nil
}
