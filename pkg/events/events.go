// Package events applies random disruptions to a city: earthquakes that
// flatten buildings and economic booms or busts that move money.
package events

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/samlin1112/CitySim/pkg/sim"
)

// DefaultChance is the per-tick probability of an event.
const DefaultChance = 0.05

// Event parameters.
const (
	QuakeMinRadius   = 1
	QuakeMaxRadius   = 2
	RebuildCost      = 500
	BoomBase         = 2000
	BoomSpread       = 2000
	BustBase         = 1000
	BustSpread       = 1500
	earthquakeWeight = 0.5
	boomWeight       = 0.5
)

// Source is the randomness an event system draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Kind names an event type.
type Kind string

const (
	KindEarthquake Kind = "earthquake"
	KindBoom       Kind = "boom"
	KindBust       Kind = "bust"
)

// Outcome describes an applied event. MoneyDelta is the actual change to
// the city's money, which for a bust may be smaller than the nominal loss.
type Outcome struct {
	Kind       Kind   `json:"kind"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	Radius     int    `json:"radius,omitempty"`
	Destroyed  int    `json:"destroyed,omitempty"`
	MoneyDelta int    `json:"money_delta"`
	Message    string `json:"message"`
}

// System triggers events from an injected Source. It is not safe for
// concurrent use.
type System struct {
	src    Source
	chance float64
}

// New creates a System drawing from src with the given per-tick chance.
func New(src Source, chance float64) *System {
	return &System{src: src, chance: chance}
}

// NewSeeded creates a System backed by a PCG generator. A zero seed uses
// the clock.
func NewSeeded(seed uint64, chance float64) *System {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), chance)
}

// Chance returns the per-tick probability.
func (s *System) Chance() float64 { return s.chance }

// MaybeTrigger applies one event with probability Chance. The bool
// reports whether anything happened.
func (s *System) MaybeTrigger(c *sim.City) (Outcome, bool) {
	if s.src.Float64() >= s.chance {
		return Outcome{}, false
	}
	return s.Trigger(c), true
}

// Trigger applies exactly one event chosen at random.
func (s *System) Trigger(c *sim.City) Outcome {
	if s.src.Float64() < earthquakeWeight {
		cx := s.src.IntN(c.Width)
		cy := s.src.IntN(c.Height)
		r := QuakeMinRadius + s.src.IntN(QuakeMaxRadius-QuakeMinRadius+1)
		return Earthquake(c, cx, cy, r)
	}
	if s.src.Float64() < boomWeight {
		return Boom(c, BoomBase+s.src.IntN(BoomSpread))
	}
	return Bust(c, BustBase+s.src.IntN(BustSpread))
}

// Earthquake clears every built tile within the clamped square of radius r
// around (cx, cy). Each destroyed tile lowers pollution by one and costs
// RebuildCost, which may leave money negative.
func Earthquake(c *sim.City, cx, cy, r int) Outcome {
	destroyed := 0
	sq := c.Grid.Square(cx, cy, r)
	for y := sq.MinY; y <= sq.MaxY; y++ {
		for x := sq.MinX; x <= sq.MaxX; x++ {
			t, err := c.Grid.Get(x, y)
			if err != nil || t.IsEmpty() {
				continue
			}
			_ = c.Grid.Reset(x, y)
			destroyed++
		}
	}
	c.Pollution = max(0, c.Pollution-destroyed)
	delta := -RebuildCost * destroyed
	c.Money += delta
	return Outcome{
		Kind:       KindEarthquake,
		X:          cx,
		Y:          cy,
		Radius:     r,
		Destroyed:  destroyed,
		MoneyDelta: delta,
		Message:    fmt.Sprintf("Earthquake! Epicenter (%d,%d) radius %d destroyed %d buildings.", cx, cy, r, destroyed),
	}
}

// Boom adds gain to the city's money.
func Boom(c *sim.City, gain int) Outcome {
	c.Money += gain
	return Outcome{
		Kind:       KindBoom,
		MoneyDelta: gain,
		Message:    fmt.Sprintf("Economic boom: extra income of %d.", gain),
	}
}

// Bust takes loss from the city's money without going below zero.
func Bust(c *sim.City, loss int) Outcome {
	before := c.Money
	c.Money = max(0, c.Money-loss)
	return Outcome{
		Kind:       KindBust,
		MoneyDelta: c.Money - before,
		Message:    fmt.Sprintf("Economic bust: lost %d money.", loss),
	}
}
