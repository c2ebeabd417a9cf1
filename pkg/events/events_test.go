package events

import (
	"strings"
	"testing"

	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/sim"
)

// scripted replays fixed draws in order.
type scripted struct {
	floats []float64
	ints   []int
	t      *testing.T
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		s.t.Fatal("unexpected Float64 draw")
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scripted) IntN(n int) int {
	if len(s.ints) == 0 {
		s.t.Fatal("unexpected IntN draw")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 || v >= n {
		s.t.Fatalf("scripted IntN(%d) value %d out of range", n, v)
	}
	return v
}

func newCity(t *testing.T) *sim.City {
	t.Helper()
	c, err := sim.New(12, 12)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func fill(t *testing.T, c *sim.City, minX, minY, maxX, maxY int, cat grid.Category) {
	t.Helper()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if err := c.Grid.Set(x, y, grid.Tile{Category: cat, Level: 2}); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestMaybeTriggerBelowChance(t *testing.T) {
	c := newCity(t)
	src := &scripted{t: t, floats: []float64{0.5}}
	s := New(src, DefaultChance)
	if _, ok := s.MaybeTrigger(c); ok {
		t.Error("0.5 >= 0.05 should not trigger")
	}
	if c.Money != sim.StartMoney {
		t.Errorf("money = %d, want unchanged", c.Money)
	}
}

func TestMaybeTriggerBoom(t *testing.T) {
	c := newCity(t)
	// trigger, economic branch, boom, gain offset
	src := &scripted{t: t, floats: []float64{0.01, 0.7, 0.2}, ints: []int{345}}
	out, ok := New(src, DefaultChance).MaybeTrigger(c)
	if !ok {
		t.Fatal("expected an event")
	}
	if out.Kind != KindBoom || out.MoneyDelta != 2345 {
		t.Errorf("outcome = %+v", out)
	}
	if c.Money != 8000+2345 {
		t.Errorf("money = %d", c.Money)
	}
	if out.Message != "Economic boom: extra income of 2345." {
		t.Errorf("message = %q", out.Message)
	}
}

func TestTriggerBust(t *testing.T) {
	c := newCity(t)
	src := &scripted{t: t, floats: []float64{0.5, 0.5}, ints: []int{1499}}
	out := New(src, DefaultChance).Trigger(c)
	if out.Kind != KindBust || out.MoneyDelta != -2499 || c.Money != 8000-2499 {
		t.Errorf("outcome = %+v money = %d", out, c.Money)
	}
}

func TestBustFloorsAtZero(t *testing.T) {
	c := newCity(t)
	c.Money = 300
	out := Bust(c, 1200)
	if c.Money != 0 || out.MoneyDelta != -300 {
		t.Errorf("money = %d delta = %d, want 0/-300", c.Money, out.MoneyDelta)
	}
	if !strings.Contains(out.Message, "1200") {
		t.Errorf("message should report the nominal loss: %q", out.Message)
	}
}

func TestBustClearsDebt(t *testing.T) {
	c := newCity(t)
	c.Money = -400
	out := Bust(c, 1000)
	if c.Money != 0 || out.MoneyDelta != 400 {
		t.Errorf("money = %d delta = %d, want 0/+400", c.Money, out.MoneyDelta)
	}
}

func TestTriggerEarthquakeDraws(t *testing.T) {
	c := newCity(t)
	fill(t, c, 0, 0, 11, 11, grid.Residential)
	// earthquake branch, cx=5, cy=6, radius 1+1=2
	src := &scripted{t: t, floats: []float64{0.1}, ints: []int{5, 6, 1}}
	out := New(src, DefaultChance).Trigger(c)
	if out.Kind != KindEarthquake || out.X != 5 || out.Y != 6 || out.Radius != 2 {
		t.Errorf("outcome = %+v", out)
	}
	if out.Destroyed != 25 {
		t.Errorf("destroyed = %d, want 25", out.Destroyed)
	}
}

func TestEarthquakeCountsOnlyBuiltTiles(t *testing.T) {
	c := newCity(t)
	c.Pollution = 3
	fill(t, c, 0, 0, 1, 1, grid.Industrial) // 4 tiles in the corner
	_ = c.Grid.Set(5, 5, grid.Tile{Category: grid.Park, Level: 1})

	before := c.Grid.Clone()
	out := Earthquake(c, 0, 0, 2)

	if out.Destroyed != 4 {
		t.Errorf("destroyed = %d, want 4", out.Destroyed)
	}
	if c.Pollution != 0 {
		t.Errorf("pollution = %d, want max(0, 3-4) = 0", c.Pollution)
	}
	if c.Money != 8000-2000 || out.MoneyDelta != -2000 {
		t.Errorf("money = %d delta = %d", c.Money, out.MoneyDelta)
	}

	sq := c.Grid.Square(0, 0, 2)
	c.Grid.Each(func(x, y int, tile grid.Tile) {
		inside := x >= sq.MinX && x <= sq.MaxX && y >= sq.MinY && y <= sq.MaxY
		if inside && tile != grid.EmptyTile {
			t.Errorf("(%d,%d) = %+v, want cleared", x, y, tile)
		}
		if !inside {
			was, _ := before.Get(x, y)
			if tile != was {
				t.Errorf("(%d,%d) outside the quake changed", x, y)
			}
		}
	})
}

func TestEarthquakeMoneyCanGoNegative(t *testing.T) {
	c := newCity(t)
	c.Money = 100
	fill(t, c, 10, 10, 11, 11, grid.Road)
	Earthquake(c, 11, 11, 1)
	if c.Money != 100-4*RebuildCost {
		t.Errorf("money = %d, want %d", c.Money, 100-4*RebuildCost)
	}
}

func TestNewSeededReproducible(t *testing.T) {
	a, b := newCity(t), newCity(t)
	fill(t, a, 0, 0, 11, 11, grid.Commercial)
	fill(t, b, 0, 0, 11, 11, grid.Commercial)

	sa, sb := NewSeeded(7, 1), NewSeeded(7, 1)
	for range 20 {
		oa, _ := sa.MaybeTrigger(a)
		ob, _ := sb.MaybeTrigger(b)
		if oa != ob {
			t.Fatalf("outcomes diverged: %+v vs %+v", oa, ob)
		}
	}
	if !a.Equal(b) {
		t.Error("cities diverged under the same seed")
	}
}
