package sim

import (
	"errors"
	"strings"
	"testing"

	"github.com/samlin1112/CitySim/pkg/grid"
)

func newCity(t *testing.T) *City {
	t.Helper()
	c, err := New(12, 12)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewStartingResources(t *testing.T) {
	c := newCity(t)
	if c.Money != 8000 || c.Materials != 200 || c.Population != 100 || c.Jobs != 60 {
		t.Errorf("start = %+v", c)
	}
	if c.Power != 0 || c.Water != 0 || c.Pollution != 0 || c.TickCount != 0 {
		t.Errorf("start = %+v", c)
	}
	if n := c.Grid.Count()[grid.Empty]; n != 144 {
		t.Errorf("empty tiles = %d, want 144", n)
	}
}

func TestNewInvalidSize(t *testing.T) {
	if _, err := New(0, 5); !errors.Is(err, grid.ErrInvalidSize) {
		t.Errorf("err = %v, want ErrInvalidSize", err)
	}
}

func TestTickFreshCity(t *testing.T) {
	c := newCity(t)
	r := c.Tick(1, 0.10)

	checks := []struct {
		name      string
		got, want int
	}{
		{"population", c.Population, 0},
		{"jobs", c.Jobs, 0},
		{"money", c.Money, 7983},
		{"materials", c.Materials, 200},
		{"pollution", c.Pollution, 0},
		{"power", c.Power, 0},
		{"water", c.Water, 0},
		{"tick_count", c.TickCount, 1},
		{"growth", r.Last().Growth, -166},
		{"taxes", r.Last().Taxes, 0},
		{"maintenance", r.Last().Maintenance, 17},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %d, want %d", ch.name, ch.got, ch.want)
		}
	}
	if r.Last().Balance.ShortageFactor != 2.0 {
		t.Errorf("shortage_factor = %v, want 2.0", r.Last().Balance.ShortageFactor)
	}
	if len(r.Messages) != 0 {
		t.Errorf("messages = %v, want none before tick 10", r.Messages)
	}
}

func TestTickPartialShortage(t *testing.T) {
	c := newCity(t)
	if _, err := c.Build(0, 0, grid.PowerPlant); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Build(1, 0, grid.WaterPlant); err != nil {
		t.Fatal(err)
	}
	if c.Money != 4600 || c.Materials != 50 {
		t.Fatalf("after building money=%d materials=%d, want 4600/50", c.Money, c.Materials)
	}

	r := c.Tick(1, 0.10)
	step := r.Last()

	if sf := step.Balance.ShortageFactor; sf < 0.7999 || sf > 0.8001 {
		t.Errorf("shortage_factor = %v, want 0.8", sf)
	}
	checks := []struct {
		name      string
		got, want int
	}{
		{"power", c.Power, 60},
		{"water", c.Water, 60},
		{"growth", step.Growth, -35},
		{"population", c.Population, 65},
		{"jobs", c.Jobs, 0},
		{"taxes", step.Taxes, 6},
		{"maintenance", step.Maintenance, 56},
		{"money", c.Money, 4550},
		{"materials", c.Materials, 50},
		{"pollution", c.Pollution, 0},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %d, want %d", ch.name, ch.got, ch.want)
		}
	}
}

func TestTickDeterministic(t *testing.T) {
	a := newCity(t)
	for i, cat := range []grid.Category{grid.Residential, grid.Commercial, grid.Industrial, grid.PowerPlant} {
		if _, err := a.Build(i, 2, cat); err != nil {
			t.Fatal(err)
		}
	}
	b := a.Clone()

	for range 25 {
		a.Tick(1, 0.15)
		b.Tick(1, 0.15)
	}
	if !a.Equal(b) {
		t.Errorf("diverged: %+v vs %+v", a, b)
	}
}

func TestTickInvariants(t *testing.T) {
	c := newCity(t)
	c.Money = 1_000_000
	c.Materials = 10_000
	layout := []grid.Category{grid.Industrial, grid.Industrial, grid.PowerPlant, grid.Residential, grid.Residential, grid.Commercial, grid.Park}
	for i, cat := range layout {
		if _, err := c.Build(i, 0, cat); err != nil {
			t.Fatal(err)
		}
	}
	for range 40 {
		c.Tick(1, 0.3)
		if c.Population < 0 {
			t.Fatalf("tick %d: population %d < 0", c.TickCount, c.Population)
		}
		if c.Pollution < 0 {
			t.Fatalf("tick %d: pollution %d < 0", c.TickCount, c.Pollution)
		}
		if c.Jobs > c.Population {
			t.Fatalf("tick %d: jobs %d > population %d", c.TickCount, c.Jobs, c.Population)
		}
	}
}

func TestTickSummaryEveryTenth(t *testing.T) {
	c := newCity(t)
	r := c.Tick(25, 0.1)
	if len(r.Steps) != 25 || c.TickCount != 25 {
		t.Fatalf("steps = %d tick_count = %d, want 25", len(r.Steps), c.TickCount)
	}
	if len(r.Messages) != 2 {
		t.Fatalf("messages = %v, want 2", r.Messages)
	}
	if !strings.HasPrefix(r.Messages[0], "Tick 10: population=") {
		t.Errorf("message = %q", r.Messages[0])
	}
}

func TestTickNonPositiveSecondsRunsOnce(t *testing.T) {
	c := newCity(t)
	c.Tick(0, 0.1)
	c.Tick(-3, 0.1)
	if c.TickCount != 2 {
		t.Errorf("tick_count = %d, want 2", c.TickCount)
	}
}

// With a heavy shortage the growth base is negative; a tax above 1.2 makes
// the multiplier negative too, so the city grows.
func TestTickNegativeMultiplierFlipsGrowth(t *testing.T) {
	c := newCity(t)
	r := c.Tick(1, 2.0)
	// base -151, multiplier 1.2-0-2.0 = -0.8 → trunc(120.8) = 120
	if g := r.Last().Growth; g != 120 {
		t.Errorf("growth = %d, want 120", g)
	}
	if c.Population != 220 {
		t.Errorf("population = %d, want 220", c.Population)
	}
}

func TestTickMoneyCanGoNegative(t *testing.T) {
	c := newCity(t)
	c.Money = 5
	c.Tick(1, 0.1)
	if c.Money != -12 {
		t.Errorf("money = %d, want -12", c.Money)
	}
}

func TestBuild(t *testing.T) {
	c := newCity(t)
	price, err := c.Build(3, 4, grid.Commercial)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if price.Money != 600 || price.Materials != 25 {
		t.Errorf("price = %+v, want 600/25", price)
	}
	tile, _ := c.Tile(3, 4)
	if tile != (grid.Tile{Category: grid.Commercial, Level: 1}) {
		t.Errorf("tile = %+v", tile)
	}
	if c.Money != 7400 || c.Materials != 175 {
		t.Errorf("money=%d materials=%d, want 7400/175", c.Money, c.Materials)
	}
}

func TestBuildOverwritesWithoutRefund(t *testing.T) {
	c := newCity(t)
	_, _ = c.Build(0, 0, grid.Residential)
	if _, err := c.Build(0, 0, grid.Road); err != nil {
		t.Fatal(err)
	}
	if c.Money != 8000-300-80 {
		t.Errorf("money = %d, want %d", c.Money, 8000-300-80)
	}
	tile, _ := c.Tile(0, 0)
	if tile.Category != grid.Road || tile.Level != 1 {
		t.Errorf("tile = %+v", tile)
	}
}

func TestBuildFailuresLeaveCityUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		money   int
		mats    int
		x, y    int
		cat     grid.Category
		wantErr error
	}{
		{"out of bounds", 8000, 200, 12, 0, grid.Road, grid.ErrOutOfBounds},
		{"negative coordinate", 8000, 200, 0, -1, grid.Road, grid.ErrOutOfBounds},
		{"funds", 1799, 200, 0, 0, grid.PowerPlant, ErrInsufficientFunds},
		{"materials", 8000, 79, 0, 0, grid.PowerPlant, ErrInsufficientMaterials},
		{"unknown category", 8000, 200, 0, 0, grid.Category(42), grid.ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCity(t)
			c.Money, c.Materials = tt.money, tt.mats
			before := c.Clone()

			_, err := c.Build(tt.x, tt.y, tt.cat)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if !c.Equal(before) {
				t.Error("failed build mutated the city")
			}
		})
	}
}

func TestUpgrade(t *testing.T) {
	c := newCity(t)
	c.Money, c.Materials = 10_000, 1_000
	_, _ = c.Build(2, 2, grid.Industrial)

	for level := 1; level <= 3; level++ {
		money, mats := c.Money, c.Materials
		price, err := c.Upgrade(2, 2)
		if err != nil {
			t.Fatalf("upgrade from L%d: %v", level, err)
		}
		if price.Money != 600*level || price.Materials != 35*level {
			t.Errorf("L%d price = %+v", level, price)
		}
		if c.Money != money-600*level || c.Materials != mats-35*level {
			t.Errorf("L%d deduction wrong: money %d→%d materials %d→%d", level, money, c.Money, mats, c.Materials)
		}
		tile, _ := c.Tile(2, 2)
		if tile.Level != level+1 {
			t.Errorf("level = %d, want %d", tile.Level, level+1)
		}
	}
}

func TestUpgradeRoadUsesDefaultBase(t *testing.T) {
	c := newCity(t)
	_, _ = c.Build(0, 0, grid.Road)
	price, err := c.QuoteUpgrade(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if price.Money != 100 || price.Materials != 3 {
		t.Errorf("price = %+v, want 100/3", price)
	}
}

func TestUpgradeFailures(t *testing.T) {
	c := newCity(t)
	before := c.Clone()
	if _, err := c.Upgrade(0, 0); !errors.Is(err, ErrCannotUpgradeEmpty) {
		t.Errorf("err = %v, want ErrCannotUpgradeEmpty", err)
	}
	if _, err := c.Upgrade(-1, 0); !errors.Is(err, grid.ErrOutOfBounds) {
		t.Errorf("err = %v, want ErrOutOfBounds", err)
	}
	if !c.Equal(before) {
		t.Error("failed upgrade mutated the city")
	}

	_, _ = c.Build(0, 0, grid.PowerPlant)
	c.Money = 1199
	before = c.Clone()
	if _, err := c.Upgrade(0, 0); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("err = %v, want ErrInsufficientFunds", err)
	}
	if !c.Equal(before) {
		t.Error("failed upgrade mutated the city")
	}
	c.Money = 5000
	c.Materials = 10
	before = c.Clone()
	if _, err := c.Upgrade(0, 0); !errors.Is(err, ErrInsufficientMaterials) {
		t.Errorf("err = %v, want ErrInsufficientMaterials", err)
	}
	if !c.Equal(before) {
		t.Error("failed upgrade mutated the city")
	}
}

func TestQuoteDoesNotMutate(t *testing.T) {
	c := newCity(t)
	before := c.Clone()
	price, err := c.Quote(5, 5, grid.WaterPlant)
	if err != nil {
		t.Fatal(err)
	}
	if price.Money != 1600 || price.Materials != 70 {
		t.Errorf("price = %+v", price)
	}
	if !c.Equal(before) {
		t.Error("Quote mutated the city")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := newCity(t)
	cp := c.Clone()
	_, _ = cp.Build(0, 0, grid.Park)
	if tile, _ := c.Tile(0, 0); !tile.IsEmpty() {
		t.Error("clone shares tiles with the original")
	}
	if c.Equal(cp) {
		t.Error("Equal should see the difference")
	}
}
