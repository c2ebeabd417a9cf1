package cost

import (
	"testing"

	"github.com/samlin1112/CitySim/pkg/grid"
)

func TestBuildTable(t *testing.T) {
	tests := []struct {
		cat  grid.Category
		want Price
	}{
		{grid.Residential, Price{300, 12}},
		{grid.Commercial, Price{600, 25}},
		{grid.Industrial, Price{900, 35}},
		{grid.PowerPlant, Price{1800, 80}},
		{grid.WaterPlant, Price{1600, 70}},
		{grid.Road, Price{80, 3}},
		{grid.Park, Price{300, 8}},
		{grid.Empty, Price{0, 0}},
	}
	for _, tt := range tests {
		if got := Build(tt.cat); got != tt.want {
			t.Errorf("Build(%v) = %+v, want %+v", tt.cat, got, tt.want)
		}
	}
}

func TestUpgradeBaseTable(t *testing.T) {
	want := map[grid.Category]int{
		grid.Residential: 200,
		grid.Commercial:  400,
		grid.Industrial:  600,
		grid.PowerPlant:  1200,
		grid.WaterPlant:  1000,
		grid.Road:        100,
		grid.Park:        150,
		grid.Empty:       100,
	}
	for cat, base := range want {
		if got := UpgradeBase(cat); got != base {
			t.Errorf("UpgradeBase(%v) = %d, want %d", cat, got, base)
		}
	}
}

func TestUpgradeScalesWithLevel(t *testing.T) {
	for level := 1; level <= 5; level++ {
		got := Upgrade(grid.Industrial, level)
		want := Price{Money: 600 * level, Materials: 35 * level}
		if got != want {
			t.Errorf("Upgrade(Industrial, %d) = %+v, want %+v", level, got, want)
		}
	}
}

func TestInvested(t *testing.T) {
	// Level 3 park: build 300/8, then 150*1/8*1, then 150*2/8*2.
	got := Invested(grid.Tile{Category: grid.Park, Level: 3})
	want := Price{Money: 300 + 150 + 300, Materials: 8 + 8 + 16}
	if got != want {
		t.Errorf("Invested(park L3) = %+v, want %+v", got, want)
	}

	if got := Invested(grid.EmptyTile); got != (Price{}) {
		t.Errorf("Invested(empty) = %+v, want zero", got)
	}
}

func TestValuation(t *testing.T) {
	g, _ := grid.New(4, 4)
	_ = g.Set(0, 0, grid.Tile{Category: grid.Road, Level: 1})
	_ = g.Set(1, 0, grid.Tile{Category: grid.Road, Level: 1})
	_ = g.Set(2, 2, grid.Tile{Category: grid.PowerPlant, Level: 2})

	r := Valuation(g)
	if len(r.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(r.Lines))
	}
	// Road comes after PowerPlant in category order.
	if r.Lines[0].Category != grid.PowerPlant || r.Lines[1].Category != grid.Road {
		t.Errorf("line order = %v, %v", r.Lines[0].Category, r.Lines[1].Category)
	}
	if r.Lines[1].Tiles != 2 || r.Lines[1].Invested != (Price{160, 6}) {
		t.Errorf("road line = %+v", r.Lines[1])
	}
	wantTotal := Price{Money: 160 + 1800 + 1200, Materials: 6 + 80 + 80}
	if r.Total != wantTotal {
		t.Errorf("total = %+v, want %+v", r.Total, wantTotal)
	}
}

func TestValuationEmptyGrid(t *testing.T) {
	g, _ := grid.New(1, 1)
	r := Valuation(g)
	if len(r.Lines) != 0 || r.Total != (Price{}) {
		t.Errorf("empty grid valuation = %+v", r)
	}
}
