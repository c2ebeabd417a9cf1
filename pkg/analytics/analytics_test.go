package analytics

import (
	"math"
	"testing"

	"github.com/samlin1112/CitySim/pkg/grid"
)

func mixedGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	tiles := map[[2]int]grid.Tile{
		{0, 0}: {Category: grid.Residential, Level: 2},
		{1, 0}: {Category: grid.Commercial, Level: 1},
		{2, 0}: {Category: grid.Industrial, Level: 3},
		{3, 0}: {Category: grid.PowerPlant, Level: 1},
		{0, 1}: {Category: grid.WaterPlant, Level: 2},
		{1, 1}: {Category: grid.Park, Level: 1},
		{2, 1}: {Category: grid.Road, Level: 5},
	}
	for xy, tile := range tiles {
		if err := g.Set(xy[0], xy[1], tile); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestSurveyMixedGrid(t *testing.T) {
	p := Survey(mixedGrid(t))

	checks := []struct {
		name      string
		got, want int
	}{
		{"residential_capacity", p.ResidentialCapacity, 20},
		{"commercial_jobs", p.CommercialJobs, 12},
		{"industrial_jobs", p.IndustrialJobs, 24},
		{"materials_produced", p.MaterialsProduced, 18},
		{"power_produced", p.PowerProduced, 60},
		{"water_produced", p.WaterProduced, 120},
		// industrial 4*3 + power 6*1 - park 5*1
		{"pollution_generated", p.PollutionGenerated, 13},
		{"jobs", p.Jobs(), 36},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if p.Tiles[grid.Empty] != 9 || p.Tiles[grid.Road] != 1 {
		t.Errorf("tile counts = %v", p.Tiles)
	}
}

func TestSurveyParksCanGoNegative(t *testing.T) {
	g, _ := grid.New(2, 1)
	_ = g.Set(0, 0, grid.Tile{Category: grid.Park, Level: 3})
	p := Survey(g)
	if p.PollutionGenerated != -15 {
		t.Errorf("pollution_generated = %d, want -15", p.PollutionGenerated)
	}
}

func TestShortage(t *testing.T) {
	tests := []struct {
		produced, needed int
		want             float64
	}{
		{0, 100, 1.0},
		{60, 100, 0.4},
		{100, 100, 0},
		{150, 100, 0},
		{0, 0, 0},
		{-10, 0, 10}, // unclamped; max(1, needed) guards the division
	}
	for _, tt := range tests {
		if got := Shortage(tt.produced, tt.needed); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Shortage(%d, %d) = %v, want %v", tt.produced, tt.needed, got, tt.want)
		}
	}
}

func TestAssessFullShortage(t *testing.T) {
	g, _ := grid.New(12, 12)
	b := Assess(Survey(g), 100, 60)
	if b.ShortageFactor != 2.0 {
		t.Errorf("shortage_factor = %v, want 2.0", b.ShortageFactor)
	}
	if b.Vacancy != -100 {
		t.Errorf("vacancy = %d, want -100", b.Vacancy)
	}
	if b.JobGap != 40 {
		t.Errorf("job_gap = %d, want 40", b.JobGap)
	}
}

func TestDiagnose(t *testing.T) {
	g, _ := grid.New(12, 12)
	p := Survey(g)
	b := Assess(p, 100, 60)
	r := Diagnose(p, b, 500)

	if !r.Valid {
		t.Error("diagnosis never produces errors")
	}
	// power, water, housing, pollution
	if len(r.Warnings) != 4 {
		t.Errorf("warnings = %d, want 4: %v", len(r.Warnings), r.Warnings)
	}
	if len(r.Info) != 1 {
		t.Errorf("info = %d, want 1 (unemployment)", len(r.Info))
	}
}

func TestDiagnoseHealthyCity(t *testing.T) {
	p := Production{ResidentialCapacity: 200, PowerProduced: 120, WaterProduced: 120, CommercialJobs: 120}
	b := Assess(p, 100, 100)
	r := Diagnose(p, b, 0)
	if len(r.Warnings) != 0 || len(r.Info) != 0 {
		t.Errorf("healthy city diagnosis = %s", r.Summary)
	}
}
