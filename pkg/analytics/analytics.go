// Package analytics measures what a city grid produces and how far that
// falls short of what its population needs.
package analytics

import "github.com/samlin1112/CitySim/pkg/grid"

// yield is what one tile of a category contributes per level.
type yield struct {
	capacity  int
	comJobs   int
	indJobs   int
	materials int
	power     int
	water     int
	pollution int
}

// yields maps each productive category to its per-level output.
// Road and Empty contribute nothing.
var yields = map[grid.Category]yield{
	grid.Residential: {capacity: 10},
	grid.Commercial:  {comJobs: 12},
	grid.Industrial:  {indJobs: 8, materials: 6, pollution: 4},
	grid.PowerPlant:  {power: 60, pollution: 6},
	grid.WaterPlant:  {water: 60},
	grid.Park:        {pollution: -5},
}

// PerCapitaDemand is the power and water each resident consumes per tick.
const PerCapitaDemand = 1

// Survey accumulates the contributions of every tile in a single pass.
func Survey(g *grid.Grid) Production {
	p := Production{Tiles: make(map[grid.Category]int)}
	g.Each(func(_, _ int, t grid.Tile) {
		p.Tiles[t.Category]++
		y, ok := yields[t.Category]
		if !ok {
			return
		}
		l := t.Level
		p.ResidentialCapacity += y.capacity * l
		p.CommercialJobs += y.comJobs * l
		p.IndustrialJobs += y.indJobs * l
		p.MaterialsProduced += y.materials * l
		p.PowerProduced += y.power * l
		p.WaterProduced += y.water * l
		p.PollutionGenerated += y.pollution * l
	})
	return p
}

// Shortage returns the unmet fraction of demand for one resource. It is 0
// when supply covers demand and is not clamped above 1.
func Shortage(produced, needed int) float64 {
	if produced >= needed {
		return 0
	}
	return float64(needed-produced) / float64(max(1, needed))
}

// Assess computes the supply/demand balance of p for population residents
// currently holding jobs jobs.
func Assess(p Production, population, jobs int) Balance {
	b := Balance{
		Population:  population,
		PowerNeeded: population * PerCapitaDemand,
		WaterNeeded: population * PerCapitaDemand,
		Vacancy:     p.ResidentialCapacity - population,
		JobGap:      max(0, population-jobs),
	}
	b.PowerShortage = Shortage(p.PowerProduced, b.PowerNeeded)
	b.WaterShortage = Shortage(p.WaterProduced, b.WaterNeeded)
	b.ShortageFactor = b.PowerShortage + b.WaterShortage
	return b
}
