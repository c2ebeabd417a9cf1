// Package cost holds the construction economy: what it costs to place or
// upgrade each tile category, and what a built-up grid is worth.
package cost

import "github.com/samlin1112/CitySim/pkg/grid"

// Price is a money and materials amount.
type Price struct {
	Money     int `json:"money"`
	Materials int `json:"materials"`
}

// Add returns the component-wise sum.
func (p Price) Add(o Price) Price {
	return Price{Money: p.Money + o.Money, Materials: p.Materials + o.Materials}
}

// BuildMoney returns the money needed to place c at level 1.
func BuildMoney(c grid.Category) int {
	return table[c].build
}

// BuildMaterials returns the materials needed to place c at level 1.
func BuildMaterials(c grid.Category) int {
	return table[c].materials
}

// UpgradeBase returns the per-level money price of upgrading c.
func UpgradeBase(c grid.Category) int {
	if e, ok := table[c]; ok {
		return e.upgradeBase
	}
	return DefaultUpgradeBase
}

// Build returns the price of placing c. Empty is free.
func Build(c grid.Category) Price {
	return Price{Money: BuildMoney(c), Materials: BuildMaterials(c)}
}

// Upgrade returns the price of raising a tile of category c from level to level+1.
func Upgrade(c grid.Category, level int) Price {
	return Price{
		Money:     UpgradeBase(c) * level,
		Materials: BuildMaterials(c) * level,
	}
}

// Invested returns the total paid for a tile: its build price plus every
// upgrade step from level 1 to its current level.
func Invested(t grid.Tile) Price {
	if t.IsEmpty() {
		return Price{}
	}
	total := Build(t.Category)
	for l := 1; l < t.Level; l++ {
		total = total.Add(Upgrade(t.Category, l))
	}
	return total
}

// Line is the valuation of one category.
type Line struct {
	Category grid.Category `json:"category"`
	Tiles    int           `json:"tiles"`
	Levels   int           `json:"levels"`
	Invested Price         `json:"invested"`
}

// Report is the valuation of a whole grid.
type Report struct {
	Lines []Line `json:"lines"`
	Total Price  `json:"total"`
}

// Valuation sums what has been invested in every built tile, by category.
// Lines follow grid.Categories order and omit categories with no tiles.
func Valuation(g *grid.Grid) *Report {
	byCat := make(map[grid.Category]*Line)
	g.Each(func(_, _ int, t grid.Tile) {
		if t.IsEmpty() {
			return
		}
		l, ok := byCat[t.Category]
		if !ok {
			l = &Line{Category: t.Category}
			byCat[t.Category] = l
		}
		l.Tiles++
		l.Levels += t.Level
		l.Invested = l.Invested.Add(Invested(t))
	})

	report := &Report{Lines: []Line{}}
	for _, c := range grid.Categories {
		if l, ok := byCat[c]; ok {
			report.Lines = append(report.Lines, *l)
			report.Total = report.Total.Add(l.Invested)
		}
	}
	return report
}
