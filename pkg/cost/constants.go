package cost

import "github.com/samlin1112/CitySim/pkg/grid"

// DefaultUpgradeBase applies to categories without their own upgrade price.
const DefaultUpgradeBase = 100

// Unit prices per category.
// Upgrades scale linearly with the level being left.
var table = map[grid.Category]struct {
	build       int // $ to place at level 1
	materials   int // materials to place at level 1
	upgradeBase int // $ per current level to upgrade
}{
	grid.Residential: {300, 12, 200},
	grid.Commercial:  {600, 25, 400},
	grid.Industrial:  {900, 35, 600},
	grid.PowerPlant:  {1800, 80, 1200},
	grid.WaterPlant:  {1600, 70, 1000},
	grid.Road:        {80, 3, DefaultUpgradeBase},
	grid.Park:        {300, 8, 150},
}
