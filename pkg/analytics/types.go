package analytics

import "github.com/samlin1112/CitySim/pkg/grid"

// Production is what the built tiles of a grid yield in one tick.
type Production struct {
	ResidentialCapacity int `json:"residential_capacity"`
	CommercialJobs      int `json:"commercial_jobs"`
	IndustrialJobs      int `json:"industrial_jobs"`
	MaterialsProduced   int `json:"materials_produced"`
	PowerProduced       int `json:"power_produced"`
	WaterProduced       int `json:"water_produced"`
	// PollutionGenerated is net of parks and may be negative.
	PollutionGenerated int `json:"pollution_generated"`

	Tiles map[grid.Category]int `json:"tiles"`
}

// Jobs returns commercial plus industrial jobs.
func (p Production) Jobs() int {
	return p.CommercialJobs + p.IndustrialJobs
}

// Balance compares one tick's utility supply with a population's demand.
type Balance struct {
	Population     int     `json:"population"`
	PowerNeeded    int     `json:"power_needed"`
	WaterNeeded    int     `json:"water_needed"`
	PowerShortage  float64 `json:"power_shortage"`
	WaterShortage  float64 `json:"water_shortage"`
	ShortageFactor float64 `json:"shortage_factor"`
	Vacancy        int     `json:"vacancy"`
	JobGap         int     `json:"job_gap"`
}
