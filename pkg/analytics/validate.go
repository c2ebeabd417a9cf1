package analytics

import (
	"fmt"

	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/validation"
)

// PollutionPenaltyScale is the pollution level at which growth loses a full
// 1.0 from its multiplier.
const PollutionPenaltyScale = 1000

// Diagnose flags the conditions that are currently holding the city back.
func Diagnose(p Production, b Balance, pollution int) *validation.Report {
	report := validation.NewReport()

	diagnoseUtility(report, "power", p.PowerProduced, b.PowerNeeded, b.PowerShortage, grid.PowerPlant)
	diagnoseUtility(report, "water", p.WaterProduced, b.WaterNeeded, b.WaterShortage, grid.WaterPlant)
	diagnoseHousing(report, b)
	diagnoseJobs(report, p, b)
	diagnosePollution(report, p, pollution)

	return report
}

func diagnoseUtility(report *validation.Report, name string, produced, needed int, shortage float64, plant grid.Category) {
	if shortage <= 0 {
		return
	}
	report.AddWarning(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     fmt.Sprintf("%s supply %d covers %.0f%% of demand %d", name, produced, 100*(1-min(shortage, 1)), needed),
		Path:        name,
		ActualValue: produced,
		Expected:    fmt.Sprintf(">= %d", needed),
		Suggestions: []string{fmt.Sprintf("Build or upgrade a %s", plant)},
	})
}

func diagnoseHousing(report *validation.Report, b Balance) {
	if b.Vacancy >= 0 {
		return
	}
	report.AddWarning(validation.Result{
		Level:        validation.LevelAnalytical,
		Message:      fmt.Sprintf("population %d exceeds residential capacity by %d", b.Population, -b.Vacancy),
		Path:         "population",
		ActualValue:  b.Population,
		ConflictWith: "residential capacity",
		Suggestions:  []string{"Build or upgrade Residential tiles"},
	})
}

func diagnoseJobs(report *validation.Report, p Production, b Balance) {
	if b.JobGap <= 0 {
		return
	}
	report.AddInfo(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     fmt.Sprintf("%d residents without work (%d jobs available)", b.JobGap, p.Jobs()),
		Path:        "jobs",
		ActualValue: b.JobGap,
	})
}

func diagnosePollution(report *validation.Report, p Production, pollution int) {
	projected := pollution + p.PollutionGenerated
	if projected < PollutionPenaltyScale/10 {
		return
	}
	report.AddWarning(validation.Result{
		Level:       validation.LevelAnalytical,
		Message:     fmt.Sprintf("pollution heading to %d cuts growth by %.2f", projected, float64(projected)/PollutionPenaltyScale),
		Path:        "pollution",
		ActualValue: projected,
		Suggestions: []string{"Build Parks", "Replace Industrial tiles"},
	})
}
