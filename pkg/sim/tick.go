package sim

import (
	"github.com/samlin1112/CitySim/pkg/analytics"
)

const (
	// SummaryEvery is how often, in ticks, a status line is emitted.
	SummaryEvery = 10
	// PollutionDecay is removed from accumulated pollution every tick.
	PollutionDecay = 10
	// MaintenancePerCell and MaintenancePerCapita make up the upkeep bill.
	MaintenancePerCell   = 0.12
	MaintenancePerCapita = 0.6
	// BaseGrowthMultiplier is reduced by pollution and tax to scale growth.
	BaseGrowthMultiplier = 1.2
)

// Step records the intermediate figures of one unit tick.
type Step struct {
	Tick        int                  `json:"tick"`
	Production  analytics.Production `json:"production"`
	Balance     analytics.Balance    `json:"balance"`
	Growth      int                  `json:"growth"`
	Taxes       int                  `json:"taxes"`
	Maintenance int                  `json:"maintenance"`
}

// TickReport is what a call to Tick did. Messages holds the summary lines
// emitted along the way, at most one per step.
type TickReport struct {
	Steps    []Step   `json:"steps"`
	Messages []string `json:"messages"`
}

// Last returns the final step.
func (r TickReport) Last() Step {
	if len(r.Steps) == 0 {
		return Step{}
	}
	return r.Steps[len(r.Steps)-1]
}

// Tick advances the city by seconds unit steps at the given tax rate.
// Values below 1 run a single step.
func (c *City) Tick(seconds int, taxRate float64) TickReport {
	n := max(1, seconds)
	report := TickReport{Steps: make([]Step, 0, n), Messages: []string{}}
	for range n {
		report.Steps = append(report.Steps, c.step(taxRate))
		if c.TickCount%SummaryEvery == 0 {
			report.Messages = append(report.Messages, c.Summary())
		}
	}
	return report
}

// step runs one unit tick. Every float to int conversion truncates toward
// zero, and products are rounded to float64 explicitly before any addition
// so that no multiply-add gets fused.
func (c *City) step(taxRate float64) Step {
	c.TickCount++

	p := analytics.Survey(c.Grid)
	b := analytics.Assess(p, c.Population, c.Jobs)

	// Published figures are gross production; demand only feeds the shortage.
	c.Power = max(0, p.PowerProduced)
	c.Water = max(0, p.WaterProduced)

	growth := int(float64(c.Population) * (1.0 - b.ShortageFactor))
	if b.Vacancy < 0 {
		growth -= int(float64(-b.Vacancy) * 0.5)
	} else {
		growth += int(float64(b.Vacancy) * 0.5)
	}
	if b.JobGap > 0 {
		growth -= int(float64(b.JobGap) * 0.03)
	}

	penalty := max(0, float64(c.Pollution+p.PollutionGenerated)/analytics.PollutionPenaltyScale)
	// A negative growth times a negative multiplier turns into growth.
	// This matches the reference model and is kept as is.
	growth = int(float64(growth) * (BaseGrowthMultiplier - penalty - taxRate))

	c.Population = max(0, c.Population+growth)
	c.Jobs = min(c.Population, p.Jobs())
	c.Materials += p.MaterialsProduced

	taxes := int(float64(float64(c.Population)*taxRate) + float64(p.CommercialJobs))
	c.Money += taxes

	maintenance := int(float64(float64(c.Width*c.Height)*MaintenancePerCell) +
		float64(float64(c.Population)*MaintenancePerCapita))
	c.Money -= maintenance

	c.Pollution = max(0, c.Pollution+p.PollutionGenerated-PollutionDecay)

	return Step{
		Tick:        c.TickCount,
		Production:  p,
		Balance:     b,
		Growth:      growth,
		Taxes:       taxes,
		Maintenance: maintenance,
	}
}
