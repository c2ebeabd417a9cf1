package main

import (
	"fmt"

	"github.com/samlin1112/CitySim/pkg/session"
	"github.com/samlin1112/CitySim/pkg/store"
	"github.com/samlin1112/CitySim/pkg/validation"
)

func printResults(title string, results []validation.Result, detail bool) {
	if len(results) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", title, len(results))
	for _, r := range results {
		fmt.Printf("  [%s] %s\n", r.Level, r.Message)
		if !detail {
			continue
		}
		if r.Path != "" {
			fmt.Printf("    -> %s = %v\n", r.Path, r.ActualValue)
		}
		if r.Expected != "" {
			fmt.Printf("    expected: %s\n", r.Expected)
		}
		if r.ConflictWith != "" {
			fmt.Printf("    conflicts with: %s\n", r.ConflictWith)
		}
		for _, s := range r.Suggestions {
			fmt.Printf("    * %s\n", s)
		}
	}
	fmt.Println()
}

func printValidationReport(r *validation.Report) {
	printResults("ERRORS", r.Errors, true)
	printResults("WARNINGS", r.Warnings, true)
	printResults("INFO", r.Info, false)

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printCityReport(r session.Report) {
	c := r.City
	fmt.Printf("City %dx%d at tick %d\n", c.Width, c.Height, c.TickCount)
	fmt.Println("==========================")
	fmt.Println()
	fmt.Printf("  Money:       %s\n", formatMoney(c.Money))
	fmt.Printf("  Materials:   %d\n", c.Materials)
	fmt.Printf("  Population:  %d\n", c.Population)
	fmt.Printf("  Jobs:        %d\n", c.Jobs)
	fmt.Printf("  Power:       %d\n", c.Power)
	fmt.Printf("  Water:       %d\n", c.Water)
	fmt.Printf("  Pollution:   %d\n", c.Pollution)
	fmt.Println()

	p, b := r.Production, r.Balance
	fmt.Println("Per tick")
	fmt.Println("--------")
	fmt.Printf("  Housing:     %d\n", p.ResidentialCapacity)
	fmt.Printf("  Jobs:        %d\n", p.Jobs())
	fmt.Printf("  Power:       %d produced, %d needed\n", p.PowerProduced, b.PowerNeeded)
	fmt.Printf("  Water:       %d produced, %d needed\n", p.WaterProduced, b.WaterNeeded)
	fmt.Printf("  Materials:   %d\n", p.MaterialsProduced)
	fmt.Printf("  Pollution:   %+d\n", p.PollutionGenerated)
	fmt.Println()

	printValuationTable(r)
	fmt.Println()
	printValidationReport(r.Diagnosis)
}

func printValuationTable(r session.Report) {
	v := r.Valuation
	if len(v.Lines) == 0 {
		fmt.Println("Nothing built.")
		return
	}
	fmt.Printf("%-12s %6s %7s %10s %10s\n", "Category", "Tiles", "Levels", "Money", "Materials")
	fmt.Printf("%-12s %6s %7s %10s %10s\n", "------------", "------", "-------", "----------", "----------")
	for _, l := range v.Lines {
		fmt.Printf("%-12s %6d %7d %10s %10d\n", l.Category, l.Tiles, l.Levels, formatMoney(l.Invested.Money), l.Invested.Materials)
	}
	fmt.Printf("%-12s %6s %7s %10s %10d\n", "TOTAL", "", "", formatMoney(v.Total.Money), v.Total.Materials)
}

func printSlots(slots []store.Slot) {
	if len(slots) == 0 {
		fmt.Println("No saves.")
		return
	}
	fmt.Printf("%-36s  %-16s %7s %6s %10s %10s  %s\n", "ID", "Name", "Size", "Tick", "Money", "Pop", "Saved")
	for _, s := range slots {
		fmt.Printf("%-36s  %-16s %7s %6d %10s %10d  %s\n",
			s.ID, s.Name, fmt.Sprintf("%dx%d", s.Width, s.Height), s.TickCount,
			formatMoney(s.Money), s.Population, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

// formatMoney abbreviates large amounts. Debt keeps its sign.
func formatMoney(v int) string {
	f := float64(v)
	abs := f
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", f/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.2fM", f/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%.1fK", f/1_000)
	}
	return fmt.Sprintf("%d", v)
}
