package persist

import (
	"fmt"

	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/validation"
)

// Check lists every problem in s. Errors make Deserialize fail; warnings
// describe data that loads but could not have come from a running city.
func Check(s Snapshot) *validation.Report {
	report := validation.NewReport()

	fields := []struct {
		name     string
		v        *int
		nonNeg   bool
		positive bool
	}{
		{"Width", s.Width, false, true},
		{"Height", s.Height, false, true},
		{"Money", s.Money, false, false},
		{"Power", s.Power, true, false},
		{"Water", s.Water, true, false},
		{"Materials", s.Materials, true, false},
		{"Population", s.Population, true, false},
		{"Jobs", s.Jobs, true, false},
		{"Pollution", s.Pollution, true, false},
		{"TickCount", s.TickCount, true, false},
	}
	for _, f := range fields {
		switch {
		case f.v == nil:
			report.AddError(snapshotError(f.name, "required field is missing", nil, ""))
		case f.positive && *f.v < 1:
			report.AddError(snapshotError(f.name, "must be at least 1", *f.v, ">= 1"))
		case f.nonNeg && *f.v < 0:
			report.AddError(snapshotError(f.name, "must not be negative", *f.v, ">= 0"))
		}
	}

	if s.Width == nil || s.Height == nil || *s.Width < 1 || *s.Height < 1 {
		return report
	}
	w, h := *s.Width, *s.Height
	if w > grid.MaxCells/h {
		report.AddError(snapshotError("Width", fmt.Sprintf("grid %dx%d exceeds %d cells", w, h, grid.MaxCells), nil, fmt.Sprintf("<= %d", grid.MaxCells)))
		return report
	}

	for i, rec := range s.Tiles {
		path := fmt.Sprintf("Tiles[%d]", i)
		if rec.X < 0 || rec.X >= w || rec.Y < 0 || rec.Y >= h {
			report.AddError(snapshotError(path, fmt.Sprintf("cell (%d,%d) outside %dx%d grid", rec.X, rec.Y, w, h), nil, ""))
		}
		cat, err := grid.ParseCategory(rec.Type)
		if err != nil {
			report.AddError(snapshotError(path+".Type", err.Error(), rec.Type, "a tile category name"))
			continue
		}
		if rec.Level < 1 && cat != grid.Empty {
			report.AddError(snapshotError(path+".Level", "level must be at least 1", rec.Level, ">= 1"))
		}
	}

	if n := len(s.Tiles); n < w*h {
		report.AddInfo(validation.Result{
			Level:   validation.LevelSnapshot,
			Message: fmt.Sprintf("%d of %d cells recorded; the rest load as Empty", n, w*h),
			Path:    "Tiles",
		})
	}
	if s.Jobs != nil && s.Population != nil && *s.Jobs > *s.Population {
		report.AddWarning(validation.Result{
			Level:        validation.LevelSnapshot,
			Message:      "more jobs filled than residents",
			Path:         "Jobs",
			ActualValue:  *s.Jobs,
			ConflictWith: "Population",
		})
	}
	return report
}

func snapshotError(path, msg string, actual any, expected string) validation.Result {
	return validation.Result{
		Level:       validation.LevelSnapshot,
		Message:     msg,
		Path:        path,
		ActualValue: actual,
		Expected:    expected,
	}
}
