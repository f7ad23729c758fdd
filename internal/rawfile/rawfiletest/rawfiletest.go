// Package rawfiletest renders simulator exports for tests.
package rawfiletest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/schema"
)

// Row is one simulated year of one run.
type Row struct {
	RunNumber   int64
	Year        int64
	Cows        int64
	Harvest     float64
	MeanHarvest float64
	Woodland    float64
	CropEaten   float64
	Subsidy     float64
	Births      int64
	CowsInCrops int64
	Timer       float64

	// GrainYears is the run's how-long-to-store-grain parameter.
	GrainYears int
}

// Render returns the text of a raw export for the run group name.
func Render(name string, rows []Row) string {
	var sb strings.Builder
	sb.WriteString(`"BehaviorSpace results (NetLogo 6.0.4)"` + "\n")
	sb.WriteString(`"/models/cows.nlogo"` + "\n")
	sb.WriteString(`"` + name + `"` + "\n")
	sb.WriteString(`"05/12/2019 10:11:12:123 +0200"` + "\n")
	sb.WriteString(`"min-pxcor","max-pxcor","min-pycor","max-pycor"` + "\n")
	sb.WriteString(`"0","49","0","49"` + "\n")

	cols := schema.Declared()
	w := csv.NewWriter(&sb)
	_ = w.Write(cols)
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(c, r)
		}
		_ = w.Write(cells)
	}
	w.Flush()
	return sb.String()
}

// Write renders rows into dir/file and returns the path.
func Write(t testing.TB, dir, file, name string, rows []Row) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(Render(name, rows)), 0644); err != nil {
		t.Fatalf("write raw fixture: %v", err)
	}
	return path
}

func cell(col string, r Row) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	i := func(v int64) string { return strconv.FormatInt(v, 10) }
	switch col {
	case schema.RunNumberMarker:
		return i(r.RunNumber)
	case schema.StepMarker:
		return i(r.Year * 16)
	case record.FieldCalendarYear:
		return i(r.Year)
	case record.FieldRainfall:
		return "600.5"
	case record.FieldCropEaten:
		return f(r.CropEaten)
	case record.FieldCurrentHarvest:
		return f(r.Harvest)
	case record.FieldMeanPreviousHarvests:
		return f(r.MeanHarvest)
	case record.FieldCowCount:
		return i(r.Cows)
	case record.FieldWoodlandBiomass:
		return f(r.Woodland)
	case record.FieldSubsidyUsed:
		return f(r.Subsidy)
	case record.FieldTotalBirths:
		return i(r.Births)
	case record.FieldCowsInCrops:
		return i(r.CowsInCrops)
	case record.FieldTimer:
		return f(r.Timer)
	case record.FieldGrainStorageDuration:
		return strconv.Itoa(r.GrainYears)
	case "model-mode", "rainfall-type", "rain-site":
		return `"default"`
	case "invincible-fences", "key-resources", "muonde-projects":
		return "false"
	}
	return "1"
}
