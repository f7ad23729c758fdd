package schema

import (
	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region kind
// Kind is the value kind a declared field must coerce to.
type Kind int

const (
	Any Kind = iota
	Integer
	Number
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Number:
		return "number"
	default:
		return "any"
	}
}

func (k Kind) accepts(v record.Value) bool {
	switch k {
	case Integer:
		_, ok := v.AsInt()
		return ok
	case Number:
		_, ok := v.AsFloat()
		return ok
	}
	return true
}
// #endregion kind

// #region field
// Field is one declared column of the raw CSV body.
type Field struct {
	Name string
	Kind Kind
}

// Reserved bracketed markers used by the simulator's export.
const (
	RunNumberMarker = "[run number]"
	StepMarker      = "[step]"
)

// OutputName maps a raw column name to the name used in records.
func OutputName(raw string) string {
	switch raw {
	case RunNumberMarker:
		return record.FieldRunNumber
	case StepMarker:
		return record.FieldStep
	}
	return raw
}
// #endregion field

// #region declared-fields
// YearFields are the per-year dynamics columns.
var YearFields = []Field{
	{StepMarker, Integer},
	{record.FieldCalendarYear, Integer},
	{record.FieldRainfall, Number},
	{record.FieldCropEaten, Number},
	{record.FieldCurrentHarvest, Number},
	{record.FieldMeanPreviousHarvests, Number},
	{record.FieldCowCount, Integer},
	{record.FieldWoodlandBiomass, Number},
	{record.FieldSubsidyUsed, Number},
	{record.FieldTotalBirths, Integer},
	{record.FieldCowsInCrops, Integer},
	{record.FieldTimer, Number},
}

// RunFields are the per-run parameter columns, run number first.
var RunFields = []Field{
	{RunNumberMarker, Integer},
	{"model-mode", Any},
	{"times-per-day-farmers-move-cows", Any},
	{"invincible-fences", Any},
	{"key-resources", Any},
	{"subsidy", Any},
	{"cow-proportion-to-save", Any},
	{"rainfall-type", Any},
	{"muonde-projects", Any},
	{"rain-site", Any},
	{record.FieldGrainStorageDuration, Number},
	{"clumpiness", Any},
	{"total-mud-crop-perimeter", Any},
	{"wood-to-build-fence-per-meter", Any},
	{"termite-activity", Any},
	{"hours-to-plough-ha", Any},
	{"crop-growth-slope", Any},
	{"zero-crop-growth-intercept", Any},
	{"muonde-efficiency", Any},
	{"woodland-growth-slope", Any},
	{"cow-maintenance-energy-rate", Any},
	{"cow-working-energy-per-hour", Any},
	{"kcal-per-kg-of-browse", Any},
	{"kcal-per-kg-of-crop", Any},
	{"kcal-per-kg-of-cow", Any},
	{"production-efficiency", Any},
	{"catabolism-efficiency", Any},
	{"min-cow-mass", Any},
	{"max-cow-mass", Any},
	{"calf-birth-mass", Any},
	{"livestock-not-reproduction-rate-per-year", Any},
	{"morans-i", Any},
	{"gearys-c", Any},
	{"total-crop-perimeter", Any},
	{"average-contiguous-crop-cluster-size", Any},
	{"proportion-crops", Any},
	{"model-setup-time", Any},
}

// ParamFields returns RunFields without the run-number marker.
func ParamFields() []Field {
	return RunFields[1:]
}

// Declared returns the full column set expected in a raw CSV body.
func Declared() []string {
	names := make([]string, 0, len(RunFields)+len(YearFields))
	for _, f := range RunFields {
		names = append(names, f.Name)
	}
	for _, f := range YearFields {
		names = append(names, f.Name)
	}
	return names
}
// #endregion declared-fields

// #region output-columns
// RunOutputColumns is the column order of a per-run intermediate file.
func RunOutputColumns() []string {
	cols := []string{record.FieldRunID, record.FieldRunNumber}
	for _, f := range ParamFields() {
		cols = append(cols, f.Name)
	}
	return append(cols, record.Provenance{}.Values().Names()...)
}

// YearOutputColumns is the column order of a per-year intermediate file.
func YearOutputColumns() []string {
	cols := make([]string, 0, len(YearFields))
	for _, f := range YearFields {
		cols = append(cols, OutputName(f.Name))
	}
	return cols
}
// #endregion output-columns
