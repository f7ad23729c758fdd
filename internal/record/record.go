package record

import "fmt"

// #region field-names
// Names of the per-year fields, after the reserved-marker rename.
const (
	FieldStep                 = "step"
	FieldCalendarYear         = "calendar-year"
	FieldRainfall             = "rainfall"
	FieldCropEaten            = "crop-eaten"
	FieldCurrentHarvest       = "current-harvest"
	FieldMeanPreviousHarvests = "mean previous-harvests-list"
	FieldCowCount             = "count cows"
	FieldWoodlandBiomass      = "total-woodland-biomass"
	FieldSubsidyUsed          = "subsidy-used"
	FieldTotalBirths          = "total-number-of-births"
	FieldCowsInCrops          = "count-cows-in-crops"
	FieldTimer                = "timer"
)

// Run-level names the reducer and the id derivation read directly.
const (
	FieldRunID                = "Run ID"
	FieldRunNumber            = "run number"
	FieldGrainStorageDuration = "how-long-to-store-grain"
)

// Provenance field names, read from the raw header block.
const (
	FieldModelFile         = "nlogo-file"
	FieldSourceFile        = "source-file-from-cluster"
	FieldBehaviorspaceName = "behaviorspace-name"
	FieldRunTimestamp      = "date-and-time-of-run"
)
// #endregion field-names

// #region values
// NamedValue pairs a field name with its coerced value.
type NamedValue struct {
	Name  string
	Value Value
}

// Values is an ordered projection of a row.
type Values []NamedValue

// Get returns the value stored under name.
func (vs Values) Get(name string) (Value, bool) {
	for _, nv := range vs {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value under name, appending it when absent.
func (vs *Values) Set(name string, v Value) {
	for i := range *vs {
		if (*vs)[i].Name == name {
			(*vs)[i].Value = v
			return
		}
	}
	*vs = append(*vs, NamedValue{Name: name, Value: v})
}

// Names lists the field names in order.
func (vs Values) Names() []string {
	names := make([]string, len(vs))
	for i, nv := range vs {
		names[i] = nv.Name
	}
	return names
}
// #endregion values

// #region provenance
// Provenance describes the raw source a run was read from.
type Provenance struct {
	ModelFile         Value
	SourceFile        Value
	BehaviorspaceName Value
	RunTimestamp      Value
}

// Values returns the provenance in its output column order.
func (p Provenance) Values() Values {
	return Values{
		{Name: FieldModelFile, Value: p.ModelFile},
		{Name: FieldSourceFile, Value: p.SourceFile},
		{Name: FieldBehaviorspaceName, Value: p.BehaviorspaceName},
		{Name: FieldRunTimestamp, Value: p.RunTimestamp},
	}
}
// #endregion provenance

// #region run-record
// RunRecord holds the static parameters of one simulation run.
type RunRecord struct {
	ID         string
	RunNumber  int64
	Params     Values
	Provenance Provenance
}

// RunID derives the run identity from the run-group label and run number.
func RunID(behaviorspaceName string, runNumber int64) string {
	return fmt.Sprintf("%s-%06d", behaviorspaceName, runNumber)
}

// StoresGrain reports whether the run keeps harvests over several years,
// i.e. its grain-storage duration is non-zero. A missing or non-numeric
// duration counts as storing.
func (r RunRecord) StoresGrain() bool {
	v, ok := r.Params.Get(FieldGrainStorageDuration)
	if !ok {
		return true
	}
	f, ok := v.AsFloat()
	return !ok || f != 0
}
// #endregion run-record

// #region year-record
// YearRecord is one calendar year of a run's dynamics. TotalBirths and
// CowsInCrops are cumulative over all years up to and including this one.
type YearRecord struct {
	Step                 int64
	CalendarYear         int64
	Rainfall             float64
	CropEaten            float64
	CurrentHarvest       float64
	MeanPreviousHarvests float64
	CowCount             int64
	WoodlandBiomass      float64
	SubsidyUsed          float64
	TotalBirths          int64
	CowsInCrops          int64
	Timer                float64
}

// Field returns the named field as a Value.
func (y YearRecord) Field(name string) (Value, bool) {
	switch name {
	case FieldStep:
		return Int(y.Step), true
	case FieldCalendarYear:
		return Int(y.CalendarYear), true
	case FieldRainfall:
		return Float(y.Rainfall), true
	case FieldCropEaten:
		return Float(y.CropEaten), true
	case FieldCurrentHarvest:
		return Float(y.CurrentHarvest), true
	case FieldMeanPreviousHarvests:
		return Float(y.MeanPreviousHarvests), true
	case FieldCowCount:
		return Int(y.CowCount), true
	case FieldWoodlandBiomass:
		return Float(y.WoodlandBiomass), true
	case FieldSubsidyUsed:
		return Float(y.SubsidyUsed), true
	case FieldTotalBirths:
		return Int(y.TotalBirths), true
	case FieldCowsInCrops:
		return Int(y.CowsInCrops), true
	case FieldTimer:
		return Float(y.Timer), true
	}
	return Value{}, false
}

// YearFromValues builds a YearRecord from an extracted per-year projection.
func YearFromValues(vs Values) (YearRecord, error) {
	var y YearRecord
	ints := []struct {
		name string
		dst  *int64
	}{
		{FieldStep, &y.Step},
		{FieldCalendarYear, &y.CalendarYear},
		{FieldCowCount, &y.CowCount},
		{FieldTotalBirths, &y.TotalBirths},
		{FieldCowsInCrops, &y.CowsInCrops},
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{FieldRainfall, &y.Rainfall},
		{FieldCropEaten, &y.CropEaten},
		{FieldCurrentHarvest, &y.CurrentHarvest},
		{FieldMeanPreviousHarvests, &y.MeanPreviousHarvests},
		{FieldWoodlandBiomass, &y.WoodlandBiomass},
		{FieldSubsidyUsed, &y.SubsidyUsed},
		{FieldTimer, &y.Timer},
	}

	for _, f := range ints {
		v, ok := vs.Get(f.name)
		if !ok {
			return YearRecord{}, fmt.Errorf("year field %q missing", f.name)
		}
		n, ok := v.AsInt()
		if !ok {
			return YearRecord{}, fmt.Errorf("year field %q: %q is not an integer", f.name, v.Text())
		}
		*f.dst = n
	}
	for _, f := range floats {
		v, ok := vs.Get(f.name)
		if !ok {
			return YearRecord{}, fmt.Errorf("year field %q missing", f.name)
		}
		x, ok := v.AsFloat()
		if !ok {
			return YearRecord{}, fmt.Errorf("year field %q: %q is not a number", f.name, v.Text())
		}
		*f.dst = x
	}
	return y, nil
}
// #endregion year-record
