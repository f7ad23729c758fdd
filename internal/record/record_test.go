package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunID(t *testing.T) {
	assert.Equal(t, "experiment-a-000042", RunID("experiment-a", 42))
	assert.Equal(t, "x-1234567", RunID("x", 1234567))
}

func TestStoresGrain(t *testing.T) {
	var r RunRecord
	assert.True(t, r.StoresGrain(), "missing duration")

	r.Params.Set(FieldGrainStorageDuration, Int(0))
	assert.False(t, r.StoresGrain())

	r.Params.Set(FieldGrainStorageDuration, Float(3))
	assert.True(t, r.StoresGrain())

	r.Params.Set(FieldGrainStorageDuration, Float(0))
	assert.False(t, r.StoresGrain())
	assert.Len(t, r.Params, 1, "Set replaces in place")
}

func yearValues() Values {
	return Values{
		{FieldStep, Int(16)},
		{FieldCalendarYear, Int(1)},
		{FieldRainfall, Float(512.5)},
		{FieldCropEaten, Float(10)},
		{FieldCurrentHarvest, Int(700)},
		{FieldMeanPreviousHarvests, Float(650.25)},
		{FieldCowCount, Int(30)},
		{FieldWoodlandBiomass, Float(1234.5)},
		{FieldSubsidyUsed, Float(0)},
		{FieldTotalBirths, Int(4)},
		{FieldCowsInCrops, Int(2)},
		{FieldTimer, Float(1.75)},
	}
}

func TestYearFromValues(t *testing.T) {
	y, err := YearFromValues(yearValues())
	require.NoError(t, err)
	assert.Equal(t, int64(1), y.CalendarYear)
	assert.Equal(t, 700.0, y.CurrentHarvest, "integers widen to float fields")
	assert.Equal(t, int64(30), y.CowCount)

	v, ok := y.Field(FieldWoodlandBiomass)
	require.True(t, ok)
	assert.Equal(t, Float(1234.5), v)

	_, ok = y.Field("nope")
	assert.False(t, ok)
}

func TestYearFromValuesErrors(t *testing.T) {
	vs := yearValues()
	vs.Set(FieldCowCount, Float(2.5))
	_, err := YearFromValues(vs)
	assert.ErrorContains(t, err, "not an integer")

	vs = yearValues()
	vs.Set(FieldRainfall, String("dry"))
	_, err = YearFromValues(vs)
	assert.ErrorContains(t, err, "not a number")

	_, err = YearFromValues(yearValues()[1:])
	assert.ErrorContains(t, err, "missing")
}
