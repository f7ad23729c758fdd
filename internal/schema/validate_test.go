package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/runsummary/internal/record"
)

func TestValidateAcceptsAnyOrder(t *testing.T) {
	declared := Declared()
	observed := make([]string, len(declared))
	for i, n := range declared {
		observed[len(declared)-1-i] = n
	}
	assert.NoError(t, Validate("a.dat", declared, observed))
}

func TestValidateReportsMissingAndExtra(t *testing.T) {
	declared := Declared()
	observed := append([]string{"surprise"}, declared[:len(declared)-1]...)

	err := Validate("a.dat", declared, observed)
	var mm *MismatchError
	require.True(t, errors.As(err, &mm))
	if diff := cmp.Diff(&MismatchError{
		Source:  "a.dat",
		Missing: []string{declared[len(declared)-1]},
		Extra:   []string{"surprise"},
	}, mm); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, err.Error(), "a.dat")
	assert.Contains(t, err.Error(), "surprise")
}

func TestDeclaredHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range Declared() {
		assert.False(t, seen[n], "duplicate column %q", n)
		seen[n] = true
	}
	assert.Len(t, Declared(), len(RunFields)+len(YearFields))
}

func TestExtractRenamesAndCoerces(t *testing.T) {
	row := map[string]string{
		StepMarker:           "32",
		record.FieldRainfall: "410.5",
	}
	fields := []Field{{StepMarker, Integer}, {record.FieldRainfall, Number}}

	got, err := Extract(row, fields)
	require.NoError(t, err)
	want := record.Values{
		{Name: record.FieldStep, Value: record.Int(32)},
		{Name: record.FieldRainfall, Value: record.Float(410.5)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("extract (-want +got):\n%s", diff)
	}
}

func TestExtractRejectsWrongKind(t *testing.T) {
	_, err := Extract(map[string]string{StepMarker: "soon"}, []Field{{StepMarker, Integer}})
	assert.ErrorContains(t, err, "is not integer")

	_, err = Extract(map[string]string{}, []Field{{StepMarker, Integer}})
	assert.ErrorContains(t, err, "absent")
}

func TestOutputColumns(t *testing.T) {
	run := RunOutputColumns()
	assert.Equal(t, []string{record.FieldRunID, record.FieldRunNumber, "model-mode"}, run[:3])
	assert.Equal(t, record.FieldRunTimestamp, run[len(run)-1])
	assert.NotContains(t, run, RunNumberMarker)

	year := YearOutputColumns()
	assert.Equal(t, record.FieldStep, year[0])
	assert.Len(t, year, len(YearFields))
}
