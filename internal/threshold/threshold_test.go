package threshold

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWithoutPerturbation(t *testing.T) {
	in := Inputs{MinCows: 1, MinHarvest: 0.5, MinWoodland: 10}
	th, err := Make(in, 7)
	require.NoError(t, err)

	// Every threshold carries the MinCows offset.
	assert.Equal(t, 2, th.MinCows)
	assert.InDelta(t, 1.5, th.MinHarvest, 1e-12)
	assert.InDelta(t, 11.0, th.MinWoodland, 1e-12)
	assert.Equal(t, uint64(7), th.Seed)
	assert.Equal(t, in, th.Inputs)
	assert.False(t, in.Perturbed())
}

func TestMakeIsDeterministicPerSeed(t *testing.T) {
	in := Inputs{MinCows: 10, MinHarvest: 100, MinWoodland: 50, PerturbCows: 3, PerturbHarvestPct: 20, PerturbWoodlandPct: 50}
	a, err := Make(in, 42)
	require.NoError(t, err)
	b, err := Make(in, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, in.Perturbed())
}

func TestMakeStaysInsideWindows(t *testing.T) {
	in := Inputs{MinCows: 10, MinHarvest: 100, MinWoodland: 50, PerturbCows: 3, PerturbHarvestPct: 20, PerturbWoodlandPct: 50}
	for seed := uint64(0); seed < 200; seed++ {
		th, err := Make(in, seed)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, th.MinCows, 10+7)
		assert.LessOrEqual(t, th.MinCows, 10+13)
		assert.GreaterOrEqual(t, th.MinHarvest, 10+80.0)
		assert.LessOrEqual(t, th.MinHarvest, 10+120.0)
		assert.GreaterOrEqual(t, th.MinWoodland, 10+25.0)
		assert.LessOrEqual(t, th.MinWoodland, 10+75.0)
	}
}

func TestValidateRejectsNegativeWindows(t *testing.T) {
	cases := []struct {
		name string
		in   Inputs
	}{
		{"cows", Inputs{MinCows: 1, PerturbCows: 2}},
		{"negative cow perturbation", Inputs{MinCows: 1, PerturbCows: -1}},
		{"harvest", Inputs{MinCows: 1, PerturbHarvestPct: 101}},
		{"woodland", Inputs{MinCows: 1, PerturbWoodlandPct: 150}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Make(tc.in, 1)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Len(t, cfgErr.Problems, 1)
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	err := Inputs{PerturbCows: 1, PerturbHarvestPct: 200, PerturbWoodlandPct: 200}.Validate()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Problems, 3)
}

func TestBoundaryPercentagesAllowed(t *testing.T) {
	th, err := Make(Inputs{MinCows: 0, MinHarvest: 10, PerturbHarvestPct: 100}, 3)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, th.MinHarvest, 0.0)
	assert.Equal(t, 0, th.MinCows)
}
