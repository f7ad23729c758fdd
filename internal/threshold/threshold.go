package threshold

import (
	"math/rand/v2"
	"strings"
)

// #region inputs
// Inputs are the base minimums and perturbation windows for one invocation.
// Perturbations of harvest and woodland are percentages of their minimums.
type Inputs struct {
	MinCows            int     `yaml:"min_cows"`
	MinHarvest         float64 `yaml:"min_harvest"`
	MinWoodland        float64 `yaml:"min_woodland"`
	PerturbCows        int     `yaml:"perturb_cows" validate:"gte=0"`
	PerturbHarvestPct  float64 `yaml:"perturb_harvest" validate:"gte=0"`
	PerturbWoodlandPct float64 `yaml:"perturb_woodland" validate:"gte=0"`
}

// DefaultInputs returns the unperturbed defaults.
func DefaultInputs() Inputs {
	return Inputs{MinCows: 1}
}

// Perturbed reports whether any perturbation window is non-zero.
func (in Inputs) Perturbed() bool {
	return in.PerturbCows != 0 || in.PerturbHarvestPct != 0 || in.PerturbWoodlandPct != 0
}
// #endregion inputs

// #region thresholds
// Thresholds are the collapse floors shared by every run of an invocation.
type Thresholds struct {
	MinCows     int
	MinHarvest  float64
	MinWoodland float64

	Inputs Inputs
	Seed   uint64
}
// #endregion thresholds

// #region configuration-error
// ConfigurationError lists every perturbation rule that could yield a
// negative threshold.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "threshold configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the perturbation windows without drawing anything.
func (in Inputs) Validate() error {
	var problems []string
	if in.PerturbCows < 0 {
		problems = append(problems, "cow perturbation must not be negative")
	}
	if in.MinCows-in.PerturbCows < 0 {
		problems = append(problems, "min cow threshold could be negative")
	}
	if in.PerturbHarvestPct > 100 {
		problems = append(problems, "min harvest threshold could be negative")
	}
	if in.PerturbWoodlandPct > 100 {
		problems = append(problems, "min woodland threshold could be negative")
	}
	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}
// #endregion configuration-error

// #region make
// NewRand returns the generator Make expects for a given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Make draws the three thresholds. Every threshold is offset by MinCows,
// including harvest and woodland; downstream tables depend on that offset.
func Make(in Inputs, seed uint64) (Thresholds, error) {
	if err := in.Validate(); err != nil {
		return Thresholds{}, err
	}
	rng := NewRand(seed)

	cowsLo := in.MinCows - in.PerturbCows
	cowsHi := in.MinCows + in.PerturbCows
	cows := in.MinCows + cowsLo + rng.IntN(cowsHi-cowsLo+1)

	harvest := float64(in.MinCows) + uniform(rng,
		in.MinHarvest*(1-in.PerturbHarvestPct/100),
		in.MinHarvest*(1+in.PerturbHarvestPct/100))
	woodland := float64(in.MinCows) + uniform(rng,
		in.MinWoodland*(1-in.PerturbWoodlandPct/100),
		in.MinWoodland*(1+in.PerturbWoodlandPct/100))

	return Thresholds{
		MinCows:     cows,
		MinHarvest:  harvest,
		MinWoodland: woodland,
		Inputs:      in,
		Seed:        seed,
	}, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
// #endregion make
