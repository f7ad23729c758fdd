package summary

import (
	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region reason
// Reason names why the traversal of a run stopped.
type Reason string

const (
	ReasonEndOfSimulation   Reason = "end of simulation"
	ReasonCowThreshold      Reason = "cow threshold"
	ReasonHarvestThreshold  Reason = "harvest threshold"
	ReasonWoodlandThreshold Reason = "woodland threshold"
)
// #endregion reason

// #region unit-conversions
const (
	kgPerMetricTon = 1000.0
	// One tick is 8 hours (3 ticks/day), i.e. 16 half-hours.
	halfHoursPerTick = 16.0
)
// #endregion unit-conversions

// #region record
// Record is the one-row summary of a run. Nil pointers are absent values.
type Record struct {
	RunID  string
	Params record.Values

	MinCowsThreshold     int
	MinHarvestThreshold  float64
	MinWoodlandThreshold float64
	Seed                 uint64

	YearsProcessed int

	MinCowCount  *int64
	MeanCowCount *float64
	MaxCowCount  *int64

	MinHarvest   *float64
	MeanHarvest  *float64
	MaxHarvest   *float64
	TotalHarvest float64

	MinWoodland  *float64
	MeanWoodland *float64
	MaxWoodland  *float64

	MaxPercentCropEaten        float64
	ActualCowReproRate         *float64
	CropEatenPerHalfHourPerCow *float64

	FinalYearTimer *float64
	SubsidyUsed    *float64
	EndYear        *int64

	TerminationReason Reason
}
// #endregion record
