package ledger

import "time"

// #region invocation
// Invocation is one recorded execution of the summarizer.
type Invocation struct {
	InvocationID string
	Stage        string
	Seed         uint64

	MinCowsThreshold     int
	MinHarvestThreshold  float64
	MinWoodlandThreshold float64

	InputsJSON string
	OutputFile string
	RunCount   int
	CreatedAt  time.Time
}
// #endregion invocation

// #region run-summary
// RunSummary is one summarized run, keyed by invocation.
type RunSummary struct {
	InvocationID      string
	RunID             string
	TerminationReason string
	EndYear           *int64
	RowJSON           string
	CreatedAt         time.Time
}
// #endregion run-summary

// #region reason-count
// ReasonCount aggregates summaries of one invocation by termination reason.
type ReasonCount struct {
	Reason string
	Runs   int
}
// #endregion reason-count
