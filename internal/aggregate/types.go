package aggregate

import (
	"fmt"
	"sort"

	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region run
// Run pairs a run's static record with its years, keyed by calendar year.
type Run struct {
	Record record.RunRecord
	Years  map[int64]record.YearRecord
}

// SortedYears returns the run's calendar years in ascending order.
func (r Run) SortedYears() []int64 {
	years := make([]int64, 0, len(r.Years))
	for y := range r.Years {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	return years
}
// #endregion run

// #region batch
// Batch is the aggregated content of one or more raw sources.
type Batch struct {
	Runs map[string]Run
	Rows int
}

// NewBatch returns an empty batch.
func NewBatch() Batch {
	return Batch{Runs: make(map[string]Run)}
}

// SortedIDs returns the run identities in ascending order.
func (b Batch) SortedIDs() []string {
	ids := make([]string, 0, len(b.Runs))
	for id := range b.Runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
// #endregion batch

// #region merge-policy
// MergePolicy decides what is kept when a run identity arrives from a second
// raw source.
type MergePolicy func(id string, existing, incoming Run) (Run, error)

// LastWriteWins keeps the later source's run entirely.
func LastWriteWins(_ string, _, incoming Run) (Run, error) {
	return incoming, nil
}

// RunCollisionError reports a run identity present in more than one source.
type RunCollisionError struct {
	RunID  string
	First  string
	Second string
}

func (e *RunCollisionError) Error() string {
	return fmt.Sprintf("run %s appears in both %s and %s", e.RunID, e.First, e.Second)
}

// RejectOnCollision fails on any run identity seen twice.
func RejectOnCollision(id string, existing, incoming Run) (Run, error) {
	return Run{}, &RunCollisionError{
		RunID:  id,
		First:  existing.Record.Provenance.SourceFile.Text(),
		Second: incoming.Record.Provenance.SourceFile.Text(),
	}
}

// PolicyByName resolves a merge policy from its configuration name.
func PolicyByName(name string) (MergePolicy, error) {
	switch name {
	case "", "last-write-wins":
		return LastWriteWins, nil
	case "reject":
		return RejectOnCollision, nil
	}
	return nil, fmt.Errorf("unknown merge policy %q", name)
}
// #endregion merge-policy
