package pipeline

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/runsummary/internal/summary"
	"github.com/danielpatrickdp/runsummary/internal/threshold"
)

// #region output-conflict
// OutputConflictError lists outputs that already exist while overwriting is off.
type OutputConflictError struct {
	Paths []string
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("outputs already exist (use --overwrite to overwrite): %s",
		strings.Join(e.Paths, ", "))
}
// #endregion output-conflict

// #region result
// Result describes a completed invocation.
type Result struct {
	Stage        string
	Thresholds   threshold.Thresholds
	RawFiles     int
	Runs         int
	Summaries    []summary.Record
	InvocationID string
}
// #endregion result
