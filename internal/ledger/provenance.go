package ledger

import (
	"database/sql"
	"fmt"
	"time"
)

// #region insert-summary
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertSummary(ex execer, rs RunSummary) error {
	if rs.CreatedAt.IsZero() {
		rs.CreatedAt = time.Now().UTC()
	}

	var endYear interface{}
	if rs.EndYear != nil {
		endYear = *rs.EndYear
	}

	_, err := ex.Exec(
		`INSERT INTO run_summaries (invocation_id, run_id, termination_reason, end_year, row_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rs.InvocationID,
		rs.RunID,
		rs.TerminationReason,
		endYear,
		rs.RowJSON,
		rs.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log summary %s: %w", rs.RunID, err)
	}
	return nil
}
// #endregion insert-summary
