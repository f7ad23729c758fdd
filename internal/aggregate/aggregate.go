package aggregate

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/rawfile"
	"github.com/danielpatrickdp/runsummary/internal/schema"
)

// #region row-source
// RowSource yields the CSV body rows of one raw source.
type RowSource interface {
	Columns() []string
	Next() (map[string]string, error)
}
// #endregion row-source

// #region aggregator
// Aggregator folds raw sources into runs and merges them under a policy.
type Aggregator struct {
	merge  MergePolicy
	logger *zap.Logger
	batch  Batch
}

// New creates an aggregator. A nil policy means LastWriteWins.
func New(merge MergePolicy, logger *zap.Logger) *Aggregator {
	if merge == nil {
		merge = LastWriteWins
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{merge: merge, logger: logger, batch: NewBatch()}
}

// AddFile reads one raw file, folds it and merges it into the running batch.
// The per-source batch is returned for intermediate persistence.
func (a *Aggregator) AddFile(path string) (Batch, error) {
	r, err := rawfile.Open(path)
	if err != nil {
		return Batch{}, err
	}
	defer r.Close()

	b, err := Fold(path, r.Provenance, r)
	if err != nil {
		return Batch{}, err
	}
	a.logger.Debug("raw source folded",
		zap.String("file", path),
		zap.Int("rows", b.Rows),
		zap.Int("runs", len(b.Runs)))

	if err := a.Merge(b); err != nil {
		return Batch{}, err
	}
	return b, nil
}

// Merge applies the merge policy for every run of b.
func (a *Aggregator) Merge(b Batch) error {
	for _, id := range b.SortedIDs() {
		incoming := b.Runs[id]
		existing, ok := a.batch.Runs[id]
		if !ok {
			a.batch.Runs[id] = incoming
			continue
		}
		merged, err := a.merge(id, existing, incoming)
		if err != nil {
			return fmt.Errorf("merge run %s: %w", id, err)
		}
		a.logger.Debug("run identity collision", zap.String("run_id", id))
		a.batch.Runs[id] = merged
	}
	a.batch.Rows += b.Rows
	return nil
}

// Batch returns everything merged so far.
func (a *Aggregator) Batch() Batch {
	return a.batch
}
// #endregion aggregator

// #region fold
// Fold turns the rows of one raw source into runs. The column header is
// validated against the declared schema before any row is read.
func Fold(source string, prov record.Provenance, rows RowSource) (Batch, error) {
	if err := schema.Validate(source, schema.Declared(), rows.Columns()); err != nil {
		return Batch{}, err
	}

	group := prov.BehaviorspaceName.Text()
	b := NewBatch()
	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Batch{}, err
		}
		b.Rows++

		runNumber, ok := record.Coerce(row[schema.RunNumberMarker]).AsInt()
		if !ok {
			return Batch{}, fmt.Errorf("%s row %d: run number %q is not an integer",
				source, b.Rows, row[schema.RunNumberMarker])
		}
		id := record.RunID(group, runNumber)

		run, seen := b.Runs[id]
		if !seen {
			params, err := schema.Extract(row, schema.ParamFields())
			if err != nil {
				return Batch{}, fmt.Errorf("%s row %d: %w", source, b.Rows, err)
			}
			run = Run{
				Record: record.RunRecord{
					ID:         id,
					RunNumber:  runNumber,
					Params:     params,
					Provenance: prov,
				},
				Years: make(map[int64]record.YearRecord),
			}
		}

		values, err := schema.Extract(row, schema.YearFields)
		if err != nil {
			return Batch{}, fmt.Errorf("%s row %d: %w", source, b.Rows, err)
		}
		year, err := record.YearFromValues(values)
		if err != nil {
			return Batch{}, fmt.Errorf("%s row %d: %w", source, b.Rows, err)
		}
		run.Years[year.CalendarYear] = year
		b.Runs[id] = run
	}
	return b, nil
}
// #endregion fold
