package intermediate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/runsummary/internal/aggregate"
	"github.com/danielpatrickdp/runsummary/internal/record"
	"github.com/danielpatrickdp/runsummary/internal/schema"
)

// #region entry
// Entry is one INDEX row.
type Entry struct {
	RunID       string
	PerRunFile  string
	PerYearFile string
}

var indexHeader = []string{record.FieldRunID, "PerRunDataFile", "PerYearDataFile"}
// #endregion entry

// #region store
// Store reads and writes the intermediate files of one directory.
type Store struct {
	Dir       string
	templates Templates
	logger    *zap.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, templates Templates, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Dir: dir, templates: templates, logger: logger}
}

// Plan names the files each run of b will be written to, in run order.
func (s *Store) Plan(b aggregate.Batch) ([]Entry, error) {
	entries := make([]Entry, 0, len(b.Runs))
	for _, id := range b.SortedIDs() {
		perRun, perYear, err := s.templates.Names(b.Runs[id].Record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{RunID: id, PerRunFile: perRun, PerYearFile: perYear})
	}
	return entries, nil
}

// Targets lists every path Plan's entries and the index would occupy.
func (s *Store) Targets(entries []Entry) []string {
	paths := make([]string, 0, 2*len(entries)+1)
	for _, e := range entries {
		paths = append(paths, resolve(s.Dir, e.PerRunFile), resolve(s.Dir, e.PerYearFile))
	}
	return append(paths, filepath.Join(s.Dir, IndexFile))
}

// WriteRuns writes the per-run and per-year files for the planned entries.
func (s *Store) WriteRuns(b aggregate.Batch, entries []Entry) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create intermediate dir: %w", err)
	}
	s.logger.Info("writing intermediate files", zap.Int("runs", len(entries)))
	for _, e := range entries {
		run, ok := b.Runs[e.RunID]
		if !ok {
			return fmt.Errorf("write intermediate: run %s not in batch", e.RunID)
		}
		if err := writeCSV(resolve(s.Dir, e.PerRunFile), schema.RunOutputColumns(), [][]string{runRow(run.Record)}); err != nil {
			return err
		}
		if err := writeCSV(resolve(s.Dir, e.PerYearFile), schema.YearOutputColumns(), yearRows(run)); err != nil {
			return err
		}
	}
	return nil
}

// WriteIndex writes INDEX for entries.
func (s *Store) WriteIndex(entries []Entry) error {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.RunID, e.PerRunFile, e.PerYearFile}
	}
	return writeCSV(filepath.Join(s.Dir, IndexFile), indexHeader, rows)
}
// #endregion store

// #region rows
func runRow(r record.RunRecord) []string {
	vals := record.Values{
		{Name: record.FieldRunID, Value: record.String(r.ID)},
		{Name: record.FieldRunNumber, Value: record.Int(r.RunNumber)},
	}
	vals = append(vals, r.Params...)
	vals = append(vals, r.Provenance.Values()...)

	cols := schema.RunOutputColumns()
	row := make([]string, len(cols))
	for i, c := range cols {
		v, _ := vals.Get(c)
		row[i] = v.Text()
	}
	return row
}

func yearRows(run aggregate.Run) [][]string {
	cols := schema.YearOutputColumns()
	rows := make([][]string, 0, len(run.Years))
	for _, y := range run.SortedYears() {
		yr := run.Years[y]
		row := make([]string, len(cols))
		for i, c := range cols {
			v, _ := yr.Field(c)
			row[i] = v.Text()
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
// #endregion rows

// #region load
// ReadIndex parses INDEX.
func (s *Store) ReadIndex() ([]Entry, error) {
	path := filepath.Join(s.Dir, IndexFile)
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(path, indexHeader, header); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		e := Entry{
			RunID:       row[indexHeader[0]],
			PerRunFile:  row[indexHeader[1]],
			PerYearFile: row[indexHeader[2]],
		}
		if e.RunID == "" || e.PerRunFile == "" || e.PerYearFile == "" {
			return nil, fmt.Errorf("index row %d: incomplete entry", i+1)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Load rehydrates every run listed in INDEX. Cells are coerced again, so
// numeric fields regain their kinds.
func (s *Store) Load() (aggregate.Batch, error) {
	entries, err := s.ReadIndex()
	if err != nil {
		return aggregate.Batch{}, err
	}
	b := aggregate.NewBatch()
	for _, e := range entries {
		run, err := s.loadRun(e)
		if err != nil {
			return aggregate.Batch{}, err
		}
		b.Runs[e.RunID] = run
		b.Rows += len(run.Years)
	}
	s.logger.Info("intermediate data loaded", zap.Int("runs", len(b.Runs)))
	return b, nil
}

func (s *Store) loadRun(e Entry) (aggregate.Run, error) {
	runPath := resolve(s.Dir, e.PerRunFile)
	header, perRun, err := readCSV(runPath)
	if err != nil {
		return aggregate.Run{}, err
	}
	if err := schema.Validate(runPath, schema.RunOutputColumns(), header); err != nil {
		return aggregate.Run{}, err
	}
	if len(perRun) != 1 {
		return aggregate.Run{}, fmt.Errorf("%s: expected one data row, found %d", e.PerRunFile, len(perRun))
	}
	row := perRun[0]

	runNumber, ok := record.Coerce(row[record.FieldRunNumber]).AsInt()
	if !ok {
		return aggregate.Run{}, fmt.Errorf("%s: run number %q is not an integer", e.PerRunFile, row[record.FieldRunNumber])
	}
	params := make(record.Values, 0, len(schema.ParamFields()))
	for _, f := range schema.ParamFields() {
		params = append(params, record.NamedValue{Name: f.Name, Value: record.Coerce(row[f.Name])})
	}
	run := aggregate.Run{
		Record: record.RunRecord{
			ID:        e.RunID,
			RunNumber: runNumber,
			Params:    params,
			Provenance: record.Provenance{
				ModelFile:         record.Coerce(row[record.FieldModelFile]),
				SourceFile:        record.Coerce(row[record.FieldSourceFile]),
				BehaviorspaceName: record.Coerce(row[record.FieldBehaviorspaceName]),
				RunTimestamp:      record.Coerce(row[record.FieldRunTimestamp]),
			},
		},
		Years: make(map[int64]record.YearRecord),
	}

	yearPath := resolve(s.Dir, e.PerYearFile)
	cols := schema.YearOutputColumns()
	header, perYear, err := readCSV(yearPath)
	if err != nil {
		return aggregate.Run{}, err
	}
	if err := schema.Validate(yearPath, cols, header); err != nil {
		return aggregate.Run{}, err
	}
	for i, row := range perYear {
		vals := make(record.Values, 0, len(cols))
		for _, c := range cols {
			vals = append(vals, record.NamedValue{Name: c, Value: record.Coerce(row[c])})
		}
		yr, err := record.YearFromValues(vals)
		if err != nil {
			return aggregate.Run{}, fmt.Errorf("%s row %d: %w", e.PerYearFile, i+1, err)
		}
		run.Years[yr.CalendarYear] = yr
	}
	return run, nil
}

// readCSV reads a headed CSV file into rows keyed by column name.
func readCSV(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	var rows []map[string]string
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, c := range cells {
			row[header[i]] = c
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
// #endregion load
