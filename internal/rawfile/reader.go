package rawfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region layout
// Header lines preceding the CSV body of a raw source.
const (
	lineExportHeader = iota
	lineModelFile
	lineRunGroup
	lineTimestamp
	lineExtentHeader
	lineExtentData
	headerLines
)
// #endregion layout

// #region reader
// Reader streams the CSV body of one raw simulator export.
type Reader struct {
	Path       string
	Provenance record.Provenance

	f       *os.File
	csv     *csv.Reader
	columns []string
}

// Open reads the fixed header block and the CSV header row of path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw file: %w", err)
	}
	r, err := newReader(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.f = f
	return r, nil
}

func newReader(path string, src io.Reader) (*Reader, error) {
	br := bufio.NewReader(src)
	var header [headerLines]string
	for i := range header {
		line, err := br.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return nil, fmt.Errorf("read header line %d of %s: %w", i+1, path, err)
		}
		header[i] = strings.TrimSpace(line)
	}

	cr := csv.NewReader(br)
	cols, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read column header of %s: %w", path, err)
	}

	return &Reader{
		Path: path,
		Provenance: record.Provenance{
			ModelFile:         record.Coerce(header[lineModelFile]),
			SourceFile:        record.Coerce(path),
			BehaviorspaceName: record.Coerce(header[lineRunGroup]),
			RunTimestamp:      record.Coerce(header[lineTimestamp]),
		},
		csv:     cr,
		columns: cols,
	}, nil
}

// Columns returns the CSV body's column names in file order.
func (r *Reader) Columns() []string {
	return r.columns
}

// Next returns the following body row keyed by column name, or io.EOF.
func (r *Reader) Next() (map[string]string, error) {
	cells, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Path, err)
	}
	row := make(map[string]string, len(cells))
	for i, c := range cells {
		row[r.columns[i]] = c
	}
	return row, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}
// #endregion reader
