package selftest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/runsummary/internal/rawfile"
	"github.com/danielpatrickdp/runsummary/internal/record"
)

// #region constants
const (
	// LogFile is the simulator's software self-test export.
	LogFile = "RunSoftwareTests.dat"
	// RawExt marks raw simulator exports in the cluster directory.
	RawExt = ".dat"

	minTestsRun = 10
)
// #endregion constants

// #region failure-error
// FailureError reports a self-test log showing too few tests or any errors.
type FailureError struct {
	TestsRun   int64
	ErrorCount int64
}

func (e *FailureError) Error() string {
	if e.ErrorCount > 0 {
		return fmt.Sprintf("%s: %d errors in %d tests", LogFile, e.ErrorCount, e.TestsRun)
	}
	return fmt.Sprintf("%s: only %d tests run", LogFile, e.TestsRun)
}
// #endregion failure-error

// #region check
// Check reads the self-test log in clusterDir. A missing log is logged and
// skipped. Failures are returned unless ignoreFailure is set, in which case
// they are only logged.
func Check(clusterDir string, ignoreFailure bool, logger *zap.Logger) error {
	path := filepath.Join(clusterDir, LogFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warn("self-test log does not exist, skipping check", zap.String("path", path))
		return nil
	}

	r, err := rawfile.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	row, err := r.Next()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: no result row", path)
	}
	if err != nil {
		return err
	}

	testsRun, ok := record.Coerce(row["number-of-tests-run"]).AsInt()
	if !ok {
		return fmt.Errorf("%s: number-of-tests-run %q is not an integer", path, row["number-of-tests-run"])
	}
	errorCount, ok := record.Coerce(row["error-count"]).AsInt()
	if !ok {
		return fmt.Errorf("%s: error-count %q is not an integer", path, row["error-count"])
	}

	if testsRun < minTestsRun || errorCount > 0 {
		ferr := &FailureError{TestsRun: testsRun, ErrorCount: errorCount}
		if !ignoreFailure {
			return ferr
		}
		logger.Warn("ignoring self-test failure", zap.Error(ferr))
		return nil
	}
	logger.Info("software tests passed",
		zap.String("path", path),
		zap.Int64("tests_run", testsRun))
	return nil
}
// #endregion check

// #region discover
// RawFiles lists the raw exports of clusterDir in lexical order, excluding
// the self-test log, and logs their count and total size.
func RawFiles(clusterDir string, logger *zap.Logger) ([]string, error) {
	entries, err := os.ReadDir(clusterDir)
	if err != nil {
		return nil, fmt.Errorf("list cluster dir: %w", err)
	}

	var files []string
	var total uint64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, RawExt) || name == LogFile {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		total += uint64(info.Size())
		files = append(files, filepath.Join(clusterDir, name))
	}
	sort.Strings(files)

	logger.Info("raw data files found",
		zap.Int("files", len(files)),
		zap.String("total_size", humanize.Bytes(total)))
	return files, nil
}
// #endregion discover
