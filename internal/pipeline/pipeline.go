package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/runsummary/internal/aggregate"
	"github.com/danielpatrickdp/runsummary/internal/config"
	"github.com/danielpatrickdp/runsummary/internal/intermediate"
	"github.com/danielpatrickdp/runsummary/internal/ledger"
	"github.com/danielpatrickdp/runsummary/internal/metrics"
	"github.com/danielpatrickdp/runsummary/internal/selftest"
	"github.com/danielpatrickdp/runsummary/internal/summary"
	"github.com/danielpatrickdp/runsummary/internal/threshold"
)

// #region pipeline
// Pipeline runs the raw-to-intermediate and intermediate-to-final stages.
type Pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Batch
	ledger  *ledger.Store
	now     func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLedger records the invocation and its summaries in store.
func WithLedger(store *ledger.Store) Option {
	return func(p *Pipeline) { p.ledger = store }
}

// WithClock overrides the time source used for default filenames and stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewBatch(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Metrics exposes the batch counters of this pipeline.
func (p *Pipeline) Metrics() *metrics.Batch {
	return p.metrics
}
// #endregion pipeline

// #region run
// Run executes the configured stages. Any error aborts the whole invocation.
func (p *Pipeline) Run() (Result, error) {
	cfg := p.cfg
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := cfg.Resolve(p.now()); err != nil {
		return Result{}, err
	}
	policy, err := aggregate.PolicyByName(cfg.MergePolicy)
	if err != nil {
		return Result{}, err
	}
	templates, err := intermediate.ParseTemplates(cfg.PerRunTemplate, cfg.PerYearTemplate)
	if err != nil {
		return Result{}, err
	}

	th, err := p.thresholds()
	if err != nil {
		return Result{}, err
	}
	p.metrics.Thresholds(th)

	stage, err := p.stage()
	if err != nil {
		return Result{}, err
	}
	res := Result{Stage: stage, Thresholds: th}

	if stage == config.StageIntToFinal || stage == config.StageAll {
		if err := p.checkConflicts([]string{cfg.OutputFile}); err != nil {
			return Result{}, err
		}
	}

	store := intermediate.NewStore(cfg.IntermediateDir, templates, p.logger)
	var batch *aggregate.Batch

	if stage == config.StageRawToInt || stage == config.StageAll {
		b, files, err := p.rawToIntermediate(store, policy)
		if err != nil {
			return Result{}, err
		}
		batch = &b
		res.RawFiles = files
		res.Runs = len(b.Runs)
	}

	if stage == config.StageIntToFinal || stage == config.StageAll {
		if batch == nil {
			b, err := store.Load()
			if err != nil {
				return Result{}, err
			}
			batch = &b
			res.Runs = len(b.Runs)
		}
		res.Summaries = p.summarize(*batch, th)
		if err := p.writeFinal(res.Summaries); err != nil {
			return Result{}, err
		}
	}

	if p.ledger != nil {
		id, err := p.record(res)
		if err != nil {
			return Result{}, err
		}
		res.InvocationID = id
	}

	p.metrics.Succeeded(p.now())
	if cfg.MetricsFile != "" {
		if err := p.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}
// #endregion run

// #region thresholds
func (p *Pipeline) thresholds() (threshold.Thresholds, error) {
	in := p.cfg.Thresholds
	seed := rand.Uint64()
	if p.cfg.Seed != nil {
		seed = *p.cfg.Seed
	}
	th, err := threshold.Make(in, seed)
	if err != nil {
		return threshold.Thresholds{}, err
	}
	if in.Perturbed() {
		p.logger.Info("perturbed thresholds",
			zap.Int("min_cows_threshold", th.MinCows),
			zap.Float64("min_harvest_threshold", th.MinHarvest),
			zap.Float64("min_woodland_threshold", th.MinWoodland),
			zap.Uint64("seed", th.Seed))
	}
	return th, nil
}
// #endregion thresholds

// #region stage
// stage resolves autodetect: without intermediate CSVs every stage runs,
// otherwise only the final one.
func (p *Pipeline) stage() (string, error) {
	if p.cfg.Stage != config.StageAutodetect {
		return p.cfg.Stage, nil
	}
	dir := p.cfg.IntermediateDir
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Info("intermediate dir does not exist, running all stages", zap.String("dir", dir))
		return config.StageAll, nil
	}
	if err != nil {
		return "", fmt.Errorf("detect stage: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			p.logger.Info("intermediate data found, only running int-to-final stage", zap.String("dir", dir))
			return config.StageIntToFinal, nil
		}
	}
	p.logger.Info("no CSVs in intermediate dir, running all stages", zap.String("dir", dir))
	return config.StageAll, nil
}
// #endregion stage

// #region conflicts
func (p *Pipeline) checkConflicts(paths []string) error {
	if p.cfg.Overwrite {
		return nil
	}
	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	if len(existing) > 0 {
		return &OutputConflictError{Paths: existing}
	}
	return nil
}
// #endregion conflicts

// #region raw-to-intermediate
func (p *Pipeline) rawToIntermediate(store *intermediate.Store, policy aggregate.MergePolicy) (aggregate.Batch, int, error) {
	if err := selftest.Check(p.cfg.ClusterDir, p.cfg.IgnoreTestFailure, p.logger); err != nil {
		return aggregate.Batch{}, 0, err
	}
	files, err := selftest.RawFiles(p.cfg.ClusterDir, p.logger)
	if err != nil {
		return aggregate.Batch{}, 0, err
	}

	p.logger.Info("making intermediate files", zap.Int("raw_files", len(files)))
	agg := aggregate.New(policy, p.logger)
	for _, f := range files {
		b, err := agg.AddFile(f)
		if err != nil {
			return aggregate.Batch{}, 0, err
		}
		p.metrics.RawFile(b.Rows)
	}
	batch := agg.Batch()

	entries, err := store.Plan(batch)
	if err != nil {
		return aggregate.Batch{}, 0, err
	}
	if err := p.checkConflicts(store.Targets(entries)); err != nil {
		return aggregate.Batch{}, 0, err
	}
	if err := store.WriteRuns(batch, entries); err != nil {
		return aggregate.Batch{}, 0, err
	}
	if err := store.WriteIndex(entries); err != nil {
		return aggregate.Batch{}, 0, err
	}
	return batch, len(files), nil
}
// #endregion raw-to-intermediate

// #region summarize
func (p *Pipeline) summarize(b aggregate.Batch, th threshold.Thresholds) []summary.Record {
	ids := b.SortedIDs()
	out := make([]summary.Record, 0, len(ids))
	for _, id := range ids {
		run := b.Runs[id]
		rec := summary.Summarize(run.Record, run.Years, th)
		p.metrics.Summarized(string(rec.TerminationReason))
		out = append(out, rec)
	}
	return out
}

func (p *Pipeline) writeFinal(records []summary.Record) error {
	path := p.cfg.OutputFile
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	p.logger.Info("writing summary output", zap.String("path", path), zap.Int("runs", len(records)))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := summary.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
// #endregion summarize

// #region ledger
func (p *Pipeline) record(res Result) (string, error) {
	inputs, err := json.Marshal(res.Thresholds.Inputs)
	if err != nil {
		return "", fmt.Errorf("marshal threshold inputs: %w", err)
	}
	var output string
	if res.Stage != config.StageRawToInt {
		output = p.cfg.OutputFile
	}
	inv, err := p.ledger.Begin(ledger.Invocation{
		Stage:                res.Stage,
		Seed:                 res.Thresholds.Seed,
		MinCowsThreshold:     res.Thresholds.MinCows,
		MinHarvestThreshold:  res.Thresholds.MinHarvest,
		MinWoodlandThreshold: res.Thresholds.MinWoodland,
		InputsJSON:           string(inputs),
		OutputFile:           output,
		CreatedAt:            p.now().UTC(),
	})
	if err != nil {
		return "", err
	}

	cols := summary.Columns()
	rows := make([]ledger.RunSummary, 0, len(res.Summaries))
	for _, rec := range res.Summaries {
		cells := rec.Row()
		m := make(map[string]string, len(cols))
		for i, c := range cols {
			m[c] = cells[i]
		}
		rowJSON, err := json.Marshal(m)
		if err != nil {
			return "", fmt.Errorf("marshal summary %s: %w", rec.RunID, err)
		}
		rows = append(rows, ledger.RunSummary{
			RunID:             rec.RunID,
			TerminationReason: string(rec.TerminationReason),
			EndYear:           rec.EndYear,
			RowJSON:           string(rowJSON),
		})
	}
	if err := p.ledger.Finish(inv.InvocationID, rows); err != nil {
		return "", err
	}
	p.logger.Info("invocation recorded",
		zap.String("invocation_id", inv.InvocationID),
		zap.Int("runs", len(rows)))
	return inv.InvocationID, nil
}
// #endregion ledger
