package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/runsummary/internal/config"
	"github.com/danielpatrickdp/runsummary/internal/ledger"
	"github.com/danielpatrickdp/runsummary/internal/pipeline"
)

// #region run-cmd
func newRunCmd() *cobra.Command {
	var configPath, savePath string
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process raw cluster output and write the summary table",
		Long: `(1) Process raw files from the cluster into intermediate data files.
(2) Summarize intermediate data files and write the summary CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			if savePath != "" {
				if err := cfg.Save(savePath); err != nil {
					return err
				}
				logger.Info("configuration saved", zap.String("path", savePath))
				return nil
			}
			return runPipeline(cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "runsummary.yaml", "YAML file with default options")
	f.StringVar(&savePath, "save-config", "", "write the merged options to this YAML file and exit")
	f.String("stage", defaults.Stage, "which stages to run: autodetect, raw-to-int, int-to-final, all")
	f.String("cluster-dir", defaults.ClusterDir, "directory holding raw cluster output files")
	f.String("intermediate-dir", "", "directory for intermediate files (default CLUSTER_DIR/../intermediate)")
	f.String("output-file", "", "final summary CSV (default CLUSTER_DIR/../YYYY-MM-DD_SummarizedData.csv)")
	f.Int("min-cows", defaults.Thresholds.MinCows, "minimum number of cows required in any year")
	f.Float64("min-harvest", defaults.Thresholds.MinHarvest, "minimum harvest (metric tons) required in any year")
	f.Float64("min-woodland", defaults.Thresholds.MinWoodland, "minimum woodland required in any year")
	f.Int("perturb-cows", defaults.Thresholds.PerturbCows, "how much (in cows) to perturb the minimum cow threshold")
	f.Float64("perturb-harvest", defaults.Thresholds.PerturbHarvestPct, "how much (in %) to perturb the minimum harvest threshold")
	f.Float64("perturb-woodland", defaults.Thresholds.PerturbWoodlandPct, "how much (in %) to perturb the minimum woodland threshold")
	f.Uint64("seed", 0, "seed for threshold perturbation (default: drawn and recorded)")
	f.String("per-run-interm-template", defaults.PerRunTemplate, "filename template for per-run intermediate files")
	f.String("per-year-interm-template", defaults.PerYearTemplate, "filename template for per-year intermediate files")
	f.Bool("overwrite", false, "overwrite existing output files")
	f.Bool("ignore-test-failure", false, "continue when the software self-test log reports failures")
	f.String("merge-policy", defaults.MergePolicy, "run identity collisions across raw files: last-write-wins or reject")
	f.String("ledger", "", "SQLite ledger recording invocations (env "+config.EnvLedger+")")
	f.String("metrics-file", "", "write batch metrics in Prometheus textfile format")
	return cmd
}
// #endregion run-cmd

// #region apply-flags
// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	strs := map[string]*string{
		"stage":                    &cfg.Stage,
		"cluster-dir":              &cfg.ClusterDir,
		"intermediate-dir":         &cfg.IntermediateDir,
		"output-file":              &cfg.OutputFile,
		"per-run-interm-template":  &cfg.PerRunTemplate,
		"per-year-interm-template": &cfg.PerYearTemplate,
		"merge-policy":             &cfg.MergePolicy,
		"ledger":                   &cfg.Ledger,
		"metrics-file":             &cfg.MetricsFile,
	}
	for name, dst := range strs {
		if f.Changed(name) {
			v, err := f.GetString(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}

	ints := map[string]*int{
		"min-cows":     &cfg.Thresholds.MinCows,
		"perturb-cows": &cfg.Thresholds.PerturbCows,
	}
	for name, dst := range ints {
		if f.Changed(name) {
			v, err := f.GetInt(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}

	floats := map[string]*float64{
		"min-harvest":      &cfg.Thresholds.MinHarvest,
		"min-woodland":     &cfg.Thresholds.MinWoodland,
		"perturb-harvest":  &cfg.Thresholds.PerturbHarvestPct,
		"perturb-woodland": &cfg.Thresholds.PerturbWoodlandPct,
	}
	for name, dst := range floats {
		if f.Changed(name) {
			v, err := f.GetFloat64(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}

	bools := map[string]*bool{
		"overwrite":           &cfg.Overwrite,
		"ignore-test-failure": &cfg.IgnoreTestFailure,
	}
	for name, dst := range bools {
		if f.Changed(name) {
			v, err := f.GetBool(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}

	if f.Changed("seed") {
		v, err := f.GetUint64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = &v
	}
	return nil
}
// #endregion apply-flags

// #region run-pipeline
func runPipeline(cfg *config.Config) error {
	var opts []pipeline.Option
	if cfg.Ledger != "" {
		store, err := ledger.NewStore(cfg.Ledger)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer store.Close()
		opts = append(opts, pipeline.WithLedger(store))
	}

	res, err := pipeline.New(cfg, logger, opts...).Run()
	if err != nil {
		return err
	}
	logger.Info("done",
		zap.String("stage", res.Stage),
		zap.Int("raw_files", res.RawFiles),
		zap.Int("runs", res.Runs),
		zap.Int("summaries", len(res.Summaries)),
		zap.Uint64("seed", res.Thresholds.Seed))
	return nil
}
// #endregion run-pipeline
