package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/runsummary/internal/intermediate"
	"github.com/danielpatrickdp/runsummary/internal/threshold"
)

// #region stages
// Processing stages.
const (
	StageAutodetect  = "autodetect"
	StageRawToInt    = "raw-to-int"
	StageIntToFinal  = "int-to-final"
	StageAll         = "all"
	EnvLedger        = "RUNSUMMARY_LEDGER"
	outputFileLayout = "2006-01-02_SummarizedData.csv"
)
// #endregion stages

// #region config
// Config holds every option of one summarizer invocation.
type Config struct {
	Stage           string `yaml:"stage" validate:"oneof=autodetect raw-to-int int-to-final all"`
	ClusterDir      string `yaml:"cluster_dir" validate:"required"`
	IntermediateDir string `yaml:"intermediate_dir"`
	OutputFile      string `yaml:"output_file"`

	PerRunTemplate  string `yaml:"per_run_template" validate:"required"`
	PerYearTemplate string `yaml:"per_year_template" validate:"required"`

	Overwrite         bool   `yaml:"overwrite"`
	IgnoreTestFailure bool   `yaml:"ignore_test_failure"`
	MergePolicy       string `yaml:"merge_policy" validate:"oneof=last-write-wins reject"`

	Thresholds threshold.Inputs `yaml:"thresholds"`
	// Seed drives threshold perturbation; nil draws a fresh one.
	Seed *uint64 `yaml:"seed,omitempty"`

	Ledger      string `yaml:"ledger"`
	MetricsFile string `yaml:"metrics_file"`
}

// DefaultConfig returns the defaults of the command line.
func DefaultConfig() *Config {
	return &Config{
		Stage:           StageAutodetect,
		ClusterDir:      "./raw_data",
		PerRunTemplate:  intermediate.DefaultPerRunTemplate,
		PerYearTemplate: intermediate.DefaultPerYearTemplate,
		MergePolicy:     "last-write-wins",
		Thresholds:      threshold.DefaultInputs(),
	}
}
// #endregion config

// #region load
// Load reads a YAML file over the defaults. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvLedger); v != "" && c.Ledger == "" {
		c.Ledger = v
	}
}
// #endregion load

// #region validate
var validate = validator.New()

// Validate checks the option values. Threshold perturbation bounds are
// checked separately when thresholds are drawn.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
// #endregion validate

// #region resolve
// Resolve makes the directories absolute and fills the derived defaults:
// the intermediate dir beside the cluster dir, and a dated output file.
func (c *Config) Resolve(now time.Time) error {
	abs, err := filepath.Abs(c.ClusterDir)
	if err != nil {
		return fmt.Errorf("resolve cluster dir: %w", err)
	}
	c.ClusterDir = abs

	if c.IntermediateDir == "" {
		c.IntermediateDir = filepath.Join(c.ClusterDir, "..", "intermediate")
	}
	if c.IntermediateDir, err = filepath.Abs(c.IntermediateDir); err != nil {
		return fmt.Errorf("resolve intermediate dir: %w", err)
	}

	if c.OutputFile == "" {
		c.OutputFile = filepath.Join(c.ClusterDir, "..", now.Format(outputFileLayout))
	}
	if c.OutputFile, err = filepath.Abs(c.OutputFile); err != nil {
		return fmt.Errorf("resolve output file: %w", err)
	}
	return nil
}
// #endregion resolve
