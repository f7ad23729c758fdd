package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvLedger, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(EnvLedger, "")
	path := filepath.Join(t.TempDir(), "nested", "runsummary.yaml")
	seed := uint64(1234)

	cfg := DefaultConfig()
	cfg.Stage = StageIntToFinal
	cfg.ClusterDir = "/data/raw"
	cfg.Thresholds.MinHarvest = 2.5
	cfg.Thresholds.PerturbWoodlandPct = 10
	cfg.Seed = &seed
	cfg.MergePolicy = "reject"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvLedgerOverride(t *testing.T) {
	t.Setenv(EnvLedger, "/var/lib/runsummary.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/runsummary.db", cfg.Ledger)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"stage", func(c *Config) { c.Stage = "sometimes" }},
		{"cluster dir", func(c *Config) { c.ClusterDir = "" }},
		{"merge policy", func(c *Config) { c.MergePolicy = "first-wins" }},
		{"template", func(c *Config) { c.PerYearTemplate = "" }},
		{"perturbation", func(c *Config) { c.Thresholds.PerturbHarvestPct = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), "invalid config")
		})
	}
}

func TestResolveDefaults(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.ClusterDir = filepath.Join(root, "raw")

	require.NoError(t, cfg.Resolve(time.Date(2019, 5, 12, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, filepath.Join(root, "intermediate"), cfg.IntermediateDir)
	assert.Equal(t, filepath.Join(root, "2019-05-12_SummarizedData.csv"), cfg.OutputFile)
}

func TestResolveKeepsExplicitPaths(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.ClusterDir = filepath.Join(root, "raw")
	cfg.IntermediateDir = filepath.Join(root, "elsewhere")
	cfg.OutputFile = filepath.Join(root, "out.csv")

	require.NoError(t, cfg.Resolve(time.Now()))
	assert.Equal(t, filepath.Join(root, "elsewhere"), cfg.IntermediateDir)
	assert.Equal(t, filepath.Join(root, "out.csv"), cfg.OutputFile)
}
