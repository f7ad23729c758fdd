package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/runsummary/internal/threshold"
)

func TestBatchCounters(t *testing.T) {
	b := NewBatch()
	b.RawFile(10)
	b.RawFile(5)
	b.Summarized("cow threshold")
	b.Summarized("cow threshold")
	b.Summarized("end of simulation")
	b.Thresholds(threshold.Thresholds{MinCows: 3, MinHarvest: 1.5, MinWoodland: 20})

	assert.Equal(t, 2.0, testutil.ToFloat64(b.rawFiles))
	assert.Equal(t, 15.0, testutil.ToFloat64(b.rawRows))
	assert.Equal(t, 2.0, testutil.ToFloat64(b.summarized.WithLabelValues("cow threshold")))
	assert.Equal(t, 1.5, testutil.ToFloat64(b.thresholds.WithLabelValues("harvest")))

	n, err := testutil.GatherAndCount(b.Gatherer())
	require.NoError(t, err)
	// two counters, two reasons, three threshold kinds, one timestamp gauge
	assert.Equal(t, 8, n)
}

func TestWriteTextfile(t *testing.T) {
	b := NewBatch()
	b.Succeeded(time.Unix(1700000000, 0))
	path := filepath.Join(t.TempDir(), "runsummary.prom")

	require.NoError(t, b.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "runsummary_last_success_timestamp_seconds 1.7e+09")
}
