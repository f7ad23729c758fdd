package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/runsummary/internal/threshold"
)

// #region batch
// Batch holds the counters of one invocation in a private registry, so they
// can be written as a node-exporter textfile when the batch ends.
type Batch struct {
	registry *prometheus.Registry

	rawFiles    prometheus.Counter
	rawRows     prometheus.Counter
	summarized  *prometheus.CounterVec
	thresholds  *prometheus.GaugeVec
	lastSuccess prometheus.Gauge
}

// NewBatch registers the batch metrics.
func NewBatch() *Batch {
	b := &Batch{
		registry: prometheus.NewRegistry(),
		rawFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runsummary_raw_files_total",
			Help: "Raw simulator exports read.",
		}),
		rawRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "runsummary_raw_rows_total",
			Help: "CSV body rows folded into runs.",
		}),
		summarized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "runsummary_runs_summarized_total",
			Help: "Runs summarized, by termination reason.",
		}, []string{"reason"}),
		thresholds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "runsummary_threshold",
			Help: "Collapse thresholds applied in this invocation.",
		}, []string{"kind"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "runsummary_last_success_timestamp_seconds",
			Help: "Unix time the last invocation completed.",
		}),
	}
	b.registry.MustRegister(b.rawFiles, b.rawRows, b.summarized, b.thresholds, b.lastSuccess)
	return b
}
// #endregion batch

// #region observe
// RawFile counts one folded raw source and its rows.
func (b *Batch) RawFile(rows int) {
	b.rawFiles.Inc()
	b.rawRows.Add(float64(rows))
}

// Summarized counts one run by its termination reason.
func (b *Batch) Summarized(reason string) {
	b.summarized.WithLabelValues(reason).Inc()
}

// Thresholds records the thresholds in effect.
func (b *Batch) Thresholds(t threshold.Thresholds) {
	b.thresholds.WithLabelValues("cows").Set(float64(t.MinCows))
	b.thresholds.WithLabelValues("harvest").Set(t.MinHarvest)
	b.thresholds.WithLabelValues("woodland").Set(t.MinWoodland)
}

// Succeeded stamps the completion time.
func (b *Batch) Succeeded(at time.Time) {
	b.lastSuccess.Set(float64(at.Unix()))
}

// Gatherer exposes the registry for tests and exporters.
func (b *Batch) Gatherer() prometheus.Gatherer {
	return b.registry
}
// #endregion observe

// #region write
// WriteTextfile writes the registry in the text exposition format.
func (b *Batch) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, b.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
// #endregion write
