// Package metrics exposes Prometheus collectors for the analysis pipelines.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal          *prometheus.CounterVec
	fetchBytesTotal       *prometheus.CounterVec
	fetchDurationSeconds  *prometheus.HistogramVec
	recordsExtractedTotal *prometheus.CounterVec
	chartsRenderedTotal   *prometheus.CounterVec
	pipelineRunsTotal     *prometheus.CounterVec

	once sync.Once
)

// Init registers the collectors with the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webanalysis_fetches_total",
				Help: "Total number of fetches, labeled by source, site and outcome.",
			},
			[]string{"source", "site", "outcome"},
		)

		fetchBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webanalysis_fetch_bytes_total",
				Help: "Total number of payload bytes fetched, labeled by source.",
			},
			[]string{"source"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webanalysis_fetch_duration_seconds",
				Help:    "Histogram of fetch latencies, labeled by source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
			},
			[]string{"source"},
		)

		recordsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webanalysis_records_extracted_total",
				Help: "Total number of records extracted, labeled by pipeline.",
			},
			[]string{"pipeline"},
		)

		chartsRenderedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webanalysis_charts_rendered_total",
				Help: "Total number of charts rendered, labeled by kind.",
			},
			[]string{"kind"},
		)

		pipelineRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webanalysis_pipeline_runs_total",
				Help: "Total number of pipeline runs, labeled by pipeline and status.",
			},
			[]string{"pipeline", "status"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from rawURL.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveFetch records one fetch attempt.
func ObserveFetch(source, rawURL string, err error, bytesFetched int, duration time.Duration) {
	Init()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	fetchesTotal.WithLabelValues(source, SanitizeSite(rawURL), outcome).Inc()
	fetchDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
	if bytesFetched > 0 {
		fetchBytesTotal.WithLabelValues(source).Add(float64(bytesFetched))
	}
}

// ObserveRecords adds n extracted records for pipeline.
func ObserveRecords(pipeline string, n int) {
	Init()
	if n > 0 {
		recordsExtractedTotal.WithLabelValues(pipeline).Add(float64(n))
	}
}

// ObserveChart counts a rendered chart of the given kind.
func ObserveChart(kind string) {
	Init()
	chartsRenderedTotal.WithLabelValues(kind).Inc()
}

// ObserveRun counts a finished pipeline run.
func ObserveRun(pipeline string, err error) {
	Init()
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	pipelineRunsTotal.WithLabelValues(pipeline, status).Inc()
}

// WriteTextfile dumps the default registry in the node-exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
