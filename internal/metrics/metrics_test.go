package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/robots.txt", "example.com"},
		{"host with port", "dev218227.service-now.com:443", "dev218227.service-now.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if fetchesTotal == nil || fetchDurationSeconds == nil ||
		recordsExtractedTotal == nil || chartsRenderedTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveFetch(t *testing.T) {
	Init()
	before := testutil.ToFloat64(fetchesTotal.WithLabelValues("rest", "metrics.test", "error"))

	ObserveFetch("rest", "https://metrics.test/api", errors.New("boom"), 0, time.Second)

	after := testutil.ToFloat64(fetchesTotal.WithLabelValues("rest", "metrics.test", "error"))
	if after-before != 1 {
		t.Errorf("expected error fetch counter to grow by 1, got %f", after-before)
	}
}

func TestObserveRecordsAndCharts(t *testing.T) {
	Init()
	records := testutil.ToFloat64(recordsExtractedTotal.WithLabelValues("metrics-test"))
	ObserveRecords("metrics-test", 3)
	ObserveRecords("metrics-test", 0)
	if got := testutil.ToFloat64(recordsExtractedTotal.WithLabelValues("metrics-test")) - records; got != 3 {
		t.Errorf("expected 3 records, got %f", got)
	}

	charts := testutil.ToFloat64(chartsRenderedTotal.WithLabelValues("pie"))
	ObserveChart("pie")
	if got := testutil.ToFloat64(chartsRenderedTotal.WithLabelValues("pie")) - charts; got != 1 {
		t.Errorf("expected 1 chart, got %f", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	Init()
	ObserveRun("metrics-test", nil)

	if err := WriteTextfile(""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "webanalysis.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "webanalysis_pipeline_runs_total") {
		t.Errorf("textfile missing pipeline runs metric:\n%s", data)
	}
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://openai.com/robots.txt", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
