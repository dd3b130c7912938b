// Package present renders aggregates: tables on the console and HTML charts
// written to a blob store.
package present

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// Kind selects the chart type.
type Kind string

// Supported chart kinds. A CrossTab is always drawn as grouped bars.
const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ChartSpec describes one chart.
type ChartSpec struct {
	// Name is the artifact base name, e.g. "ticket-status".
	Name        string
	Title       string
	Kind        Kind
	XLabel      string
	YLabel      string
	LegendTitle string
	// Labels renames category keys for display.
	Labels       LabelMap
	RotateLabels bool
}

// Presenter renders aggregates.
type Presenter interface {
	Counts(ctx context.Context, counts table.Counts, spec ChartSpec) error
	CrossTab(ctx context.Context, ct table.CrossTab, spec ChartSpec) error
}

// Reporter prints tabular previews of a whole table.
type Reporter interface {
	Table(ctx context.Context, title string, t *table.Table) error
	Describe(ctx context.Context, title string, summaries []table.ColumnSummary) error
}

// ErrNoName is returned for a chart spec without an artifact name.
var ErrNoName = errors.New("chart spec has no name")

// displayKey renders a category value, applying labels. Keys missing from a
// non-empty label map render raw and are logged.
func displayKey(logger *zap.Logger, spec ChartSpec, v table.Value) string {
	if len(spec.Labels) == 0 {
		return v.Key()
	}
	if label, ok := spec.Labels.Label(v.Key()); ok {
		return label
	}
	logger.Warn("no display label for key",
		zap.String("chart", spec.Name),
		zap.String("key", v.Key()),
	)
	return v.Key()
}
