package present

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/metrics"
	"github.com/JakeFAU/webanalysis/internal/storage"
	"github.com/JakeFAU/webanalysis/internal/table"
)

const htmlContentType = "text/html; charset=utf-8"

// HTML renders interactive go-echarts pages into a blob store under
// <prefix>/<name>.html.
type HTML struct {
	store  storage.BlobStore
	prefix string
	logger *zap.Logger
}

// NewHTML creates an HTML presenter. prefix is usually the run ID.
func NewHTML(store storage.BlobStore, prefix string, logger *zap.Logger) *HTML {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTML{store: store, prefix: prefix, logger: logger}
}

type renderer interface {
	Render(w io.Writer) error
}

// Counts draws a bar or pie chart of one frequency result.
func (h *HTML) Counts(ctx context.Context, counts table.Counts, spec ChartSpec) error {
	entries := counts.Sorted()
	var chart renderer
	switch spec.Kind {
	case KindPie:
		data := make([]opts.PieData, 0, len(entries))
		for _, e := range entries {
			data = append(data, opts.PieData{Name: displayKey(h.logger, spec, e.Key), Value: e.Count})
		}
		pie := charts.NewPie()
		pie.SetGlobalOptions(h.globalOptions(spec)...)
		pie.AddSeries(counts.Field, data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
			charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
		)
		chart = pie
	case KindBar, "":
		labels := make([]string, 0, len(entries))
		data := make([]opts.BarData, 0, len(entries))
		for _, e := range entries {
			labels = append(labels, displayKey(h.logger, spec, e.Key))
			data = append(data, opts.BarData{Value: e.Count})
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(h.axisOptions(spec)...)
		bar.SetXAxis(labels).AddSeries(counts.Field, data)
		chart = bar
	default:
		return fmt.Errorf("render %s: unsupported chart kind %q", spec.Name, spec.Kind)
	}
	return h.write(ctx, spec, string(kindFor(spec.Kind)), chart)
}

// CrossTab draws one bar series per column value, grouped by row value.
func (h *HTML) CrossTab(ctx context.Context, ct table.CrossTab, spec ChartSpec) error {
	rows := ct.Rows()
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, displayKey(h.logger, spec, r))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(h.axisOptions(spec)...)
	bar.SetXAxis(labels)
	for j, col := range ct.Cols() {
		data := make([]opts.BarData, 0, len(rows))
		for i := range rows {
			data = append(data, opts.BarData{Value: ct.At(i, j)})
		}
		bar.AddSeries(legendName(spec, col), data)
	}
	return h.write(ctx, spec, "grouped_bar", bar)
}

func kindFor(k Kind) Kind {
	if k == "" {
		return KindBar
	}
	return k
}

// legendName labels a series as "<LegendTitle>: <value>". Legends in
// echarts have no heading of their own.
func legendName(spec ChartSpec, v table.Value) string {
	if spec.LegendTitle == "" {
		return v.Key()
	}
	return spec.LegendTitle + ": " + v.Key()
}

func (h *HTML) globalOptions(spec ChartSpec) []charts.GlobalOpts {
	title := opts.Title{Title: spec.Title}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: spec.Title,
			Width:     "1000px",
			Height:    "640px",
		}),
		charts.WithTitleOpts(title),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func (h *HTML) axisOptions(spec ChartSpec) []charts.GlobalOpts {
	axisLabel := &opts.AxisLabel{Show: opts.Bool(true), Interval: "0"}
	if spec.RotateLabels {
		axisLabel.Rotate = 45
	}
	return append(h.globalOptions(spec),
		charts.WithXAxisOpts(opts.XAxis{Name: spec.XLabel, AxisLabel: axisLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: spec.YLabel}),
	)
}

func (h *HTML) write(ctx context.Context, spec ChartSpec, kind string, chart renderer) error {
	if spec.Name == "" {
		return ErrNoName
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", spec.Name, err)
	}
	key := path.Join(h.prefix, spec.Name+".html")
	uri, err := h.store.PutObject(ctx, key, htmlContentType, &buf)
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	metrics.ObserveChart(kind)
	h.logger.Info("chart written", zap.String("chart", spec.Name), zap.String("artifact", uri))
	return nil
}
