package present

import (
	"context"
	"fmt"
	"io"
	"os"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// Console prints aggregates and previews as rounded go-pretty tables.
type Console struct {
	out    io.Writer
	logger *zap.Logger
}

// NewConsole writes to out, or stdout when out is nil.
func NewConsole(out io.Writer, logger *zap.Logger) *Console {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{out: out, logger: logger}
}

func (c *Console) writer(title string) prettytable.Writer {
	w := prettytable.NewWriter()
	w.SetOutputMirror(c.out)
	w.SetStyle(prettytable.StyleRounded)
	if title != "" {
		w.SetTitle(title)
	}
	return w
}

// Counts prints one row per key in natural order with a total footer.
func (c *Console) Counts(_ context.Context, counts table.Counts, spec ChartSpec) error {
	header := spec.XLabel
	if header == "" {
		header = counts.Field
	}
	w := c.writer(spec.Title)
	w.AppendHeader(prettytable.Row{header, "count"})
	for _, e := range counts.Sorted() {
		w.AppendRow(prettytable.Row{displayKey(c.logger, spec, e.Key), e.Count})
	}
	w.AppendFooter(prettytable.Row{"total", counts.Total()})
	w.Render()
	return nil
}

// CrossTab prints the dense matrix with row totals.
func (c *Console) CrossTab(_ context.Context, ct table.CrossTab, spec ChartSpec) error {
	corner := spec.XLabel
	if corner == "" {
		corner = ct.RowField
	}
	cols := ct.Cols()
	header := prettytable.Row{corner}
	for _, col := range cols {
		header = append(header, col.Key())
	}
	header = append(header, "total")

	w := c.writer(spec.Title)
	w.AppendHeader(header)
	for i, row := range ct.Rows() {
		line := prettytable.Row{displayKey(c.logger, spec, row)}
		sum := 0
		for j := range cols {
			line = append(line, ct.At(i, j))
			sum += ct.At(i, j)
		}
		w.AppendRow(append(line, sum))
	}
	footer := prettytable.Row{"total"}
	for j := range cols {
		sum := 0
		for i := range ct.Rows() {
			sum += ct.At(i, j)
		}
		footer = append(footer, sum)
	}
	w.AppendFooter(append(footer, ct.Total()))
	w.Render()
	return nil
}

// Table prints every row of t.
func (c *Console) Table(_ context.Context, title string, t *table.Table) error {
	cols := t.Columns()
	header := make(prettytable.Row, 0, len(cols))
	for _, col := range cols {
		header = append(header, col)
	}
	w := c.writer(title)
	w.AppendHeader(header)
	for _, rec := range t.Rows() {
		line := make(prettytable.Row, 0, len(cols))
		for _, col := range cols {
			line = append(line, rec.Get(col).String())
		}
		w.AppendRow(line)
	}
	w.AppendFooter(prettytable.Row{fmt.Sprintf("%d rows", t.Len())})
	w.Render()
	return nil
}

// Describe prints one summary row per column.
func (c *Console) Describe(_ context.Context, title string, summaries []table.ColumnSummary) error {
	w := c.writer(title)
	w.AppendHeader(prettytable.Row{"column", "count", "missing", "unique", "top", "freq", "mean", "min", "max"})
	for _, s := range summaries {
		top := ""
		if s.TopFreq > 0 {
			top = s.Top.String()
		}
		mean, lo, hi := "", "", ""
		if s.Numeric {
			mean = fmt.Sprintf("%.2f", s.Mean)
			lo = fmt.Sprintf("%g", s.Min)
			hi = fmt.Sprintf("%g", s.Max)
		}
		w.AppendRow(prettytable.Row{s.Name, s.Count, s.Missing, s.Distinct, top, s.TopFreq, mean, lo, hi})
	}
	w.Render()
	return nil
}
