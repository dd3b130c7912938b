package present

import (
	"context"

	"github.com/JakeFAU/webanalysis/internal/table"
)

// Multi fans out to several presenters in order, stopping at the first error.
type Multi []Presenter

// Counts implements Presenter.
func (m Multi) Counts(ctx context.Context, counts table.Counts, spec ChartSpec) error {
	for _, p := range m {
		if err := p.Counts(ctx, counts, spec); err != nil {
			return err
		}
	}
	return nil
}

// CrossTab implements Presenter.
func (m Multi) CrossTab(ctx context.Context, ct table.CrossTab, spec ChartSpec) error {
	for _, p := range m {
		if err := p.CrossTab(ctx, ct, spec); err != nil {
			return err
		}
	}
	return nil
}

// Discard is a Reporter that prints nothing.
type Discard struct{}

// Table implements Reporter.
func (Discard) Table(context.Context, string, *table.Table) error { return nil }

// Describe implements Reporter.
func (Discard) Describe(context.Context, string, []table.ColumnSummary) error { return nil }
