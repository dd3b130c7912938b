package analysis

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/extract"
	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/metrics"
	"github.com/JakeFAU/webanalysis/internal/present"
	"github.com/JakeFAU/webanalysis/internal/table"
)

// Incident fields the analyses aggregate on.
const (
	FieldState       = "state"
	FieldContactType = "contact_type"
	FieldCategory    = "category"
	FieldPriority    = "priority"
)

// Chart specs of the ticket analyses.
var (
	StatusChart = present.ChartSpec{
		Name:         "ticket-status",
		Title:        "Incident Tickets state",
		Kind:         present.KindBar,
		XLabel:       FieldState,
		YLabel:       "Count",
		Labels:       present.StatusLabels,
		RotateLabels: true,
	}
	ContactTypeChart = present.ChartSpec{
		Name:  "ticket-contact-type",
		Title: "Distribution of Incident Contact Types",
		Kind:  present.KindPie,
	}
	PriorityChart = present.ChartSpec{
		Name:        "ticket-priority",
		Title:       "Distribution of Incident Priorities for Each Root Cause",
		Kind:        present.KindBar,
		XLabel:      "Root Cause",
		YLabel:      "Count",
		LegendTitle: "Priority",
	}
)

// Tickets analyses incidents from a ServiceNow table API.
type Tickets struct {
	cfg     config.TicketsConfig
	fetcher fetcher.Fetcher
	deps    Deps
}

// NewTickets builds the ticket pipeline. f is normally a rest.Client.
func NewTickets(cfg config.TicketsConfig, f fetcher.Fetcher, deps Deps) *Tickets {
	return &Tickets{cfg: cfg, fetcher: f, deps: deps.withDefaults(PipelineTickets)}
}

func (t *Tickets) request() fetcher.Request {
	query := url.Values{}
	query.Set("sysparm_fields", strings.Join(t.cfg.Fields, ","))
	if t.cfg.Limit > 0 {
		query.Set("sysparm_limit", strconv.Itoa(t.cfg.Limit))
	}
	if t.cfg.Query != "" {
		query.Set("sysparm_query", t.cfg.Query)
	}
	return fetcher.Request{
		URL:   t.cfg.Endpoint(),
		Query: query,
		Auth:  &fetcher.BasicAuth{Username: t.cfg.Username, Password: t.cfg.Password},
	}
}

// Fetch retrieves every configured field of every incident as a table.
func (t *Tickets) Fetch(ctx context.Context) (*table.Table, error) {
	resp, err := t.fetcher.Fetch(ctx, t.request())
	if err != nil {
		return nil, fmt.Errorf("fetch tickets: %w", err)
	}
	seq, err := extract.JSON{ResultKey: extract.DefaultResultKey, Fields: t.cfg.Fields}.Extract(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("extract tickets: %w", err)
	}
	tbl := table.WithColumns(t.cfg.Fields, seq)
	metrics.ObserveRecords(PipelineTickets, tbl.Len())
	t.deps.Logger.Info("tickets fetched", zap.String("url", resp.URL), zap.Int("records", tbl.Len()))
	return tbl, nil
}

// Columns fetches incidents and returns the configured analysis columns,
// printing a preview and summary. Columns with no values at all are
// reported but still projected.
func (t *Tickets) Columns(ctx context.Context) (*table.Table, error) {
	tbl, err := t.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return t.SelectColumns(ctx, tbl)
}

// SelectColumns projects tbl onto the configured analysis columns.
func (t *Tickets) SelectColumns(ctx context.Context, tbl *table.Table) (*table.Table, error) {
	if empty := tbl.EmptyColumns(); len(empty) > 0 {
		t.deps.Logger.Info("columns without values",
			zap.Strings("fields", empty),
			zap.Int("kept", len(tbl.DropEmptyColumns().Columns())),
		)
	}
	projected, err := tbl.Project(t.cfg.Columns...)
	if err != nil {
		return nil, fmt.Errorf("select ticket columns: %w", err)
	}
	if err := t.deps.Reporter.Table(ctx, "Incident tickets", projected.Head(t.deps.HeadRows)); err != nil {
		return nil, err
	}
	if err := t.deps.Reporter.Describe(ctx, "Incident ticket columns", projected.Describe()); err != nil {
		return nil, err
	}
	return projected, nil
}

// StatusAnalysis fetches incidents and charts how many are in each state.
func (t *Tickets) StatusAnalysis(ctx context.Context) (table.Counts, error) {
	tbl, err := t.Fetch(ctx)
	if err != nil {
		return table.Counts{}, err
	}
	return t.Status(ctx, tbl)
}

// Status charts the state frequency of tbl.
func (t *Tickets) Status(ctx context.Context, tbl *table.Table) (table.Counts, error) {
	counts, err := tbl.Frequency(FieldState, table.FrequencyOptions{})
	if err != nil {
		return table.Counts{}, fmt.Errorf("status analysis: %w", err)
	}
	if err := t.deps.Presenter.Counts(ctx, counts, StatusChart); err != nil {
		return table.Counts{}, fmt.Errorf("present status: %w", err)
	}
	return counts, nil
}

// ContactTypeAnalysis fetches incidents and charts how they were reported.
func (t *Tickets) ContactTypeAnalysis(ctx context.Context) (table.Counts, error) {
	tbl, err := t.Fetch(ctx)
	if err != nil {
		return table.Counts{}, err
	}
	return t.ContactType(ctx, tbl)
}

// ContactType charts the contact type frequency of tbl, counting blanks as
// "Not filled".
func (t *Tickets) ContactType(ctx context.Context, tbl *table.Table) (table.Counts, error) {
	counts, err := tbl.Frequency(FieldContactType, table.FrequencyOptions{BlankLabel: table.NotFilled})
	if err != nil {
		return table.Counts{}, fmt.Errorf("contact type analysis: %w", err)
	}
	if err := t.deps.Presenter.Counts(ctx, counts, ContactTypeChart); err != nil {
		return table.Counts{}, fmt.Errorf("present contact types: %w", err)
	}
	return counts, nil
}

// PriorityAnalysis fetches incidents and charts priorities per category.
func (t *Tickets) PriorityAnalysis(ctx context.Context) (table.CrossTab, error) {
	tbl, err := t.Fetch(ctx)
	if err != nil {
		return table.CrossTab{}, err
	}
	return t.Priority(ctx, tbl)
}

// Priority charts the category by priority cross tabulation of tbl.
func (t *Tickets) Priority(ctx context.Context, tbl *table.Table) (table.CrossTab, error) {
	ct, err := tbl.CrossTab(FieldCategory, FieldPriority, table.CrossTabOptions{BlankRowLabel: table.OtherCategory})
	if err != nil {
		return table.CrossTab{}, fmt.Errorf("priority analysis: %w", err)
	}
	if err := t.deps.Presenter.CrossTab(ctx, ct, PriorityChart); err != nil {
		return table.CrossTab{}, fmt.Errorf("present priorities: %w", err)
	}
	return ct, nil
}

// Run fetches once and performs every ticket analysis.
func (t *Tickets) Run(ctx context.Context) (err error) {
	defer func() { metrics.ObserveRun(PipelineTickets, err) }()

	tbl, err := t.Fetch(ctx)
	if err != nil {
		return err
	}
	if _, err = t.SelectColumns(ctx, tbl); err != nil {
		return err
	}
	if _, err = t.Status(ctx, tbl); err != nil {
		return err
	}
	if _, err = t.ContactType(ctx, tbl); err != nil {
		return err
	}
	_, err = t.Priority(ctx, tbl)
	return err
}
