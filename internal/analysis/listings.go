package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/extract"
	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/metrics"
	"github.com/JakeFAU/webanalysis/internal/present"
	"github.com/JakeFAU/webanalysis/internal/table"
)

// FieldRooms is the listing field charted by Analyze.
const FieldRooms = "Number of Rooms"

// RoomsChart is the chart spec of the listings analysis.
var RoomsChart = present.ChartSpec{
	Name:         "listing-rooms",
	Title:        "Listings by Number of Rooms",
	Kind:         present.KindBar,
	XLabel:       FieldRooms,
	YLabel:       "Count",
	RotateLabels: true,
}

// Listings scrapes a rendered search results page into one row per listing.
type Listings struct {
	url     string
	fetcher fetcher.Fetcher
	markup  extract.Markup
	deps    Deps
}

// NewListings builds the listings pipeline from its selector table. f is
// normally the headless chromedp fetcher since results render client side.
func NewListings(cfg config.ListingsConfig, f fetcher.Fetcher, deps Deps) (*Listings, error) {
	markup, err := MarkupFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Listings{url: cfg.URL, fetcher: f, markup: markup, deps: deps.withDefaults(PipelineListings)}, nil
}

// MarkupFromConfig turns the configured selector table into an extractor.
func MarkupFromConfig(cfg config.ListingsConfig) (extract.Markup, error) {
	containerClass, err := extract.NewClassMatcher(cfg.Container.Match, cfg.Container.Class)
	if err != nil {
		return extract.Markup{}, fmt.Errorf("listings.container: %w", err)
	}
	m := extract.Markup{
		Container:         extract.Rule{Tag: cfg.Container.Tag, Class: containerClass},
		RequireContainers: cfg.RequireListings,
	}
	for i, rule := range cfg.Rules {
		class, err := extract.NewClassMatcher(rule.Match, rule.Class)
		if err != nil {
			return extract.Markup{}, fmt.Errorf("listings.rules[%d]: %w", i, err)
		}
		field := extract.FieldRule{
			Name:     rule.Field,
			Rule:     extract.Rule{Tag: rule.Tag, Class: class},
			Optional: rule.Optional,
		}
		if rule.Missing != "" {
			field.Missing = table.String(rule.Missing)
		}
		m.Fields = append(m.Fields, field)
	}
	return m, nil
}

// Scrape renders the page and extracts every listing.
func (l *Listings) Scrape(ctx context.Context) (*table.Table, error) {
	resp, err := l.fetcher.Fetch(ctx, fetcher.Request{URL: l.url})
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	seq, err := l.markup.Extract(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("extract listings: %w", err)
	}
	tbl := table.WithColumns(l.markup.Columns(), seq)
	metrics.ObserveRecords(PipelineListings, tbl.Len())
	l.deps.Logger.Info("listings scraped",
		zap.String("url", resp.URL),
		zap.Int("records", tbl.Len()),
		zap.Bool("rendered", resp.Rendered),
	)
	return tbl, nil
}

// Analyze previews tbl and charts the room count distribution.
func (l *Listings) Analyze(ctx context.Context, tbl *table.Table) (table.Counts, error) {
	if err := l.deps.Reporter.Table(ctx, "Listings", tbl.Head(l.deps.HeadRows)); err != nil {
		return table.Counts{}, err
	}
	if err := l.deps.Reporter.Describe(ctx, "Listing fields", tbl.Describe()); err != nil {
		return table.Counts{}, err
	}
	counts, err := tbl.Frequency(FieldRooms, table.FrequencyOptions{})
	if err != nil {
		return table.Counts{}, fmt.Errorf("rooms analysis: %w", err)
	}
	if err := l.deps.Presenter.Counts(ctx, counts, RoomsChart); err != nil {
		return table.Counts{}, fmt.Errorf("present rooms: %w", err)
	}
	return counts, nil
}

// Run scrapes and analyzes.
func (l *Listings) Run(ctx context.Context) (tbl *table.Table, err error) {
	defer func() { metrics.ObserveRun(PipelineListings, err) }()

	tbl, err = l.Scrape(ctx)
	if err != nil {
		return nil, err
	}
	if _, err = l.Analyze(ctx, tbl); err != nil {
		return nil, err
	}
	return tbl, nil
}
