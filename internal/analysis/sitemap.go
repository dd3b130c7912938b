package analysis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/extract"
	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/metrics"
	"github.com/JakeFAU/webanalysis/internal/present"
	"github.com/JakeFAU/webanalysis/internal/table"
)

// ChangeFrequencyChart is the chart spec of the sitemap analysis.
var ChangeFrequencyChart = present.ChartSpec{
	Name:  "sitemap-change-frequency",
	Title: "Distribution of URL Change Frequency",
	Kind:  present.KindPie,
}

// Sitemap discovers sitemaps through robots.txt and tabulates their URLs.
type Sitemap struct {
	cfg       config.SitemapConfig
	fetcher   fetcher.Fetcher
	extractor extract.Sitemap
	deps      Deps
}

// NewSitemap builds the sitemap pipeline. f is normally the colly fetcher.
func NewSitemap(cfg config.SitemapConfig, f fetcher.Fetcher, deps Deps) *Sitemap {
	return &Sitemap{
		cfg:       cfg,
		fetcher:   f,
		extractor: extract.Sitemap{RawElements: cfg.RawElements},
		deps:      deps.withDefaults(PipelineSitemap),
	}
}

// RobotsTxt fetches {base_url}/robots.txt.
func (s *Sitemap) RobotsTxt(ctx context.Context) ([]byte, error) {
	target := strings.TrimRight(s.cfg.BaseURL, "/") + "/robots.txt"
	resp, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: target})
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	return resp.Body, nil
}

// SitemapURLs lists the Sitemap directives of a robots.txt document.
func (s *Sitemap) SitemapURLs(robots []byte) ([]string, error) {
	urls, err := extract.SitemapURLs(robots)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return urls, nil
}

// SitemapContent fetches one sitemap document.
func (s *Sitemap) SitemapContent(ctx context.Context, sitemapURL string) ([]byte, error) {
	resp, err := s.fetcher.Fetch(ctx, fetcher.Request{URL: sitemapURL})
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	return resp.Body, nil
}

// ToTable extracts the URL entries of one sitemap document.
func (s *Sitemap) ToTable(payload []byte) (*table.Table, error) {
	seq, err := s.extractor.Extract(payload)
	if err != nil {
		return nil, err
	}
	return table.WithColumns(extract.SitemapColumns, seq), nil
}

// Run fetches robots.txt, every sitemap it lists (following sitemap indexes
// when enabled) and concatenates their entries in discovery order.
func (s *Sitemap) Run(ctx context.Context) (tbl *table.Table, err error) {
	defer func() { metrics.ObserveRun(PipelineSitemap, err) }()

	robots, err := s.RobotsTxt(ctx)
	if err != nil {
		return nil, err
	}
	urls, err := s.SitemapURLs(robots)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		s.deps.Logger.Warn("robots.txt lists no sitemaps", zap.String("url", s.cfg.BaseURL))
	}

	tables := []*table.Table{table.Empty(extract.SitemapColumns...)}
	visited := make(map[string]bool)
	for _, u := range urls {
		if err := s.collect(ctx, u, 0, visited, &tables); err != nil {
			return nil, err
		}
	}
	tbl = table.Concat(tables...)
	metrics.ObserveRecords(PipelineSitemap, tbl.Len())
	s.deps.Logger.Info("sitemaps collected",
		zap.Int("sitemaps", len(visited)),
		zap.Int("records", tbl.Len()),
	)
	return tbl, nil
}

func (s *Sitemap) collect(ctx context.Context, sitemapURL string, depth int, visited map[string]bool, tables *[]*table.Table) error {
	if visited[sitemapURL] {
		return nil
	}
	visited[sitemapURL] = true

	payload, err := s.SitemapContent(ctx, sitemapURL)
	if err != nil {
		return err
	}
	if s.cfg.FollowIndex {
		children, err := extract.SitemapIndexLocs(payload)
		if err != nil {
			return fmt.Errorf("sitemap %s: %w", sitemapURL, err)
		}
		if len(children) > 0 {
			if depth >= s.cfg.MaxIndexDepth {
				s.deps.Logger.Warn("sitemap index depth exceeded",
					zap.String("url", sitemapURL),
					zap.Int("depth", depth),
				)
				return nil
			}
			for _, child := range children {
				if err := s.collect(ctx, child, depth+1, visited, tables); err != nil {
					return err
				}
			}
			return nil
		}
	}

	tbl, err := s.ToTable(payload)
	if err != nil {
		return fmt.Errorf("sitemap %s: %w", sitemapURL, err)
	}
	s.deps.Logger.Debug("sitemap parsed", zap.String("url", sitemapURL), zap.Int("records", tbl.Len()))
	*tables = append(*tables, tbl)
	return nil
}

// Analyze previews tbl and charts the change frequency distribution.
func (s *Sitemap) Analyze(ctx context.Context, tbl *table.Table) (table.Counts, error) {
	if err := s.deps.Reporter.Table(ctx, "Sitemap entries", tbl.Head(s.deps.HeadRows)); err != nil {
		return table.Counts{}, err
	}
	if err := s.deps.Reporter.Describe(ctx, "Sitemap fields", tbl.Describe()); err != nil {
		return table.Counts{}, err
	}
	counts, err := tbl.Frequency(extract.ColumnChangeFrequency, table.FrequencyOptions{})
	if err != nil {
		return table.Counts{}, fmt.Errorf("change frequency analysis: %w", err)
	}
	if err := s.deps.Presenter.Counts(ctx, counts, ChangeFrequencyChart); err != nil {
		return table.Counts{}, fmt.Errorf("present change frequency: %w", err)
	}
	return counts, nil
}
