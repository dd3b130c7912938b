package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/extract"
	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/table"
)

func listingsConfig(t *testing.T) config.ListingsConfig {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg.Listings
}

func TestListingsScrapeWithDefaultRules(t *testing.T) {
	t.Parallel()

	browser := &staticFetcher{body: readFixture(t, "listings.html")}
	cfg := listingsConfig(t)
	listings, err := NewListings(cfg, browser, Deps{})
	require.NoError(t, err)

	tbl, err := listings.Scrape(context.Background())
	require.NoError(t, err)
	require.Len(t, browser.requests, 1)
	assert.Equal(t, cfg.URL, browser.requests[0].URL)

	assert.Equal(t, []string{"Flat", "Location", "Price", "Area", FieldRooms}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, table.String("Flat Singel"), tbl.Row(0).Get("Flat"))
	assert.Equal(t, table.String(extract.NoData), tbl.Row(1).Get("Price"))
	assert.Equal(t, table.String(extract.NoData), tbl.Row(1).Get(FieldRooms))
}

func TestListingsRunChartsRooms(t *testing.T) {
	t.Parallel()

	h := newHarness()
	listings, err := NewListings(listingsConfig(t), &staticFetcher{body: readFixture(t, "listings.html")}, h.deps)
	require.NoError(t, err)

	tbl, err := listings.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	counts, err := tbl.Frequency(FieldRooms, table.FrequencyOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"3 rooms": 1, "2 rooms": 1, "NoData": 1}, counts.Map())

	_, ok := h.store.Get("run/listing-rooms.html")
	assert.True(t, ok)
	assert.Contains(t, h.out.String(), "Flat Overtoom")
}

func TestListingsMissingContainers(t *testing.T) {
	t.Parallel()

	page := []byte(`<html><body><h1>Access denied</h1></body></html>`)
	listings, err := NewListings(listingsConfig(t), &staticFetcher{body: page}, Deps{})
	require.NoError(t, err)

	_, err = listings.Scrape(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrParse))

	cfg := listingsConfig(t)
	cfg.RequireListings = false
	lenient, err := NewListings(cfg, &staticFetcher{body: page}, Deps{})
	require.NoError(t, err)
	tbl, err := lenient.Scrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Len(t, tbl.Columns(), 5)
}

func TestListingsFetchErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := fetcher.StatusError(fetcher.SourceHeadless, "https://example.com", 503)
	listings, err := NewListings(listingsConfig(t), &staticFetcher{err: boom}, Deps{})
	require.NoError(t, err)

	_, err = listings.Run(context.Background())
	assert.ErrorIs(t, err, fetcher.ErrFetch)
}

func TestMarkupFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.ListingsConfig{
		Container: config.SelectorConfig{Tag: "article", Class: "card"},
		Rules: []config.ListingRule{
			{Field: "Title", Tag: "h2"},
			{Field: "Rooms", Tag: "span", Class: "rooms", Match: "contains", Missing: "Nodata"},
			{Field: "Posted", Tag: "time", Optional: true},
		},
	}
	m, err := MarkupFromConfig(cfg)
	require.NoError(t, err)
	seq, err := m.Extract([]byte(`<article class="card"><h2>Loft</h2></article>`))
	require.NoError(t, err)
	for rec := range seq {
		assert.Equal(t, table.String("Loft"), rec.Get("Title"))
		assert.Equal(t, table.String("Nodata"), rec.Get("Rooms"))
		assert.True(t, rec.Get("Posted").IsNull())
	}

	cfg.Rules[0].Match = "regex"
	_, err = MarkupFromConfig(cfg)
	assert.Error(t, err)
}
