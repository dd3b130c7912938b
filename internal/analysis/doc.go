// Package analysis wires fetchers, extractors, the table shaper and
// presenters into the three pipelines: ServiceNow incident tickets, rendered
// rental listings and robots.txt/sitemap discovery.
//
// Each pipeline runs synchronously. Every exported operation that fetches
// does so itself, so operations can be invoked independently; the Run
// methods fetch once and feed every analysis from the same table.
package analysis

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/present"
)

// Pipeline names used for logging and metrics.
const (
	PipelineTickets  = "tickets"
	PipelineListings = "listings"
	PipelineSitemap  = "sitemap"
)

// Deps are the collaborators every pipeline shares.
type Deps struct {
	Presenter present.Presenter
	Reporter  present.Reporter
	// HeadRows bounds the preview printed by Reporter.Table.
	HeadRows int
	Logger   *zap.Logger
}

func (d Deps) withDefaults(name string) Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	d.Logger = d.Logger.Named(name)
	if d.Presenter == nil {
		d.Presenter = present.Multi{}
	}
	if d.Reporter == nil {
		d.Reporter = present.Discard{}
	}
	if d.HeadRows <= 0 {
		d.HeadRows = 5
	}
	return d
}
