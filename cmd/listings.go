package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/analysis"
	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/fetcher"
	"github.com/JakeFAU/webanalysis/internal/fetcher/headless"
)

// newBrowser builds the rendering fetcher. Tests swap it for a static one.
var newBrowser = func(cfg config.Config, logger *zap.Logger) (fetcher.Fetcher, error) {
	path, err := headless.LookupBrowser()
	if err != nil {
		logger.Warn("no browser found, listings fetch will fail", zap.Error(err))
		return headless.Noop{}, nil
	}
	return headless.NewChromedp(headless.Config{
		Headless:          cfg.Listings.Headless,
		UserAgent:         cfg.HTTP.UserAgent,
		NavigationTimeout: cfg.Listings.NavTimeout(),
		SettleDelay:       cfg.Listings.SettleDelay(),
		ExecPath:          path,
	}, logger)
}

// newListingsCmd creates the 'listings' command.
func newListingsCmd() *cobra.Command {
	var (
		url       string
		headful   bool
		settleSec int
	)
	cmd := &cobra.Command{
		Use:   "listings",
		Short: "Scrape rendered rental listings and chart them by rooms",
		Long: `Renders the configured search results page in headless Chrome, extracts
one row per listing with the configured selector rules and charts the
number of rooms.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()
			if cmd.Flags().Changed("url") {
				cfg.Listings.URL = url
			}
			if cmd.Flags().Changed("show-browser") {
				cfg.Listings.Headless = !headful
			}
			if cmd.Flags().Changed("settle") {
				cfg.Listings.SettleSeconds = settleSec
			}
			if err := cfg.ValidateListings(); err != nil {
				return err
			}

			logger := appInstance.GetLogger()
			browser, err := newBrowser(cfg, logger.Named("headless"))
			if err != nil {
				return fmt.Errorf("init browser: %w", err)
			}
			listings, err := analysis.NewListings(cfg.Listings, browser, pipelineDeps(appInstance))
			if err != nil {
				return err
			}
			if _, err := listings.Run(cmd.Context()); err != nil {
				return fmt.Errorf("listings: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "search results page to scrape (overrides listings.url)")
	cmd.Flags().BoolVar(&headful, "show-browser", false, "run Chrome with a visible window")
	cmd.Flags().IntVar(&settleSec, "settle", 0, "seconds to let the page render (overrides listings.settle_seconds)")
	return cmd
}
