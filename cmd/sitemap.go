package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/analysis"
	collyfetcher "github.com/JakeFAU/webanalysis/internal/fetcher/colly"
)

// newSitemapCmd creates the 'sitemap' command.
func newSitemapCmd() *cobra.Command {
	var (
		baseURL string
		raw     bool
	)
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Collect a site's sitemaps and chart their change frequency",
		Long: `Reads robots.txt from the base URL, fetches every sitemap it lists,
follows sitemap indexes when enabled and charts Url_Change_frequency.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := appInstance.GetConfig()
			if cmd.Flags().Changed("base-url") {
				cfg.Sitemap.BaseURL = baseURL
			}
			if cmd.Flags().Changed("raw-elements") {
				cfg.Sitemap.RawElements = raw
			}
			if err := cfg.ValidateSitemap(); err != nil {
				return err
			}

			logger := appInstance.GetLogger()
			client := collyfetcher.New(collyfetcher.Config{
				UserAgent:   cfg.HTTP.UserAgent,
				Timeout:     cfg.HTTP.Timeout(),
				MaxBodySize: cfg.HTTP.MaxBodyBytes,
			}, logger.Named("http"))
			sitemap := analysis.NewSitemap(cfg.Sitemap, client, pipelineDeps(appInstance))

			tbl, err := sitemap.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("sitemap: %w", err)
			}
			if _, err := sitemap.Analyze(cmd.Context(), tbl); err != nil {
				return fmt.Errorf("sitemap: %w", err)
			}
			logger.Info("sitemap analysis complete", zap.Int("entries", tbl.Len()))
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "site root holding robots.txt (overrides sitemap.base_url)")
	cmd.Flags().BoolVar(&raw, "raw-elements", false, "keep lastmod and changefreq as serialized XML")
	return cmd
}
