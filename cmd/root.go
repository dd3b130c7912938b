// Package cmd defines the CLI commands for the webanalysis executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/webanalysis/internal/analysis"
	"github.com/JakeFAU/webanalysis/internal/app"
	"github.com/JakeFAU/webanalysis/internal/config"
	"github.com/JakeFAU/webanalysis/internal/logging"
	"github.com/JakeFAU/webanalysis/internal/present"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the services commands use. Tests inject their own.
type App interface {
	Close() error
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetPresenter() present.Presenter
	GetReporter() present.Reporter
	GetRunID() string
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(cfg config.Config) (App, error) {
	return app.NewApp(cfg)
}

// loadConfig is replaced in tests to avoid reading the developer's files.
var loadConfig = config.Load

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "webanalysis",
		Short: "Pull tickets, listings and sitemaps into tables and chart them.",
		Long: `webanalysis fetches data from three kinds of web sources, shapes it into
tables and renders frequency and cross-tab charts:

  tickets   ServiceNow incident table over the REST API
  listings  rendered rental listings scraped with headless Chrome
  sitemap   robots.txt sitemap discovery and change-frequency analysis

Settings come from webanalysis.yaml and WEBANALYSIS_* environment variables.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			appInstance, err := newApp(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default ./webanalysis.yaml or $HOME/.webanalysis/webanalysis.yaml)")

	cmd.AddCommand(newTicketsCmd(), newListingsCmd(), newSitemapCmd())
	return cmd
}

// execute runs root and closes the App even when the command fails.
func execute(ctx context.Context, root *cobra.Command) error {
	executed, err := root.ExecuteContextC(ctx)
	if executed != nil && executed.Context() != nil {
		if appInstance, ok := executed.Context().Value(appKey).(App); ok && appInstance != nil {
			if cerr := appInstance.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
	}
	return err
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, newRootCmd()); err != nil {
		stop()
		logger, closer, lerr := logging.New(logging.Config{})
		if lerr != nil {
			fmt.Fprintf(os.Stderr, "command failed: %v\n", err)
			os.Exit(1)
		}
		if closer != nil {
			_ = closer.Close()
		}
		logger.Fatal("command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

func pipelineDeps(a App) analysis.Deps {
	return analysis.Deps{
		Presenter: a.GetPresenter(),
		Reporter:  a.GetReporter(),
		HeadRows:  a.GetConfig().Output.HeadRows,
		Logger:    a.GetLogger(),
	}
}
