package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/webanalysis/internal/analysis"
	"github.com/JakeFAU/webanalysis/internal/fetcher/rest"
)

// newTicketsCmd creates the 'tickets' command and one subcommand per analysis.
// Without a subcommand every analysis runs from a single fetch.
func newTicketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Analyze ServiceNow incident tickets",
		Long: `Fetches the configured ServiceNow table over the REST API and runs the
status, contact type and root cause by priority analyses.`,
		RunE: ticketsRunner(func(ctx context.Context, t *analysis.Tickets) error {
			return t.Run(ctx)
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "columns",
			Short: "Print the configured ticket columns",
			RunE: ticketsRunner(func(ctx context.Context, t *analysis.Tickets) error {
				_, err := t.Columns(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Chart ticket counts by state",
			RunE: ticketsRunner(func(ctx context.Context, t *analysis.Tickets) error {
				_, err := t.StatusAnalysis(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "contact",
			Short: "Chart the share of tickets per contact type",
			RunE: ticketsRunner(func(ctx context.Context, t *analysis.Tickets) error {
				_, err := t.ContactTypeAnalysis(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "priority",
			Short: "Chart root cause by priority",
			RunE: ticketsRunner(func(ctx context.Context, t *analysis.Tickets) error {
				_, err := t.PriorityAnalysis(ctx)
				return err
			}),
		},
		&cobra.Command{
			Use:   "all",
			Short: "Run every ticket analysis from one fetch",
			RunE: ticketsRunner(func(ctx context.Context, t *analysis.Tickets) error {
				return t.Run(ctx)
			}),
		},
	)
	return cmd
}

func ticketsRunner(run func(context.Context, *analysis.Tickets) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		appInstance, err := resolveApp(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.GetConfig()
		if err := cfg.ValidateTickets(); err != nil {
			return err
		}
		client := rest.New(rest.Config{
			UserAgent: cfg.HTTP.UserAgent,
			Timeout:   cfg.HTTP.Timeout(),
		}, appInstance.GetLogger().Named("rest"))

		tickets := analysis.NewTickets(cfg.Tickets, client, pipelineDeps(appInstance))
		if err := run(cmd.Context(), tickets); err != nil {
			return fmt.Errorf("tickets %s: %w", cmd.Name(), err)
		}
		return nil
	}
}
