package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the command tree against os.Args
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// NewRootCmd builds the full command tree writing to out and logging to errOut
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "healthdash",
		Short: "Personal health dashboard for Fitbit data",
		Long: `healthdash syncs your Fitbit activity, sleep and heart data into a local
database and turns it into coaching insights.

QUICK START:

  $ healthdash login                  # Connect your Fitbit account
  $ healthdash sync --days 30         # Pull the last 30 days
  $ healthdash overview               # Today at a glance
  $ healthdash insights sleep         # Sleep score, debt and consistency
  $ healthdash alerts evaluate        # Run the alert rules for today
  $ healthdash                        # Interactive dashboard

DEMO MODE:

  Every read command accepts --demo (or HEALTHDASH_DEMO_MODE=true) and
  serves deterministic synthetic data without touching Fitbit or the database.

CONFIGURATION:

  ~/.healthdash/config.json, overridden by a .env file and HEALTHDASH_*
  environment variables such as HEALTHDASH_FITBIT_CLIENT_ID.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.BoolVar(&a.flags.demo, "demo", false, "serve synthetic data instead of your Fitbit data")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&a.flags.date, "date", "", "evaluate as of this day (YYYY-MM-DD) instead of today")
	flags.StringVar(&a.flags.dbPath, "db", "", "database path (default ~/.healthdash/data.db)")

	root.AddCommand(
		newTUICmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newSyncCmd(a),
		newOverviewCmd(a),
		newDayCmd(a),
		newCalendarCmd(a),
		newInsightsCmd(a),
		newAlertsCmd(a),
		newGoalsCmd(a),
		newMCPCmd(a),
		newDaemonCmd(a),
	)
	return root
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol server so AI assistants can read your
dashboard. The server communicates over stdin/stdout.

  {
    "mcpServers": {
      "healthdash": { "command": "healthdash", "args": ["mcp"] }
    }
  }

AVAILABLE TOOLS:

  get_overview     Today's dashboard
  get_day          One day in full
  get_calendar     A month of daily metrics
  get_insights     steps, sleep, conditioning, rhr, recovery, trends, correlations, goals
  evaluate_alerts  Run the alert rules for today
  list_alerts      Recent alerts
  resolve_alert    Mark an alert resolved`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := a.mcpServer()
			if err != nil {
				return err
			}
			return server.Serve(cmd.Context())
		},
	}
}
