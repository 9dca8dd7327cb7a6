package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthdash/internal/scheduler"
)

func newDaemonCmd(a *app) *cobra.Command {
	var (
		schedule string
		runNow   bool
	)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Auto-sync on a schedule until interrupted",
		Long: `Run an auto sync of the last sync.autoSyncDays days on a cron schedule.
Alerts are evaluated after every successful run.

The schedule uses six fields with seconds first, or a descriptor:

  $ healthdash daemon                                # sync.schedule from config
  $ healthdash daemon --schedule "0 0 */6 * * *"     # every six hours
  $ healthdash daemon --schedule "@every 30m" --run-now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schedule == "" {
				schedule = a.cfg.Sync.Schedule
			}
			if err := scheduler.ValidateSpec(schedule); err != nil {
				return err
			}

			syncer, err := a.syncService()
			if err != nil {
				return err
			}
			s := scheduler.New(syncer, a.cfg.Sync.AutoSyncDays, a.logger)

			ctx := cmd.Context()
			if runNow {
				if _, err := s.RunOnce(ctx); err != nil {
					a.logger.Error("initial sync failed", "error", err)
				}
			}

			fmt.Fprintf(a.out, "Syncing the last %d day(s) on %q. Press Ctrl+C to stop.\n", a.cfg.Sync.AutoSyncDays, schedule)
			return s.Run(ctx, schedule)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule, defaults to sync.schedule")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "sync once before waiting for the schedule")
	return cmd
}
