package cli

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"healthdash/internal/analysis"
	"healthdash/internal/service"
	"healthdash/internal/store"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		days     int
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull Fitbit data into the local database",
		Long: `Fetch activity, sleep, heart and recovery data one day at a time and
store it locally. Alerts are evaluated after every successful run.

EXAMPLES:

  $ healthdash sync                              # Last 7 days
  $ healthdash sync --days 30
  $ healthdash sync --from 2024-01-01 --to 2024-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, err := a.syncService()
			if err != nil {
				return err
			}

			rangeFrom, rangeTo := service.AutoSyncRange(a.now(), days)
			trigger := service.TriggerManual
			if from != "" || to != "" {
				if rangeFrom, rangeTo, err = parseRange(from, to, a.now()); err != nil {
					return err
				}
			}

			progress := make(chan service.SyncProgress)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for p := range progress {
					if p.Warning != "" {
						warn.Fprintf(a.out, "  ! %s\n", p.Warning)
						continue
					}
					faint.Fprintf(a.out, "  [%d/%d] %s (attempt %d)\n", p.Completed, p.Total, p.Day, p.Attempt)
				}
			}()

			result, err := syncer.SyncRange(cmd.Context(), rangeFrom, rangeTo, trigger, progress)
			close(progress)
			wg.Wait()
			if err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			statusColor(result.Status).Fprintln(a.out, result.Message())
			printRow(a.out, "Range", result.From+" → "+result.To)
			printRow(a.out, "Status", result.Status)
			printRow(a.out, "Attempts", fmt.Sprint(result.Attempts))
			printRow(a.out, "Alerts raised", fmt.Sprint(result.AlertsCreated))
			printRow(a.out, "API budget left", fmt.Sprintf("%d requests", syncer.RateLimitRemaining()))
			for _, w := range result.Warnings {
				warn.Fprintf(a.out, "  ! %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "number of days ending today")
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD), defaults to today")
	cmd.MarkFlagsMutuallyExclusive("days", "from")

	cmd.AddCommand(newSyncStatusCmd(a))
	return cmd
}

// parseRange resolves --from/--to, defaulting to to=today and from=to
func parseRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	end := analysis.Today(now)
	if to != "" {
		d, err := analysis.ParseDayKey(to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q, want YYYY-MM-DD", to)
		}
		end = d
	}
	start := end
	if from != "" {
		d, err := analysis.ParseDayKey(from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q, want YYYY-MM-DD", from)
		}
		start = d
	}
	return start, end, nil
}

func newSyncStatusCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last successful sync and recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DemoMode {
				return errDemoMode
			}
			db, err := a.store()
			if err != nil {
				return err
			}

			printHeading(a.out, "Sync status")
			last, err := db.GetSyncState(store.SyncStateLastSuccess)
			if err != nil {
				return err
			}
			if t, perr := time.Parse(time.RFC3339, last); perr == nil {
				printRow(a.out, "Last success", humanize.Time(t))
			} else {
				printRow(a.out, "Last success", faint.Sprint("never"))
			}

			runs, err := db.ListSyncRuns(cmd.Context(), a.cfg.User.ID, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				faint.Fprintln(a.out, "\n  No sync runs yet. Run `healthdash sync`.")
				return nil
			}

			fmt.Fprintln(a.out)
			for _, r := range runs {
				status := statusColor(r.Status).Sprintf("%-8s", r.Status)
				fmt.Fprintf(a.out, "  %s %s  %s → %s  %d day(s), %s\n",
					status, r.Trigger, r.FromDate, r.ToDate, r.SyncedDays,
					faint.Sprint(humanize.Time(r.StartedAt)))
				if r.LastError != "" {
					bad.Fprintf(a.out, "           %s\n", r.LastError)
				}
				if r.Warnings != "" {
					warn.Fprintf(a.out, "           %s\n", strings.ReplaceAll(r.Warnings, "\n", "; "))
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	return cmd
}
