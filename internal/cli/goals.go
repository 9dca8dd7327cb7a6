package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"healthdash/internal/analysis"
	"healthdash/internal/store"
)

func newGoalsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Weekly goal progress and targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ins, _, err := a.readers()
			if err != nil {
				return err
			}
			g, err := ins.Goals(cmd.Context(), a.now())
			if err != nil {
				return err
			}

			printHeading(a.out, "Weekly goals")
			for _, p := range g.Progress {
				printRow(a.out, p.Label, fmt.Sprintf("%s / %s %s  %s  %s left",
					trimFloat(p.Current), trimFloat(p.Target), p.Unit,
					scoreColor(p.Percent).Sprintf("%3d%%", p.Percent), trimFloat(p.Remaining)))
			}
			for _, n := range g.Nudges {
				faint.Fprintf(a.out, "  • %s\n", n)
			}
			faint.Fprintf(a.out, "\n  Sleep score mode: %s\n", g.Goals.SleepScoreMode)
			return nil
		},
	}
	cmd.AddCommand(newGoalsSetCmd(a))
	return cmd
}

func newGoalsSetCmd(a *app) *cobra.Command {
	var (
		g    store.WeeklyGoals
		mode string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change weekly targets",
		Long: `Change one or more weekly targets. Unset flags keep their current value.

  $ healthdash goals set --zone2-minutes 150 --sleep-hours 7.5
  $ healthdash goals set --sleep-score-mode recovery`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.queryService()
			if err != nil {
				return err
			}
			current, err := q.WeeklyGoals(cmd.Context())
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			next := *current
			if flags.Changed("zone2-minutes") {
				next.Zone2TargetMinutes = g.Zone2TargetMinutes
			}
			if flags.Changed("sleep-hours") {
				next.AvgSleepTargetHours = g.AvgSleepTargetHours
			}
			if flags.Changed("steps") {
				next.AvgStepsTarget = g.AvgStepsTarget
			}
			if flags.Changed("sleep-score-mode") {
				// UpdateGoals rejects anything but fitbit or recovery
				next.SleepScoreMode = mode
			}
			if err := q.UpdateGoals(cmd.Context(), next); err != nil {
				return err
			}

			good.Fprintln(a.out, "Weekly goals updated.")
			printRow(a.out, "Zone 2", fmt.Sprintf("%d min", next.Zone2TargetMinutes))
			printRow(a.out, "Avg sleep", fmt.Sprintf("%s h", trimFloat(next.AvgSleepTargetHours)))
			printRow(a.out, "Avg steps", comma(next.AvgStepsTarget))
			printRow(a.out, "Sleep score mode", next.SleepScoreMode)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&g.Zone2TargetMinutes, "zone2-minutes", 0, "weekly zone 2 minutes")
	flags.Float64Var(&g.AvgSleepTargetHours, "sleep-hours", 0, "average nightly sleep in hours")
	flags.IntVar(&g.AvgStepsTarget, "steps", 0, "average daily steps")
	flags.StringVar(&mode, "sleep-score-mode", string(analysis.ModeFitbit),
		fmt.Sprintf("%s or %s", analysis.ModeFitbit, analysis.ModeRecovery))
	return cmd
}
