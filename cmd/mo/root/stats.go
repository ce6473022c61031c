package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/engine"
	"momentum/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show productivity stats over a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.GetStats(ctx, userFlag, engine.StatsPeriod(period))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconChart, fmt.Sprintf("Stats (%s)", res.Period)))
			fmt.Fprintln(out, ui.LabelValue("Tasks completed", res.TotalTasks))
			fmt.Fprintf(out, "- %s quick wins: %d\n", ui.IconBolt, res.QuickWins)
			fmt.Fprintf(out, "- %s deep work: %d\n", ui.IconBrain, res.DeepWork)
			fmt.Fprintln(out, ui.LabelValue("XP earned", res.XPEarned))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%d (best %d)", res.CurrentStreak, res.LongestStreak)))
			fmt.Fprintln(out, ui.LabelValue("Avg tasks/day", fmt.Sprintf("%.1f", res.AvgTasksPerDay)))
			fmt.Fprintln(out, ui.LabelValue("Completion rate", fmt.Sprintf("%.1f%%", res.CompletionRate)))
			if len(res.Daily) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render("Daily"))
				for _, d := range res.Daily {
					fmt.Fprintf(out, "- %s: %d task(s), %d XP\n", d.Date, d.TasksCompleted, d.XPEarned)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "week", "Period (week|month|all)")

	return cmd
}
