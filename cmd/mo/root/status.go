package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP and streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.GetProfile(ctx, userFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Profile"))
			fmt.Fprintln(out, ui.LabelValue("Level", p.CurrentLevel))
			fmt.Fprintf(out, "%s %s %s\n",
				ui.Key.Render("Progress:"),
				ui.ProgressBar(p.XPInLevel, p.XPInLevel+p.XPToNextLevel, 30),
				ui.Muted.Render(fmt.Sprintf("%d XP in level, %d to next", p.XPInLevel, p.XPToNextLevel)))
			fmt.Fprintln(out, ui.LabelValue("Total XP", p.TotalXP))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d day(s), best %d", ui.IconFire, p.CurrentStreak, p.LongestStreak)))
			return nil
		},
	}

	return cmd
}
