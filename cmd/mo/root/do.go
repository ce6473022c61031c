package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <id>",
		Short: "Complete a task and collect the rewards",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.CompleteTask(ctx, userFlag, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Replayed {
				fmt.Fprintf(out, "%s %s %s\n",
					ui.Muted.Render(ui.IconInfo+" Already done"),
					res.Task.Title,
					ui.Muted.Render(fmt.Sprintf("(originally +%d XP)", res.XPAwarded)))
				return nil
			}

			fmt.Fprintf(out, "%s %s %s %s\n",
				ui.Good.Render(ui.IconDone+" Completed"),
				ui.CategoryIcon(res.Task.Category),
				res.Task.Title,
				ui.Muted.Render(fmt.Sprintf("(+%d XP)", res.XPAwarded)))
			if res.LevelUp {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp, ui.Key.Render(fmt.Sprintf("You reached level %d!", res.NewLevel)))
			}
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d day(s)", ui.IconFire, res.CurrentStreak)))
			for _, a := range res.NewAchievements {
				fmt.Fprintf(out, "%s %s %s %s\n",
					ui.Warn.Render(ui.IconTrophy+" Achievement unlocked:"),
					a.Icon, a.Name, ui.Muted.Render(a.Description))
			}
			return nil
		},
	}

	return cmd
}
