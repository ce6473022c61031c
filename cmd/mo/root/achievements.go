package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/storage"
	"momentum/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "Show unlocked achievements and progress toward the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			view, err := svc.GetAchievements(ctx, userFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Achievements"))
			if len(view.Unlocked) > 0 {
				fmt.Fprintln(out, ui.H2.Render("Unlocked"))
				for _, a := range view.Unlocked {
					when := ""
					if a.UnlockedAt != nil {
						when = " " + ui.Muted.Render("("+a.UnlockedAt.Format(storage.DateLayout)+")")
					}
					fmt.Fprintf(out, "- %s %s %s%s\n", a.Icon, ui.Key.Render(a.Name), ui.Muted.Render(a.Description), when)
				}
				fmt.Fprintln(out, "")
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconLock+" Locked"))
			if len(view.Locked) == 0 {
				fmt.Fprintln(out, ui.Good.Render("All achievements unlocked!"))
				return nil
			}
			for _, a := range view.Locked {
				fmt.Fprintf(out, "- %s %s %s %s\n",
					a.Icon,
					ui.Key.Render(a.Name),
					ui.ProgressBar(a.Current, a.Target, 14),
					ui.Muted.Render(fmt.Sprintf("%d/%d", a.Current, a.Target)))
			}
			return nil
		},
	}

	return cmd
}
