package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/engine"
	"momentum/internal/ui"
)

func newListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := svc.ListTasks(ctx, userFlag, engine.Status(status))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Tasks"))
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none; add one with `mo add`)"))
				return nil
			}
			for _, t := range tasks {
				fmt.Fprintf(out, "- %s %s [%s] %s\n",
					ui.CategoryIcon(t.Category),
					t.Title,
					ui.StatusText(t.Status),
					ui.Muted.Render(fmt.Sprintf("xp=%d id=%s", t.XPValue, t.ID)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (todo|in_progress|done)")

	return cmd
}
