package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/engine"
	"momentum/internal/ui"
)

func newAddCmd() *cobra.Command {
	var category string
	var priority int
	var desc string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
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

			cat, err := engine.ParseCategory(category)
			if err != nil {
				return err
			}
			var pri *int
			if cmd.Flags().Changed("priority") {
				pri = &priority
			}

			t, err := svc.CreateTask(ctx, engine.CreateTaskInput{
				UserID:      userFlag,
				Title:       args[0],
				Description: desc,
				Category:    cat,
				Priority:    pri,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"),
				ui.CategoryIcon(t.Category),
				t.Title,
				ui.Muted.Render(fmt.Sprintf("(worth %d XP, id %s)", t.XPValue, t.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "quick_win", "Category (quick_win|deep_work)")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Priority (1-5, 1 is highest)")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")

	return cmd
}
