package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"momentum/internal/storage"
	"momentum/internal/ui"
)

func newBacklogCmd() *cobra.Command {
	var page int
	var limit int
	var search string

	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "Browse completed tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := svc.Backlog(ctx, userFlag, page, limit, search)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDone, "Backlog"))
			if len(res.Tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing completed yet)"))
				return nil
			}
			for _, t := range res.Tasks {
				when := ""
				if t.CompletedAt != nil {
					when = t.CompletedAt.Format(storage.DateLayout)
				}
				fmt.Fprintf(out, "- %s %s %s\n",
					ui.CategoryIcon(t.Category),
					t.Title,
					ui.Muted.Render(fmt.Sprintf("(%s, +%d XP)", when, t.XPValue)))
			}
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("page %d/%d (%d total)", res.Page, res.TotalPages, res.TotalCount)))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Tasks per page")
	cmd.Flags().StringVar(&search, "search", "", "Filter by title/description substring")

	return cmd
}
