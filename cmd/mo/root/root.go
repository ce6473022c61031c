package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"momentum/internal/ui"
)

const Version = "0.1.0"

var (
	cfgFile  string
	userFlag string
)

var rootCmd = &cobra.Command{
	Use:           "mo",
	Short:         "Momentum — gamified task completion tracker",
	Long:          "Momentum is a local-first task tracker that awards XP, levels, streaks and achievements for completed work.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default searches for momentum.yaml)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (default \"main\")")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoCmd(),
		newStartCmd(),
		newArchiveCmd(),
		newRestoreCmd(),
		newListCmd(),
		newBacklogCmd(),
		newStatusCmd(),
		newAchievementsCmd(),
		newStatsCmd(),
		newBoardCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
