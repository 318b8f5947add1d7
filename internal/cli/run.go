package cli

import (
	"github.com/spf13/cobra"

	"marketwatch/internal/app"
)

var (
	runQuiet bool
	runClear bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the market and render every update (SIGUSR1 pauses/resumes)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Run(cmd.Context(), app.RunOptions{Quiet: runQuiet, Clear: runClear})
	},
}

func init() {
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Do not render the market table")
	runCmd.Flags().BoolVar(&runClear, "clear", false, "Clear the terminal before each render")
}
