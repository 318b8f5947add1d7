package cli

import (
	"github.com/spf13/cobra"

	"marketwatch/internal/app"
)

var (
	exportPNGPath   string
	exportCSVPath   string
	exportPair      string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current market as CSV and/or a pair's price history as PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			Pair:      exportPair,
			MaxPoints: exportMaxPoints,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG price-history chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV market data")
	exportCmd.Flags().StringVar(&exportPair, "pair", "", "Pair to chart, e.g. XBT-AUD")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum history points to chart (defaults to config)")
}
