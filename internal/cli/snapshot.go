package cli

import (
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch currencies and markets once and print the table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Snapshot(cmd.Context())
	},
}

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "Print currency metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Currencies(cmd.Context())
	},
}
