package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	simulatePair   string
	simulateChange float64
	simulateLast   float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一次行情异动并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !strings.Contains(simulatePair, "-") {
			return errors.New("--pair 格式应为 BASE-QUOTE")
		}
		if simulateChange == 0 {
			return errors.New("--change 不能为 0")
		}
		return getApp().SimulateAlert(cmd.Context(), simulatePair, simulateChange, simulateLast)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulatePair, "pair", "XBT-AUD", "交易对 BASE-QUOTE")
	simulateCmd.Flags().Float64Var(&simulateChange, "change", 0, "24h 涨跌幅 (%)，负数表示下跌")
	simulateCmd.Flags().Float64Var(&simulateLast, "last", 0, "最新价 (可选)")
}
