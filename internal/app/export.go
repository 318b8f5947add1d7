package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"marketwatch/internal/marketdata"
)

// Export fetches the market once and writes it as CSV and/or a PNG chart of
// one pair's price history.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.PNGPath != "" && opts.Pair == "" {
		return errors.New("--pair is required with --png")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	st := a.newStore(nil, nil)
	defer st.Close()

	st.LoadMarket(ctx)
	snap := st.Snapshot()
	if snap.Error != "" {
		return fmt.Errorf("load market: %s", snap.Error)
	}
	if len(snap.Market) == 0 {
		a.Logger.Info().Msg("market is empty; nothing to export")
		return nil
	}

	if opts.CSVPath != "" {
		if err := writeMarketCSV(opts.CSVPath, snap.Market); err != nil {
			return err
		}
		a.Logger.Info().Int("markets", len(snap.Market)).Str("path", opts.CSVPath).Msg("market exported")
	}

	if opts.PNGPath != "" {
		pair := normalizePair(opts.Pair)
		item, ok := snap.Find(pair)
		if !ok {
			return fmt.Errorf("pair %s not found", pair)
		}
		if len(item.History) < 2 {
			return fmt.Errorf("pair %s has too little price history to chart", pair)
		}
		history := downsample(item.History, opts.MaxPoints)
		if err := writeHistoryPNG(opts.PNGPath, item, history); err != nil {
			return err
		}
		a.Logger.Info().Str("pair", pair).Int("total", len(item.History)).Int("exported", len(history)).Msg("history chart exported")
	}

	return nil
}

func downsample(values []float64, max int) []float64 {
	if max <= 1 || len(values) <= max {
		return values
	}

	result := make([]float64, 0, max)
	step := float64(len(values)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(values) {
			idx = len(values) - 1
		}
		result = append(result, values[idx])
	}
	return result
}

func writeMarketCSV(path string, items []marketdata.MarketItem) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"pair", "base", "quote", "last", "bid", "ask", "change_pct", "change_amt", "change_dir", "vol_base", "vol_quote", "low_24h", "high_24h", "history_points"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, m := range items {
		record := []string{
			m.Pair,
			m.Base,
			m.Quote,
			csvFloat(m.PriceLast),
			csvFloat(m.Bid),
			csvFloat(m.Ask),
			csvFloat(m.ChangePct),
			csvFloat(m.ChangeAmt),
			string(m.ChangeDir),
			csvFloat(m.VolBase),
			csvFloat(m.VolQuote),
			csvFloat(m.Low24h),
			csvFloat(m.High24h),
			strconv.Itoa(len(m.History)),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func writeHistoryPNG(path string, item marketdata.MarketItem, history []float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]float64, len(history))
	for i := range history {
		x[i] = float64(i)
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.8g")
	}
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    item.Pair,
			XValues: x,
			YValues: history,
		},
	}
	if item.Low24h != nil && item.High24h != nil {
		series = append(series,
			flatSeries("24h low", x, *item.Low24h),
			flatSeries("24h high", x, *item.High24h),
		)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s price history", item.Pair),
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name: "Sample",
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Price (%s)", item.Quote),
			ValueFormatter: priceFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func flatSeries(name string, x []float64, v float64) chart.ContinuousSeries {
	y := make([]float64, len(x))
	for i := range y {
		y[i] = v
	}
	return chart.ContinuousSeries{
		Name:    name,
		XValues: x,
		YValues: y,
		Style: chart.Style{
			StrokeDashArray: []float64{5, 5},
		},
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
