package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"marketwatch/internal/format"
	"marketwatch/internal/marketdata"
	"marketwatch/internal/store"
)

// clearScreen homes the cursor and erases the terminal.
const clearScreen = "\033[H\033[2J"

// TableRenderer writes snapshots as an aligned table.
type TableRenderer struct {
	Out   io.Writer
	Clear bool

	lastVersion uint64
}

// Render implements service.Renderer. Snapshots that only toggle the loading
// flag are skipped to avoid flicker.
func (r *TableRenderer) Render(snap store.Snapshot) error {
	if snap.LoadingMarket && r.lastVersion != 0 {
		return nil
	}
	r.lastVersion = snap.Version
	if r.Clear {
		if _, err := io.WriteString(r.Out, clearScreen); err != nil {
			return err
		}
	}
	return writeMarketTable(r.Out, snap)
}

func writeMarketTable(out io.Writer, snap store.Snapshot) error {
	fmt.Fprintln(out, statusLine(snap))

	if len(snap.Market) == 0 {
		fmt.Fprintln(out, "no markets")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(writer, "Pair\tLast\tBid\tAsk\t24h %\t24h Low\t24h High\tVol (base)\tVol (quote)\t")
	for _, m := range snap.Market {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			m.Pair,
			format.Price(m.PriceLast),
			format.Price(m.Bid),
			format.Price(m.Ask),
			format.Pct(m.ChangePct),
			format.Price(m.Low24h),
			format.Price(m.High24h),
			format.Vol(m.VolBase),
			format.Vol(m.VolQuote),
		)
	}
	return writer.Flush()
}

func statusLine(snap store.Snapshot) string {
	parts := make([]string, 0, 4)
	if snap.LastUpdated.IsZero() {
		parts = append(parts, "updated never")
	} else {
		parts = append(parts, "updated "+snap.LastUpdated.Local().Format(time.TimeOnly))
	}
	switch {
	case snap.IsPolling && snap.NextDelay > 0:
		parts = append(parts, fmt.Sprintf("polling every %s (next in %s)", snap.Interval, snap.NextDelay))
	case snap.IsPolling:
		parts = append(parts, fmt.Sprintf("polling every %s", snap.Interval))
	default:
		parts = append(parts, snap.State.String())
	}
	if snap.Failures > 0 {
		parts = append(parts, fmt.Sprintf("%d consecutive failures", snap.Failures))
	}
	if snap.Error != "" {
		parts = append(parts, "error: "+sanitizeInline(snap.Error))
	}
	return strings.Join(parts, " | ")
}

// Snapshot loads currencies and markets once and prints the market table.
func (a *App) Snapshot(ctx context.Context) error {
	st := a.newStore(nil, nil)
	defer st.Close()

	// store actions report failures through the snapshot, not return values
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		st.LoadCurrencies(ctx)
	}()
	go func() {
		defer wg.Done()
		st.LoadMarket(ctx)
	}()
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := st.Snapshot()
	if err := writeMarketTable(a.Out, snap); err != nil {
		return err
	}
	if snap.Error != "" {
		return fmt.Errorf("refresh failed: %s", snap.Error)
	}
	return nil
}

// Currencies prints currency metadata.
func (a *App) Currencies(ctx context.Context) error {
	st := a.newStore(nil, nil)
	defer st.Close()

	st.LoadCurrencies(ctx)
	snap := st.Snapshot()
	if snap.Error != "" {
		return fmt.Errorf("load currencies: %s", snap.Error)
	}
	return writeCurrencyTable(a.Out, snap.Currencies)
}

func writeCurrencyTable(out io.Writer, currencies []marketdata.CurrencyMeta) error {
	if len(currencies) == 0 {
		fmt.Fprintln(out, "no currencies found")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Code\tTicker\tType\tDecimals\tSort\tIcon")
	for _, c := range currencies {
		decimals := "-"
		if c.Decimals != nil {
			decimals = strconv.Itoa(*c.Decimals)
		}
		sortOrder := "-"
		if c.SortOrder != nil {
			sortOrder = strconv.FormatFloat(*c.SortOrder, 'f', -1, 64)
		}
		icon := "no"
		if c.IconDataURL != "" {
			icon = "yes"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Code, orDash(c.Ticker), orDash(c.Type), decimals, sortOrder, icon)
	}
	return writer.Flush()
}

// History prints recorded ticks of one pair.
func (a *App) History(ctx context.Context, opts HistoryOptions) error {
	recorder, closeStorage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	if recorder == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStorage != nil {
		defer closeStorage()
	}

	pair := normalizePair(opts.Pair)
	ticks, err := recorder.ListRecentTicks(ctx, pair, opts.Limit)
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		fmt.Fprintf(a.Out, "no ticks recorded for %s\n", pair)
		return nil
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tLast\tBid\tAsk\t24h %\tVol (base)")
	for _, tick := range ticks {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			tick.ObservedAt.UTC().Format(time.RFC3339),
			formatDecimal(tick.PriceLast),
			formatDecimal(tick.Bid),
			formatDecimal(tick.Ask),
			formatDecimal(tick.ChangePct),
			formatDecimal(tick.VolBase),
		)
	}
	return writer.Flush()
}

func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return format.Missing
	}
	return d.String()
}

func normalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
