package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketwatch/internal/alerting"
	"marketwatch/internal/config"
	"marketwatch/internal/marketdata"
	"marketwatch/internal/storage"
	"marketwatch/internal/store"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alerting.Notification
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
	return n.err
}

type memoryTicks struct {
	batches [][]storage.Tick
}

func (m *memoryTicks) InsertTicks(_ context.Context, ticks []storage.Tick) error {
	m.batches = append(m.batches, ticks)
	return nil
}

func (m *memoryTicks) ListRecentTicks(context.Context, string, int) ([]storage.Tick, error) {
	return nil, nil
}

func (m *memoryTicks) CountTicks(context.Context) (int64, error) {
	return int64(len(m.batches)), nil
}

type memoryAlerts struct {
	records []storage.AlertRecord
}

func (m *memoryAlerts) InsertAlert(_ context.Context, rec storage.AlertRecord) (storage.AlertRecord, error) {
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memoryAlerts) ListRecentAlerts(context.Context, int) ([]storage.AlertRecord, error) {
	return m.records, nil
}

type countingRenderer struct{ calls int }

func (r *countingRenderer) Render(store.Snapshot) error {
	r.calls++
	return nil
}

func f(v float64) *float64 { return &v }

func testConfig() *config.Config {
	return &config.Config{
		Polling: config.PollingConfig{Interval: 5 * time.Second, MaxBackoff: time.Minute},
		Alerting: config.AlertingConfig{
			Enabled:      true,
			ThresholdPct: 5,
			Cooldown:     30 * time.Minute,
		},
	}
}

func movers() []marketdata.MarketItem {
	return []marketdata.MarketItem{
		{Pair: "XBT-AUD", Base: "XBT", Quote: "AUD", PriceLast: f(153263.48), ChangePct: f(-6.5), ChangeDir: marketdata.ChangeDown},
		{Pair: "ETH-AUD", Base: "ETH", Quote: "AUD", ChangePct: f(1.2), ChangeDir: marketdata.ChangeUp},
		{Pair: "SOL-AUD", Base: "SOL", Quote: "AUD", ChangePct: f(5), ChangeDir: marketdata.ChangeUp},
		{Pair: "USDC-AUD", Base: "USDC", Quote: "AUD"},
	}
}

func TestEvaluateMoversThresholdAndCooldown(t *testing.T) {
	clock := clockwork.NewFakeClock()
	notifier := &recordingNotifier{}
	alerts := &memoryAlerts{}
	svc := New(testConfig(), nil, Deps{Notifier: notifier, Alerts: alerts, Clock: clock}, zerolog.Nop())

	sent := svc.EvaluateMovers(context.Background(), clock.Now(), movers())
	require.Equal(t, 2, sent)
	require.Len(t, notifier.notes, 2)
	assert.Equal(t, "XBT-AUD", notifier.notes[0].Pair)
	assert.Equal(t, "down", notifier.notes[0].Direction)
	require.NotNil(t, notifier.notes[0].PriceLast)
	assert.Equal(t, "153263.48", notifier.notes[0].PriceLast.String())
	assert.Equal(t, "SOL-AUD", notifier.notes[1].Pair)
	assert.Equal(t, "up", notifier.notes[1].Direction)
	assert.Len(t, alerts.records, 2)

	clock.Advance(10 * time.Minute)
	assert.Zero(t, svc.EvaluateMovers(context.Background(), clock.Now(), movers()), "cooldown suppresses repeats")

	clock.Advance(25 * time.Minute)
	assert.Equal(t, 2, svc.EvaluateMovers(context.Background(), clock.Now(), movers()))
}

func TestEvaluateMoversPairFilterAndDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Alerting.Pairs = []string{" sol-aud "}
	notifier := &recordingNotifier{}
	svc := New(cfg, nil, Deps{Notifier: notifier, Clock: clockwork.NewFakeClock()}, zerolog.Nop())
	assert.Equal(t, 1, svc.EvaluateMovers(context.Background(), time.Now(), movers()))
	assert.Equal(t, "SOL-AUD", notifier.notes[0].Pair)

	cfg = testConfig()
	cfg.Alerting.Enabled = false
	svc = New(cfg, nil, Deps{Notifier: notifier}, zerolog.Nop())
	assert.Zero(t, svc.EvaluateMovers(context.Background(), time.Now(), movers()))
}

func TestEvaluateMoversNotifyFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	svc := New(testConfig(), nil, Deps{Notifier: notifier, Clock: clockwork.NewFakeClock()}, zerolog.Nop())
	assert.Zero(t, svc.EvaluateMovers(context.Background(), time.Now(), movers()))
	assert.Len(t, notifier.notes, 2, "each mover is still attempted")
}

func TestHandleSnapshotRecordsOncePerRefresh(t *testing.T) {
	ticks := &memoryTicks{}
	renderer := &countingRenderer{}
	cfg := testConfig()
	cfg.Alerting.Enabled = false
	svc := New(cfg, nil, Deps{Ticks: ticks, Renderer: renderer}, zerolog.Nop())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.HandleSnapshot(context.Background(), store.Snapshot{LoadingMarket: true})
	svc.HandleSnapshot(context.Background(), store.Snapshot{Market: movers(), LastUpdated: at})
	svc.HandleSnapshot(context.Background(), store.Snapshot{Market: movers(), LastUpdated: at, IsPolling: true})
	svc.HandleSnapshot(context.Background(), store.Snapshot{Market: movers(), LastUpdated: at.Add(5 * time.Second)})

	assert.Equal(t, 4, renderer.calls)
	require.Len(t, ticks.batches, 2)
	assert.Len(t, ticks.batches[0], 4)
	assert.Equal(t, at, ticks.batches[0][0].ObservedAt)
}

func TestRunRequiresStore(t *testing.T) {
	svc := New(testConfig(), nil, Deps{}, zerolog.Nop())
	assert.Error(t, svc.Run(context.Background()))
}
