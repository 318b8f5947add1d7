package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"marketwatch/internal/alerting"
	"marketwatch/internal/config"
	"marketwatch/internal/marketdata"
	"marketwatch/internal/storage"
	"marketwatch/internal/store"
)

// Renderer presents a snapshot, e.g. as a terminal table.
type Renderer interface {
	Render(snap store.Snapshot) error
}

// Deps are the optional consumers of store updates. Nil members are skipped.
type Deps struct {
	Renderer Renderer
	Ticks    storage.TickStore
	Alerts   storage.AlertStore
	Notifier alerting.Notifier
	Clock    clockwork.Clock
}

// Service fans store updates out to rendering, recording and alerting.
type Service struct {
	store    *store.Store
	renderer Renderer
	ticks    storage.TickStore
	alerts   storage.AlertStore
	notifier alerting.Notifier
	clock    clockwork.Clock
	logger   zerolog.Logger

	interval  time.Duration
	threshold decimal.Decimal
	cooldown  time.Duration
	pairs     map[string]struct{}
	channels  []string
	alertsOn  bool

	mu           sync.Mutex
	lastAlert    map[string]time.Time
	lastRecorded time.Time
}

// New constructs the monitoring service.
func New(cfg *config.Config, st *store.Store, deps Deps, logger zerolog.Logger) *Service {
	threshold := decimal.Zero
	if cfg.Alerting.Enabled && cfg.Alerting.ThresholdPct > 0 {
		threshold = decimal.NewFromFloat(cfg.Alerting.ThresholdPct)
	}

	var pairs map[string]struct{}
	if len(cfg.Alerting.Pairs) > 0 {
		pairs = make(map[string]struct{}, len(cfg.Alerting.Pairs))
		for _, p := range cfg.Alerting.Pairs {
			pairs[strings.ToUpper(strings.TrimSpace(p))] = struct{}{}
		}
	}

	var channels []string
	if cfg.Alerting.Telegram.Enabled {
		channels = []string{"telegram"}
	}

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Service{
		store:     st,
		renderer:  deps.Renderer,
		ticks:     deps.Ticks,
		alerts:    deps.Alerts,
		notifier:  deps.Notifier,
		clock:     clock,
		logger:    logger.With().Str("component", "service").Logger(),
		interval:  cfg.Polling.Interval,
		threshold: threshold,
		cooldown:  cfg.Alerting.Cooldown,
		pairs:     pairs,
		channels:  channels,
		alertsOn:  cfg.Alerting.Enabled,
		lastAlert: make(map[string]time.Time),
	}
}

// Run loads currencies, starts polling and handles every store update until
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.store == nil {
		return errors.New("store not configured")
	}

	updates, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	go s.store.LoadCurrencies(ctx)
	s.store.StartPolling(s.interval)
	defer s.store.StopPolling()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			s.HandleSnapshot(ctx, snap)
		}
	}
}

// HandleSnapshot renders snap and, once per successful refresh, records
// ticks and evaluates mover alerts.
func (s *Service) HandleSnapshot(ctx context.Context, snap store.Snapshot) {
	if s.renderer != nil {
		if err := s.renderer.Render(snap); err != nil {
			s.logger.Error().Err(err).Msg("render failed")
		}
	}

	if snap.LastUpdated.IsZero() {
		return
	}
	s.mu.Lock()
	fresh := !snap.LastUpdated.Equal(s.lastRecorded)
	if fresh {
		s.lastRecorded = snap.LastUpdated
	}
	s.mu.Unlock()
	if !fresh {
		return
	}

	s.record(ctx, snap.LastUpdated, snap.Market)
	s.EvaluateMovers(ctx, snap.LastUpdated, snap.Market)
}

func (s *Service) record(ctx context.Context, at time.Time, items []marketdata.MarketItem) {
	if s.ticks == nil || len(items) == 0 {
		return
	}
	ticks := make([]storage.Tick, 0, len(items))
	for _, it := range items {
		ticks = append(ticks, storage.TickFromItem(at, it))
	}
	if err := s.ticks.InsertTicks(ctx, ticks); err != nil {
		s.logger.Error().Err(err).Int("ticks", len(ticks)).Msg("failed to record ticks")
		return
	}
	s.logger.Debug().Int("ticks", len(ticks)).Time("observed_at", at).Msg("ticks recorded")
}

// EvaluateMovers sends an alert for every market whose 24h change reaches
// the threshold, at most once per pair per cooldown. It returns the number
// of alerts dispatched.
func (s *Service) EvaluateMovers(ctx context.Context, at time.Time, items []marketdata.MarketItem) int {
	if !s.alertsOn || s.notifier == nil || s.threshold.IsZero() {
		return 0
	}

	sent := 0
	for _, it := range items {
		if it.ChangePct == nil {
			continue
		}
		if s.pairs != nil {
			if _, ok := s.pairs[it.Pair]; !ok {
				continue
			}
		}
		change := decimal.NewFromFloat(*it.ChangePct)
		if change.Abs().LessThan(s.threshold) {
			continue
		}
		if !s.claim(it.Pair) {
			s.logger.Debug().Str("pair", it.Pair).Msg("mover alert suppressed by cooldown")
			continue
		}

		direction := classifyChange(change)
		note := alerting.Notification{
			Pair:         it.Pair,
			ObservedAt:   at,
			ChangePct:    change,
			ThresholdPct: s.threshold,
			Direction:    direction,
			Channels:     s.channels,
		}
		if it.PriceLast != nil {
			last := decimal.NewFromFloat(*it.PriceLast)
			note.PriceLast = &last
		}

		if s.alerts != nil {
			record := storage.AlertRecord{
				Pair:         it.Pair,
				ObservedAt:   at,
				ChangePct:    change,
				ThresholdPct: s.threshold,
				Direction:    direction,
				Channels:     s.channels,
			}
			if _, err := s.alerts.InsertAlert(ctx, record); err != nil {
				s.logger.Error().Err(err).Str("pair", it.Pair).Msg("failed to persist alert record")
			}
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("pair", it.Pair).Msg("failed to dispatch alert")
			continue
		}
		sent++
	}
	return sent
}

// claim reserves the alert slot of pair if its cooldown has elapsed.
func (s *Service) claim(pair string) bool {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastAlert[pair]; ok && s.cooldown > 0 && now.Sub(last) < s.cooldown {
		return false
	}
	s.lastAlert[pair] = now
	return true
}

func classifyChange(d decimal.Decimal) string {
	switch d.Sign() {
	case 1:
		return "up"
	case -1:
		return "down"
	default:
		return "flat"
	}
}
