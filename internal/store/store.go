// Package store owns the market-data state consumed by presentation code.
//
// All mutation goes through the Store's actions (LoadCurrencies, LoadMarket,
// StartPolling, StopPolling). Readers take immutable snapshots or subscribe
// to change notifications. Actions never return errors: failures end up in
// Snapshot.Error.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"marketwatch/internal/marketdata"
	"marketwatch/internal/observability"
	"marketwatch/internal/scheduler"
)

// DefaultInterval is the base poll period used when none is given.
const DefaultInterval = 5 * time.Second

// Options tune the store.
type Options struct {
	Interval   time.Duration
	MaxBackoff time.Duration
	Clock      clockwork.Clock
	Visibility scheduler.Visibility
	Metrics    *observability.Metrics
}

// Store holds currencies, markets and the polling lifecycle.
type Store struct {
	currencySrc CurrencySource
	marketSrc   MarketSource
	clock       clockwork.Clock
	metrics     *observability.Metrics
	logger      zerolog.Logger
	poller      *scheduler.Poller
	maxBackoff  time.Duration
	loads       singleflight.Group

	mu            sync.RWMutex
	currencies    []marketdata.CurrencyMeta
	market        []marketdata.MarketItem
	loadingMarket bool
	errMsg        string
	lastUpdated   time.Time
	interval      time.Duration
	failures      int
	marketGen     uint64
	marketCancel  context.CancelFunc
	version       uint64

	subMu   sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// New builds an empty store. Nothing is fetched until an action runs.
func New(currencies CurrencySource, market MarketSource, opts Options, logger zerolog.Logger) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = scheduler.DefaultMaxDelay
	}

	s := &Store{
		currencySrc: currencies,
		marketSrc:   market,
		clock:       clock,
		metrics:     opts.Metrics,
		logger:      logger.With().Str("component", "store").Logger(),
		maxBackoff:  maxBackoff,
		currencies:  []marketdata.CurrencyMeta{},
		market:      []marketdata.MarketItem{},
		interval:    interval,
		subs:        make(map[int]chan Snapshot),
	}
	s.poller = scheduler.New(scheduler.Options{
		MaxDelay:   maxBackoff,
		Clock:      clock,
		Visibility: opts.Visibility,
		OnStateChange: func(st scheduler.State) {
			s.metrics.SetState(st.String(), allStates...)
			// the poller holds its lock here; snapshot asynchronously
			go s.notify()
		},
	}, logger)
	return s
}

var allStates = []string{
	scheduler.StateIdle.String(),
	scheduler.StateActive.String(),
	scheduler.StateSuspended.String(),
}

// Snapshot is an immutable view of the store. Slices are shared with the
// store and must not be modified.
type Snapshot struct {
	Currencies    []marketdata.CurrencyMeta
	Market        []marketdata.MarketItem
	LoadingMarket bool
	Error         string
	LastUpdated   time.Time
	Interval      time.Duration
	Failures      int
	IsPolling     bool
	State         scheduler.State
	NextDelay     time.Duration
	Version       uint64
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		Currencies:    s.currencies,
		Market:        s.market,
		LoadingMarket: s.loadingMarket,
		Error:         s.errMsg,
		LastUpdated:   s.lastUpdated,
		Interval:      s.interval,
		Failures:      s.failures,
		Version:       s.version,
	}
	s.mu.RUnlock()

	snap.State = s.poller.State()
	snap.IsPolling = snap.State == scheduler.StateActive
	snap.NextDelay = s.poller.NextDelay()
	return snap
}

// IsPolling reports whether a tick is running or scheduled.
func (s *Store) IsPolling() bool {
	return s.poller.IsPolling()
}

// BaseList returns the sorted unique base assets of the current market.
func (s *Store) BaseList() []string {
	return s.Snapshot().BaseList()
}

// QuoteList returns the sorted unique quote assets of the current market.
func (s *Store) QuoteList() []string {
	return s.Snapshot().QuoteList()
}

// CurrencyIconMap maps currency codes to icon data URLs.
func (s *Store) CurrencyIconMap() map[string]string {
	return s.Snapshot().CurrencyIconMap()
}

// Subscribe returns a channel that receives the latest snapshot after every
// state change. Slow readers only ever see the newest snapshot. The returned
// func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			// Close may already have released it
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if len(s.subs) == 0 {
		return
	}
	// snapshot under subMu so concurrent notifies deliver in order
	snap := s.Snapshot()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Close stops polling and releases every subscription.
func (s *Store) Close() {
	s.StopPolling()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
