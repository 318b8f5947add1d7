package store

import (
	"context"
	"time"

	"marketwatch/internal/marketdata"
	"marketwatch/internal/observability"
	"marketwatch/internal/scheduler"
)

const (
	resourceCurrencies = "currencies"
	resourceMarket     = "market"
)

// LoadCurrencies replaces the currency list on success. Failures set the
// error but never count towards market backoff. Concurrent calls share one
// request, bound to the first caller's ctx.
func (s *Store) LoadCurrencies(ctx context.Context) {
	_, _, _ = s.loads.Do(resourceCurrencies, func() (any, error) {
		started := s.clock.Now()
		items, err := s.currencySrc.FetchCurrencies(ctx)
		elapsed := s.clock.Since(started)

		outcome := observability.OutcomeSuccess
		s.mu.Lock()
		switch {
		case err == nil:
			s.currencies = items
		case ctx.Err() != nil:
			outcome = observability.OutcomeCanceled
		default:
			outcome = observability.OutcomeFailure
			s.errMsg = err.Error()
		}
		s.version++
		markets, currencies := len(s.market), len(s.currencies)
		s.mu.Unlock()

		if outcome == observability.OutcomeFailure {
			s.logger.Warn().Err(err).Msg("load currencies failed")
		} else {
			s.logger.Debug().Str("outcome", outcome).Int("count", len(items)).Msg("currencies loaded")
		}
		s.metrics.ObserveRefresh(resourceCurrencies, outcome, elapsed)
		s.metrics.SetSizes(markets, currencies)
		s.notify()
		return nil, nil
	})
}

// LoadMarket issues a new market request, cancelling any in flight. Only
// the latest request may update the store; superseded completions, whether
// success or failure, are dropped.
func (s *Store) LoadMarket(ctx context.Context) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.marketCancel != nil {
		s.marketCancel()
	}
	s.marketGen++
	gen := s.marketGen
	s.marketCancel = cancel
	s.loadingMarket = true
	s.errMsg = ""
	s.version++
	s.mu.Unlock()
	s.notify()

	started := s.clock.Now()
	items, err := s.marketSrc.FetchMarket(reqCtx)
	elapsed := s.clock.Since(started)

	outcome := s.finishMarket(reqCtx, gen, items, err)
	switch outcome {
	case observability.OutcomeFailure:
		s.logger.Warn().Err(err).Msg("load market failed")
	case observability.OutcomeSuccess:
		s.logger.Debug().Int("count", len(items)).Dur("elapsed", elapsed).Msg("market loaded")
	default:
		s.logger.Debug().Str("outcome", outcome).Msg("market request dropped")
	}
	s.metrics.ObserveRefresh(resourceMarket, outcome, elapsed)
	if outcome != observability.OutcomeSuperseded {
		s.notify()
	}
}

func (s *Store) finishMarket(reqCtx context.Context, gen uint64, items []marketdata.MarketItem, err error) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.marketGen {
		// the newer request owns loading and error
		return observability.OutcomeSuperseded
	}
	s.marketCancel = nil
	s.loadingMarket = false
	s.version++

	outcome := observability.OutcomeSuccess
	switch {
	case err == nil:
		s.market = items
		s.lastUpdated = s.clock.Now()
		s.failures = 0
		s.metrics.MarkSuccess(s.lastUpdated)
	case reqCtx.Err() != nil:
		outcome = observability.OutcomeCanceled
	default:
		outcome = observability.OutcomeFailure
		s.errMsg = err.Error()
		s.failures++
	}
	s.metrics.SetFailures(s.failures)
	s.metrics.SetSizes(len(s.market), len(s.currencies))
	return outcome
}

// StartPolling restarts polling at period (DefaultInterval when not
// positive). The first refresh runs immediately.
func (s *Store) StartPolling(period time.Duration) {
	if period <= 0 {
		period = DefaultInterval
	}
	s.StopPolling()

	s.mu.Lock()
	s.interval = period
	s.failures = 0
	s.version++
	s.mu.Unlock()

	s.poller.Start(context.Background(), period, cycleTarget{s})
	s.notify()
}

// StopPolling halts polling and aborts the in-flight market request. The
// abort is not reported as an error.
func (s *Store) StopPolling() {
	s.poller.Stop()

	s.mu.Lock()
	if s.marketCancel != nil {
		s.marketCancel()
	}
	s.failures = 0
	s.version++
	s.mu.Unlock()

	s.metrics.SetFailures(0)
	s.metrics.SetNextDelay(0)
	s.notify()
}

// cycleTarget adapts the store to the scheduler.
type cycleTarget struct{ s *Store }

func (t cycleTarget) RunCycle(ctx context.Context) int {
	t.s.LoadMarket(ctx)

	t.s.mu.RLock()
	failures, interval := t.s.failures, t.s.interval
	t.s.mu.RUnlock()

	t.s.metrics.SetNextDelay(scheduler.Backoff(interval, failures, t.s.maxBackoff))
	return failures
}

func (t cycleTarget) ResetFailures() {
	t.s.mu.Lock()
	t.s.failures = 0
	t.s.version++
	t.s.mu.Unlock()
	t.s.metrics.SetFailures(0)
}
