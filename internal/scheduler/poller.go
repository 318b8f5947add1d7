package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Target is what the poller drives. RunCycle performs one refresh and
// reports the consecutive-failure count afterwards; ResetFailures is called
// when polling restarts after a suspension. Neither may call back into the
// Poller's Start or Stop.
type Target interface {
	RunCycle(ctx context.Context) (failures int)
	ResetFailures()
}

// Options tune poller behaviour.
type Options struct {
	MaxDelay      time.Duration
	Clock         clockwork.Clock
	Visibility    Visibility
	OnStateChange func(State)
}

// Poller schedules refresh cycles with backoff and pauses while hidden.
type Poller struct {
	clock    clockwork.Clock
	vis      Visibility
	maxDelay time.Duration
	onState  func(State)
	logger   zerolog.Logger

	// lifecycle serialises Start and Stop.
	lifecycle sync.Mutex

	mu        sync.Mutex
	state     State
	session   uint64
	period    time.Duration
	nextDelay time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

// New constructs an idle Poller.
func New(opts Options, logger zerolog.Logger) *Poller {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	vis := opts.Visibility
	if vis == nil {
		vis = AlwaysVisible
	}
	maxDelay := opts.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &Poller{
		clock:    clock,
		vis:      vis,
		maxDelay: maxDelay,
		onState:  opts.OnStateChange,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		state:    StateIdle,
	}
}

// Start cancels any running loop, then runs one cycle immediately and keeps
// scheduling cycles at the backoff delay until Stop or ctx is cancelled.
func (p *Poller) Start(ctx context.Context, period time.Duration, target Target) {
	if period <= 0 {
		panic("scheduler period must be positive")
	}

	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	p.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.session++
	session := p.session
	p.period = period
	p.nextDelay = 0
	p.cancel = cancel
	p.done = done
	p.applyLocked(EventStart)
	p.mu.Unlock()

	p.logger.Info().Dur("period", period).Msg("polling started")
	go p.loop(loopCtx, session, period, target, done)
}

// Stop cancels the loop, waits for it to exit and returns to Idle.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.stopLocked() {
		p.logger.Info().Msg("polling stopped")
	}
}

func (p *Poller) stopLocked() bool {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.session++
	p.nextDelay = 0
	p.applyLocked(EventStop)
	p.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPolling reports whether a tick is running or scheduled.
func (p *Poller) IsPolling() bool {
	return p.State() == StateActive
}

// Period returns the base period of the last Start.
func (p *Poller) Period() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period
}

// NextDelay returns the delay chosen after the most recent cycle, zero
// before the first cycle completes or while idle.
func (p *Poller) NextDelay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextDelay
}

func (p *Poller) loop(ctx context.Context, session uint64, period time.Duration, target Target, done chan struct{}) {
	defer close(done)

	immediate := true
	var delay time.Duration
	for {
		if !immediate {
			timer := p.clock.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.Chan():
			}
		}
		immediate = false
		if ctx.Err() != nil {
			return
		}

		if p.vis.Hidden() {
			// no reschedule; only a visibility change restarts the loop
			p.apply(session, EventTickHidden)
			p.setNextDelay(session, 0)
			p.logger.Info().Msg("hidden; polling suspended")
			if !p.waitVisible(ctx) {
				return
			}
			target.ResetFailures()
			p.apply(session, EventVisible)
			p.logger.Info().Dur("period", period).Msg("visible; polling resumed")
			immediate = true
			continue
		}

		p.apply(session, EventTickVisible)
		failures := target.RunCycle(ctx)
		if ctx.Err() != nil {
			return
		}

		delay = Backoff(period, failures, p.maxDelay)
		p.setNextDelay(session, delay)
		if failures > 0 {
			p.logger.Warn().Int("failures", failures).Dur("delay", delay).Msg("refresh failing; backing off")
		} else {
			p.logger.Debug().Dur("delay", delay).Msg("next tick scheduled")
		}
	}
}

func (p *Poller) waitVisible(ctx context.Context) bool {
	changes, unsubscribe := p.vis.Subscribe()
	defer unsubscribe()

	if !p.vis.Hidden() {
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case hidden := <-changes:
			if !hidden {
				return true
			}
		}
	}
}

func (p *Poller) apply(session uint64, e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if session != p.session {
		return
	}
	p.applyLocked(e)
}

func (p *Poller) applyLocked(e Event) {
	next, ok := Transition(p.state, e)
	if !ok {
		p.logger.Debug().Stringer("state", p.state).Stringer("event", e).Msg("ignored event")
		return
	}
	if next == p.state {
		return
	}
	p.logger.Debug().Stringer("from", p.state).Stringer("to", next).Stringer("event", e).Msg("state transition")
	p.state = next
	if p.onState != nil {
		p.onState(next)
	}
}

func (p *Poller) setNextDelay(session uint64, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if session == p.session {
		p.nextDelay = d
	}
}
