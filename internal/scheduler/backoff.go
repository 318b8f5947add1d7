package scheduler

import "time"

// DefaultMaxDelay caps the backoff delay.
const DefaultMaxDelay = 60 * time.Second

// Backoff returns the delay before the next tick: base while there are no
// consecutive failures, otherwise min(base*2^failures, maxDelay).
// A non-positive maxDelay means DefaultMaxDelay.
func Backoff(base time.Duration, failures int, maxDelay time.Duration) time.Duration {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if failures <= 0 {
		return base
	}
	if base <= 0 {
		return maxDelay
	}

	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return delay
}
