//go:build unix

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"marketwatch/internal/scheduler"
)

// watchVisibility flips vis on every SIGUSR1 so an operator can pause and
// resume polling of a running process.
func watchVisibility(ctx context.Context, vis *scheduler.Toggle, logger zerolog.Logger) func() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-signals:
				hidden := vis.Flip()
				logger.Info().Bool("hidden", hidden).Msg("visibility toggled by SIGUSR1")
			}
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}
