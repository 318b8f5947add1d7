//go:build !unix

package app

import (
	"context"

	"github.com/rs/zerolog"

	"marketwatch/internal/scheduler"
)

func watchVisibility(context.Context, *scheduler.Toggle, zerolog.Logger) func() {
	return func() {}
}
