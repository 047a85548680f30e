// Package reporting forwards unexpected server errors to Sentry when a DSN is configured.
package reporting

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/MediaFetch/internal/config"
)

var enabled atomic.Bool

// Init configures the Sentry SDK. An empty DSN leaves reporting disabled and is not an error.
func Init(cfg *config.Config, release string) error {
	if cfg.Sentry.DSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return err
	}
	enabled.Store(true)
	logger := config.GetLogger()
	logger.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	return nil
}

// Enabled reports whether Init installed a client.
func Enabled() bool {
	return enabled.Load()
}

// CaptureError sends err to Sentry, using the request hub from ctx when there is one.
func CaptureError(ctx context.Context, err error) {
	if err == nil || !Enabled() {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) {
	if Enabled() {
		sentry.Flush(timeout)
	}
}
