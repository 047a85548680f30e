package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// serve runs srv on ln until ctx is done, then drains it for at most grace.
// It only returns once the drain is over, so in-flight downloads are not cut off
// by the process exiting. beforeShutdown, if set, runs right before the drain starts.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, beforeShutdown func()) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		if beforeShutdown != nil {
			beforeShutdown()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		drained <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// Serve returns as soon as Shutdown is called.
	return <-drained
}
