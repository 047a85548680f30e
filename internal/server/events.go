package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"
)

// defaultKeepAlive is how often an idle event stream gets a comment line.
const defaultKeepAlive = 15 * time.Second

// events streams progress percentages as Server-Sent Events until the client goes away.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	logger := hlog.FromRequest(r)
	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Error().Err(err).Msg("Event stream cannot be flushed")
		return
	}

	sub := s.progress.Subscribe()
	defer s.progress.Unsubscribe(sub.ID)

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.Events:
			if !ok {
				return
			}
			_, err = fmt.Fprintf(w, "event: progress\ndata: %s\n\n", strconv.FormatFloat(ev.Percent, 'f', -1, 64))
		case <-keepAlive.C:
			_, err = fmt.Fprint(w, ": keepalive\n\n")
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			logger.Debug().Err(err).Str("subscriber", sub.ID).Msg("Event stream closed")
			return
		}
	}
}
