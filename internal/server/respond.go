package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/reporting"
)

// minCompressSize is the smallest JSON body worth compressing.
const minCompressSize = 256

// writeJSON sends v as JSON, compressed when the client allows it and the body is large enough.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Add("Vary", "Accept-Encoding")

	encoding := ""
	if len(body) >= minCompressSize {
		encoding = negotiateEncoding(r.Header.Get("Accept-Encoding"))
	}
	if encoding == "" {
		h.Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}

	enc, err := newEncoder(w, encoding)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.Set("Content-Encoding", encoding)
	w.WriteHeader(status)
	if _, err := enc.Write(body); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to write response body")
	}
	if err := enc.Close(); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to flush compressed body")
	}
}

// writeError sends the plain-text public message for err with its mapped status.
// Server-side failures are logged and reported; client errors are logged at warn level.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	logger := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("Request failed")
		reporting.CaptureError(r.Context(), err)
	} else {
		logger.Warn().Err(err).Int("status", status).Msg("Request rejected")
	}
	http.Error(w, apperrors.PublicMessage(err), status)
}
