package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/reporting"
)

// multipartOverhead is allowed on top of the cookie file limit for form boundaries and headers.
const multipartOverhead = 64 << 10

// uploadCookies stores a cookie file and returns the path to pass back on later calls.
func (s *Server) uploadCookies(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	}

	file, _, err := r.FormFile("cookies")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, r, apperrors.NewClientInputError("Cookie file is too large."))
		default:
			writeError(w, r, apperrors.NewClientInputError("No cookie file was provided."))
		}
		return
	}
	defer file.Close()

	path, err := s.uploads.Save(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	hlog.FromRequest(r).Info().Str("path", path).Msg("Stored uploaded cookie file")
	writeJSON(w, r, http.StatusOK, models.CookiesUploadResponse{CookiesFilePath: path})
}

// videoDetails returns the title and thumbnail of a video.
func (s *Server) videoDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.DetailsRequest{
		URL:             q.Get("url"),
		CookiesFilePath: q.Get("cookiesFilePath"),
	}
	if err := models.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}
	if s.cookies.Required() && req.CookiesFilePath == "" {
		writeError(w, r, apperrors.NewClientInputError("Missing required parameter: cookiesFilePath."))
		return
	}

	details, err := s.details.Details(r.Context(), req.URL, s.cookies.Resolve(req.CookiesFilePath))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, details)
}

// download runs a yt-dlp download and streams the resulting file.
func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.DownloadRequest{
		URL:             q.Get("url"),
		Format:          q.Get("format"),
		CookiesFilePath: q.Get("cookiesFilePath"),
	}

	d := &httpDeliverer{w: w}
	err := s.orchestrator.Execute(r.Context(), req, d)
	if err == nil {
		return
	}
	if d.wroteHeader {
		// Headers are gone; the client sees a truncated body.
		hlog.FromRequest(r).Error().Err(err).Msg("Download stream interrupted")
		reporting.CaptureError(r.Context(), err)
		return
	}
	writeError(w, r, err)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
