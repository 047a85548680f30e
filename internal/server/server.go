// Package server exposes the download service over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/cookies"
	"github.com/Belphemur/MediaFetch/internal/download"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/progress"
	"github.com/Belphemur/MediaFetch/internal/reporting"
)

// DetailsFetcher looks up video metadata.
type DetailsFetcher interface {
	Details(ctx context.Context, url string, cred cookies.Credential) (models.VideoDetails, error)
}

// Dependencies wires a Server.
type Dependencies struct {
	Orchestrator download.Orchestrator
	Details      DetailsFetcher
	Cookies      cookies.Provisioner
	Progress     *progress.Broadcaster

	// Uploads is nil when cookie files are fixed server side; /upload-cookies is then not routed.
	Uploads        *cookies.UploadStore
	MaxUploadBytes int64

	StaticDir string
	Logger    zerolog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	orchestrator   download.Orchestrator
	details        DetailsFetcher
	cookies        cookies.Provisioner
	progress       *progress.Broadcaster
	uploads        *cookies.UploadStore
	maxUploadBytes int64
	staticDir      string
	keepAlive      time.Duration
	logger         zerolog.Logger
}

// New creates a Server.
func New(deps Dependencies) *Server {
	return &Server{
		orchestrator:   deps.Orchestrator,
		details:        deps.Details,
		cookies:        deps.Cookies,
		progress:       deps.Progress,
		uploads:        deps.Uploads,
		maxUploadBytes: deps.MaxUploadBytes,
		staticDir:      deps.StaticDir,
		keepAlive:      defaultKeepAlive,
		logger:         deps.Logger,
	}
}

// Handler builds the router with its middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimw.Recoverer)
	if reporting.Enabled() {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthz)
	r.Get("/video-details", s.videoDetails)
	r.Get("/download", s.download)
	r.Get("/events", s.events)
	if s.uploads != nil {
		r.Post("/upload-cookies", s.uploadCookies)
	}

	if s.staticDir != "" {
		if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
			r.Handle("/*", gzhttp.GzipHandler(http.FileServer(http.Dir(s.staticDir))))
		} else {
			s.logger.Warn().Str("dir", s.staticDir).Msg("Static directory not found, front-end will not be served")
		}
	}

	return r
}

// NewHTTPServer creates the public HTTP server. There is no write timeout because
// downloads stream for as long as yt-dlp takes.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	port := cfg.Server.Port
	if port == 0 {
		port = config.DefaultPort
	}
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// requestIDLogger adds chi's request ID to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("HTTP request")
}
