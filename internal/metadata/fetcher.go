// Package metadata resolves the title and thumbnail of a video through yt-dlp.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/cache"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/cookies"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/ytdlp"
)

// Options tune a Fetcher.
type Options struct {
	// Delay is waited before every yt-dlp call.
	Delay time.Duration
	// Timeout bounds one yt-dlp call. Zero disables it.
	Timeout   time.Duration
	ForceIPv4 bool
}

// Fetcher looks up video details, pausing before each upstream call.
type Fetcher struct {
	runner    ytdlp.Runner
	cache     cache.Cache
	delay     time.Duration
	policies  []failsafe.Policy[string]
	forceIPv4 bool
	sleep     func(ctx context.Context, d time.Duration) error
	logger    zerolog.Logger
}

// NewFetcher creates a Fetcher. A nil cache disables caching.
func NewFetcher(runner ytdlp.Runner, c cache.Cache, opts Options) *Fetcher {
	logger := config.GetLogger()
	f := &Fetcher{
		runner:    runner,
		cache:     c,
		delay:     opts.Delay,
		forceIPv4: opts.ForceIPv4,
		sleep:     sleepContext,
		logger:    logger.With().Str("component", "metadata").Logger(),
	}
	if opts.Timeout > 0 {
		f.policies = append(f.policies, timeout.New[string](opts.Timeout))
	}
	return f
}

// Details returns the display title and thumbnail URL of url.
// Any failure is an *apperrors.ErrExtraction; there are no partial results.
func (f *Fetcher) Details(ctx context.Context, url string, cred cookies.Credential) (models.VideoDetails, error) {
	return f.lookup(ctx, url, cred, false)
}

// Title returns the sanitized title of url, ready to be used as a file name.
// It always waits the configured delay first, cache hit or not, since a download
// invocation follows it.
func (f *Fetcher) Title(ctx context.Context, url string, cred cookies.Credential) (string, error) {
	if err := f.sleep(ctx, f.delay); err != nil {
		return "", &apperrors.ErrExtraction{URL: url, Err: err}
	}
	details, err := f.lookup(ctx, url, cred, true)
	if err != nil {
		return "", err
	}
	return SanitizeTitle(details.Title), nil
}

// lookup serves url from the cache or runs yt-dlp. paused means the delay was already waited.
func (f *Fetcher) lookup(ctx context.Context, url string, cred cookies.Credential, paused bool) (models.VideoDetails, error) {
	key := cacheKey(url, cred)
	if details, ok := f.cached(key); ok {
		metrics.MetadataRequestsTotal.WithLabelValues("cache_hit").Inc()
		f.logger.Debug().Str("url", url).Msg("Metadata served from cache")
		return details, nil
	}

	if !paused {
		if err := f.sleep(ctx, f.delay); err != nil {
			metrics.MetadataRequestsTotal.WithLabelValues("error").Inc()
			return models.VideoDetails{}, &apperrors.ErrExtraction{URL: url, Err: err}
		}
	}

	details, err := f.fetch(ctx, url, cred)
	if err != nil {
		metrics.MetadataRequestsTotal.WithLabelValues("error").Inc()
		return models.VideoDetails{}, err
	}
	metrics.MetadataRequestsTotal.WithLabelValues("success").Inc()

	if f.cache != nil {
		if data, err := json.Marshal(details); err == nil {
			f.cache.Set(key, data)
		}
	}
	return details, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string, cred cookies.Credential) (models.VideoDetails, error) {
	args := ytdlp.MetadataArgs(url, ytdlp.Options{ForceIPv4: f.forceIPv4, CookiesPath: cred.Path})
	start := time.Now()
	out, err := failsafe.With[string](f.policies...).
		WithContext(ctx).
		GetWithExecution(func(exec failsafe.Execution[string]) (string, error) {
			return f.runner.Output(exec.Context(), args...)
		})
	metrics.YtdlpDuration.WithLabelValues("metadata").Observe(time.Since(start).Seconds())

	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Str("command", f.runner.CommandLine(args...)).Msg("Metadata extraction failed")
		return models.VideoDetails{}, &apperrors.ErrExtraction{URL: url, Err: err}
	}

	details, err := parseDetails(out)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Str("output", out).Msg("Unexpected metadata output")
		return models.VideoDetails{}, &apperrors.ErrExtraction{URL: url, Err: err}
	}
	f.logger.Info().Str("url", url).Str("title", details.Title).Msg("Resolved video details")
	return details, nil
}

func (f *Fetcher) cached(key string) (models.VideoDetails, bool) {
	if f.cache == nil {
		return models.VideoDetails{}, false
	}
	data, ok := f.cache.Get(key)
	if !ok {
		return models.VideoDetails{}, false
	}
	var details models.VideoDetails
	if err := json.Unmarshal(data, &details); err != nil {
		f.logger.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cache entry")
		return models.VideoDetails{}, false
	}
	return details, true
}

// parseDetails reads the title and thumbnail lines printed by MetadataArgs.
func parseDetails(out string) (models.VideoDetails, error) {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return models.VideoDetails{}, errors.New("expected title and thumbnail lines")
	}
	details := models.VideoDetails{Title: lines[0], Thumbnail: lines[1]}
	// yt-dlp prints NA for fields the extractor did not provide.
	if details.Title == "NA" {
		return models.VideoDetails{}, errors.New("no title available")
	}
	if details.Thumbnail == "NA" {
		details.Thumbnail = ""
	}
	return details, nil
}

func cacheKey(url string, cred cookies.Credential) string {
	if cred.Enabled() {
		return url + "|cookies"
	}
	return url + "|anonymous"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
