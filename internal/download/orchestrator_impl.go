package download

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/cookies"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/ytdlp"
)

// DefaultOrchestrator implements Orchestrator on top of a ytdlp.Runner.
type DefaultOrchestrator struct {
	deps     Dependencies
	inflight *inflightSet
}

// NewOrchestrator creates an orchestrator. An empty DownloadsDir uses the configured default.
func NewOrchestrator(deps Dependencies) *DefaultOrchestrator {
	if deps.DownloadsDir == "" {
		deps.DownloadsDir = config.DefaultDownloadsDir
	}
	return &DefaultOrchestrator{deps: deps, inflight: newInflightSet()}
}

// run is the state of one Execute call.
type run struct {
	state  models.DownloadState
	logger zerolog.Logger
}

func (r *run) transition(to models.DownloadState) {
	if r.state.IsTerminal() {
		r.logger.Warn().Str("from", r.state.String()).Str("to", to.String()).Msg("Transition out of a terminal state")
	}
	r.logger.Debug().Str("from", r.state.String()).Str("to", to.String()).Msg("Download state changed")
	r.state = to
}

func (r *run) fail(err error) error {
	if !r.state.CanFail() {
		r.logger.Warn().Str("from", r.state.String()).Msg("Failure reported from a state that cannot fail")
	}
	r.logger.Error().Err(err).Str("from", r.state.String()).Msg("Download failed")
	r.state = models.StateFailed
	return err
}

func (o *DefaultOrchestrator) Execute(ctx context.Context, req models.DownloadRequest, d Deliverer) error {
	logger := config.GetLogger()
	r := &run{
		state:  models.StateIdle,
		logger: logger.With().Str("url", req.URL).Str("format", req.Format).Logger(),
	}

	format, cred, err := o.validate(req)
	if err != nil {
		metrics.DownloadsTotal.WithLabelValues("client_error").Inc()
		r.logger.Warn().Err(err).Msg("Rejected download request")
		return err
	}

	err = o.execute(ctx, r, req.URL, format, cred, d)
	switch {
	case err == nil:
		metrics.DownloadsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, &apperrors.ErrConflict{}):
		metrics.DownloadsTotal.WithLabelValues("conflict").Inc()
	default:
		metrics.DownloadsTotal.WithLabelValues("failed").Inc()
	}
	return err
}

// validate runs before any subprocess is started.
func (o *DefaultOrchestrator) validate(req models.DownloadRequest) (models.Format, cookies.Credential, error) {
	if err := models.Validate(req); err != nil {
		return models.FormatUnknown, cookies.Credential{}, err
	}
	if o.deps.Cookies.Required() && req.CookiesFilePath == "" {
		return models.FormatUnknown, cookies.Credential{}, apperrors.NewClientInputError("Missing required parameter: cookiesFilePath.")
	}
	format := models.ParseFormat(req.Format)
	if format == models.FormatUnknown {
		return models.FormatUnknown, cookies.Credential{}, apperrors.NewClientInputError("Unsupported format.")
	}
	return format, o.deps.Cookies.Resolve(req.CookiesFilePath), nil
}

func (o *DefaultOrchestrator) execute(ctx context.Context, r *run, url string, format models.Format, cred cookies.Credential, d Deliverer) error {
	r.transition(models.StateTitleResolving)
	title, err := o.deps.Titles.Title(ctx, url, cred)
	if err != nil {
		if !errors.Is(err, &apperrors.ErrExtraction{}) {
			err = &apperrors.ErrExtraction{URL: url, Err: err}
		}
		return r.fail(err)
	}
	if title == "" {
		return r.fail(&apperrors.ErrExtraction{URL: url, Err: errors.New("empty title")})
	}

	filename := title + "." + format.Extension()
	outputPath := filepath.Join(o.deps.DownloadsDir, filename)
	r.logger = r.logger.With().Str("title", title).Str("output", outputPath).Logger()

	release, ok := o.inflight.acquire(outputPath)
	if !ok {
		return r.fail(&apperrors.ErrConflict{Key: filename})
	}
	defer release()

	r.transition(models.StateDownloading)
	if err := o.download(ctx, r, url, format, outputPath, cred); err != nil {
		return r.fail(err)
	}

	r.transition(models.StateTransferring)
	if err := o.deliver(ctx, outputPath, filename, d); err != nil {
		return r.fail(err)
	}

	r.transition(models.StateCleaning)
	o.cleanup(r.logger, outputPath)

	r.transition(models.StateDone)
	r.logger.Info().Msg("Download delivered")
	return nil
}

// download runs yt-dlp until it exits and checks that it produced outputPath.
// The process is detached from ctx so a disconnecting client does not kill it.
func (o *DefaultOrchestrator) download(ctx context.Context, r *run, url string, format models.Format, outputPath string, cred cookies.Credential) error {
	if err := os.MkdirAll(o.deps.DownloadsDir, 0o755); err != nil {
		return &apperrors.ErrGeneration{OutputPath: outputPath, ExitCode: -1, Err: err}
	}

	args, err := ytdlp.DownloadArgs(url, format, outputPath, ytdlp.Options{ForceIPv4: o.deps.ForceIPv4, CookiesPath: cred.Path})
	if err != nil {
		return apperrors.NewClientInputError("Unsupported format.")
	}
	command := o.deps.Runner.CommandLine(args...)
	r.logger.Info().Str("command", command).Msg("Starting yt-dlp download")

	metrics.DownloadsInFlight.Inc()
	defer metrics.DownloadsInFlight.Dec()
	start := time.Now()

	proc, err := o.deps.Runner.Start(context.WithoutCancel(ctx), args...)
	if err != nil {
		r.logger.Error().Err(err).Str("command", command).Msg("Could not start yt-dlp")
		return &apperrors.ErrGeneration{OutputPath: outputPath, ExitCode: -1, Err: err}
	}

	for line := range proc.Lines() {
		if pct, ok := ytdlp.ParseProgress(line); ok {
			o.deps.Progress.Publish(models.ProgressEvent{Percent: pct})
			continue
		}
		r.logger.Debug().Str("stdout", line).Msg("yt-dlp")
	}

	exitCode, err := proc.Wait()
	metrics.YtdlpDuration.WithLabelValues("download").Observe(time.Since(start).Seconds())
	if err != nil || exitCode != 0 {
		r.logger.Error().Err(err).Int("exit_code", exitCode).Str("command", command).Msg("yt-dlp download failed")
		return &apperrors.ErrGeneration{OutputPath: outputPath, ExitCode: exitCode, Err: err}
	}

	if _, err := os.Stat(outputPath); err != nil {
		r.logger.Error().Err(err).Int("exit_code", exitCode).Str("command", command).Msg("yt-dlp exited cleanly but the file is missing")
		return &apperrors.ErrGeneration{OutputPath: outputPath}
	}
	return nil
}

func (o *DefaultOrchestrator) deliver(ctx context.Context, outputPath, filename string, d Deliverer) error {
	f, err := os.Open(outputPath)
	if err != nil {
		return &apperrors.ErrGeneration{OutputPath: outputPath, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &apperrors.ErrTransfer{Path: outputPath, Err: err}
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectReader(f); err == nil {
		contentType = mt.String()
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return &apperrors.ErrTransfer{Path: outputPath, Err: err}
	}

	err = d.Deliver(ctx, Delivery{
		Filename:    filename,
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Content:     f,
	})
	if err != nil {
		return &apperrors.ErrTransfer{Path: outputPath, Err: err}
	}
	return nil
}

func (o *DefaultOrchestrator) cleanup(logger zerolog.Logger, outputPath string) {
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Error().Err(err).Msg("Failed to delete delivered file")
	}
	// Concurrent downloads may still be writing .part files next to ours.
	if _, err := o.deps.Retention.Enforce(o.deps.DownloadsDir, o.deps.MaxFiles, o.inflight.snapshot()...); err != nil {
		logger.Error().Err(err).Msg("Retention pass failed")
	}
}
