// Package download runs one yt-dlp download per request and hands the finished file to the caller.
package download

import (
	"context"
	"io"
	"time"

	"github.com/Belphemur/MediaFetch/internal/cookies"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/ytdlp"
)

// Orchestrator drives a download request from validation to cleanup.
type Orchestrator interface {
	// Execute downloads req and passes the result to d. The returned error is one of the
	// apperrors types and decides the HTTP status when nothing was delivered yet.
	Execute(ctx context.Context, req models.DownloadRequest, d Deliverer) error
}

// Delivery is a finished file ready to be sent.
type Delivery struct {
	Filename    string
	ContentType string
	Size        int64
	ModTime     time.Time
	Content     io.ReadSeeker
}

// Deliverer sends a finished file to whoever asked for it.
type Deliverer interface {
	Deliver(ctx context.Context, file Delivery) error
}

// TitleResolver returns a sanitized title usable as a file name.
type TitleResolver interface {
	Title(ctx context.Context, url string, cred cookies.Credential) (string, error)
}

// ProgressPublisher receives every percentage parsed from yt-dlp output.
type ProgressPublisher interface {
	Publish(ev models.ProgressEvent)
}

// RetentionEnforcer prunes the downloads directory after each delivery.
// Files of the busy output paths must be left alone.
type RetentionEnforcer interface {
	Enforce(dir string, max int, busy ...string) ([]string, error)
}

// Dependencies wires an Orchestrator.
type Dependencies struct {
	Runner    ytdlp.Runner
	Titles    TitleResolver
	Cookies   cookies.Provisioner
	Progress  ProgressPublisher
	Retention RetentionEnforcer

	DownloadsDir string
	MaxFiles     int
	ForceIPv4    bool
}
