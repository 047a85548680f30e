// Package cookies decides which Netscape cookie file, if any, is handed to yt-dlp.
package cookies

import (
	"bytes"
	"os"

	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// Credential is the cookie file passed to yt-dlp. The zero value means no cookies.
type Credential struct {
	Path string
}

// Enabled reports whether a cookie file should be passed.
func (c Credential) Enabled() bool {
	return c.Path != ""
}

// Provisioner resolves the credential used for a single invocation.
type Provisioner interface {
	// Resolve returns the credential for a request that supplied requested.
	Resolve(requested string) Credential

	// Required reports whether requests must carry a cookie file path.
	Required() bool
}

// UploadProvisioner trusts the path a caller got back from /upload-cookies.
type UploadProvisioner struct{}

func (UploadProvisioner) Resolve(requested string) Credential {
	return Credential{Path: requested}
}

func (UploadProvisioner) Required() bool {
	return true
}

// FixedFileProvisioner uses one server-side cookie file and ignores anything the caller sends.
// The file is re-read on every call so it can be replaced without a restart.
type FixedFileProvisioner struct {
	Path    string
	Markers []string
	logger  zerolog.Logger
}

// NewFixedFileProvisioner creates a provisioner for path. Empty markers fall back to the defaults.
func NewFixedFileProvisioner(path string, markers []string) *FixedFileProvisioner {
	if len(markers) == 0 {
		markers = config.DefaultCookieMarkers
	}
	logger := config.GetLogger()
	return &FixedFileProvisioner{
		Path:    path,
		Markers: markers,
		logger:  logger.With().Str("component", "cookies").Logger(),
	}
}

// Resolve returns the fixed file when it exists and looks logged in, otherwise a disabled credential.
func (p *FixedFileProvisioner) Resolve(string) Credential {
	content, err := os.ReadFile(p.Path)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", p.Path).Msg("Cookie file unavailable, continuing without cookies")
		return Credential{}
	}
	if !containsMarker(content, p.Markers) {
		p.logger.Warn().Str("path", p.Path).Strs("markers", p.Markers).Msg("Cookie file has no login marker, continuing without cookies")
		return Credential{}
	}
	return Credential{Path: p.Path}
}

func (p *FixedFileProvisioner) Required() bool {
	return false
}

func containsMarker(content []byte, markers []string) bool {
	for _, m := range markers {
		if m != "" && bytes.Contains(content, []byte(m)) {
			return true
		}
	}
	return false
}

// New picks the provisioner for the configured cookie mode.
func New(cfg *config.Config) Provisioner {
	if cfg.Cookies.Mode == config.CookieModeFixed {
		return NewFixedFileProvisioner(cfg.Cookies.File, cfg.Cookies.Markers)
	}
	return UploadProvisioner{}
}
