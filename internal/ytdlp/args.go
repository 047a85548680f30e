package ytdlp

import (
	"fmt"

	"github.com/Belphemur/MediaFetch/internal/models"
)

// mp4Selector prefers separate mp4 video and m4a audio streams, falling back to a single mp4.
const mp4Selector = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4"

// Options are the flags shared by every invocation.
type Options struct {
	ForceIPv4   bool
	CookiesPath string
}

func (o Options) base() []string {
	args := make([]string, 0, 12)
	if o.ForceIPv4 {
		args = append(args, "--force-ipv4")
	}
	if o.CookiesPath != "" {
		args = append(args, "--cookies", o.CookiesPath)
	}
	return append(args, "--no-playlist")
}

// MetadataArgs prints the title on the first line and the thumbnail URL on the second.
func MetadataArgs(url string, opts Options) []string {
	args := opts.base()
	return append(args, "--print", "title", "--print", "thumbnail", "--", url)
}

// DownloadArgs builds the arguments that download url to outputPath in the given format.
func DownloadArgs(url string, format models.Format, outputPath string, opts Options) ([]string, error) {
	args := append(opts.base(), "--newline")
	switch format {
	case models.FormatMP4:
		args = append(args, "-f", mp4Selector)
	case models.FormatMP3:
		args = append(args, "-x", "--audio-format", "mp3")
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return append(args, "-o", outputPath, "--", url), nil
}
