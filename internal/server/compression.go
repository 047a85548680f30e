package server

import (
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/munnerz/goautoneg"
)

// encodingPreference lists supported content codings, best first.
var encodingPreference = []string{"br", "zstd", "gzip"}

// negotiateEncoding picks the coding with the highest q-value allowed by an
// Accept-Encoding header, breaking ties with encodingPreference.
// It returns "" when the body should be sent uncompressed.
func negotiateEncoding(acceptEncoding string) string {
	if acceptEncoding == "" {
		return ""
	}

	// goautoneg parses media ranges, so each coding gets a placeholder type.
	ranges := strings.Split(acceptEncoding, ",")
	for i, r := range ranges {
		r = strings.TrimSpace(r)
		if r != "" && !strings.HasPrefix(r, "*") {
			r = "coding/" + r
		}
		ranges[i] = r
	}
	weights := make(map[string]float64)
	for _, a := range goautoneg.ParseAccept(strings.Join(ranges, ",")) {
		weights[strings.ToLower(a.SubType)] = a.Q
	}

	best, bestQ := "", 0.0
	for _, enc := range encodingPreference {
		q, listed := weights[enc]
		if !listed {
			q = weights["*"]
		}
		if q > bestQ {
			best, bestQ = enc, q
		}
	}
	return best
}

// newEncoder wraps w with the named coding. Callers must Close the result.
func newEncoder(w io.Writer, encoding string) (io.WriteCloser, error) {
	switch encoding {
	case "br":
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	case "zstd":
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case "gzip":
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
