package ytdlp

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// DecodeOutput converts raw tool output to UTF-8.
// yt-dlp prints UTF-8 when PYTHONIOENCODING is honoured, but Windows builds
// can fall back to the console code page; charset detection then applies.
func DecodeOutput(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	r, err := charset.NewReader(bytes.NewReader(raw), "text/plain")
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
