package server

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/Belphemur/MediaFetch/internal/download"
)

// httpDeliverer streams a finished download as an attachment.
type httpDeliverer struct {
	w http.ResponseWriter

	// wroteHeader is set once the status line is sent; after that errors can only be logged.
	wroteHeader bool
}

func (d *httpDeliverer) Deliver(_ context.Context, file download.Delivery) error {
	h := d.w.Header()
	h.Set("Content-Type", file.ContentType)
	h.Set("Content-Disposition", contentDisposition(file.Filename))
	h.Set("Content-Length", strconv.FormatInt(file.Size, 10))
	h.Set("Last-Modified", file.ModTime.UTC().Format(http.TimeFormat))
	h.Set("X-Content-Type-Options", "nosniff")

	d.wroteHeader = true
	d.w.WriteHeader(http.StatusOK)
	_, err := io.Copy(d.w, file.Content)
	return err
}

func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
