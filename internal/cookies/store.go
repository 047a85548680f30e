package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
)

// UploadStore persists cookie files sent to /upload-cookies.
type UploadStore struct {
	dir      string
	maxBytes int64
}

// NewUploadStore creates a store writing into dir. maxBytes <= 0 disables the size check.
func NewUploadStore(dir string, maxBytes int64) *UploadStore {
	return &UploadStore{dir: dir, maxBytes: maxBytes}
}

// Save writes r under a random name and returns the absolute path.
// Content larger than the limit is rejected as a client error and nothing is kept.
func (s *UploadStore) Save(r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	path, err := filepath.Abs(filepath.Join(s.dir, uuid.NewString()+".txt"))
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create cookie file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write cookie file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		_ = os.Remove(path)
		return "", apperrors.NewClientInputError("Cookie file exceeds %d bytes.", s.maxBytes)
	}
	if n == 0 {
		_ = os.Remove(path)
		return "", apperrors.NewClientInputError("Cookie file is empty.")
	}

	return path, nil
}
