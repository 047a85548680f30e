// Package retention caps how many completed downloads stay on disk.
package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/metrics"
)

// Manager prunes a directory down to its newest files.
type Manager struct {
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewManager creates a retention manager.
func NewManager() *Manager {
	logger := config.GetLogger()
	return &Manager{logger: logger.With().Str("component", "retention").Logger()}
}

type fileEntry struct {
	path    string
	modTime time.Time
}

// Enforce keeps the max most recently modified regular files in dir and deletes the rest,
// oldest first. It returns the deleted paths. max <= 0 disables pruning.
//
// busy lists output paths still being written. Files belonging to them, the final
// file as well as yt-dlp's .part and .fNNN intermediates, are neither counted nor deleted.
func (m *Manager) Enforce(dir string, max int, busy ...string) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	regular := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return e.Type().IsRegular() && !belongsTo(filepath.Join(dir, e.Name()), busy)
	})
	files := make([]fileEntry, 0, len(regular))
	for _, e := range regular {
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, fileEntry{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}

	if len(files) <= max {
		return nil, nil
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	excess := files[:len(files)-max]
	deleted := make([]string, 0, len(excess))
	for _, f := range excess {
		if err := os.Remove(f.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			m.logger.Error().Err(err).Str("path", f.path).Msg("Failed to delete old download")
			continue
		}
		deleted = append(deleted, f.path)
	}

	if len(deleted) > 0 {
		metrics.RetentionDeletedTotal.Add(float64(len(deleted)))
		m.logger.Info().Int("deleted", len(deleted)).Int("kept", max).Str("dir", dir).Msg("Pruned old downloads")
	}
	return deleted, nil
}

// belongsTo reports whether path is one of outputs or a file yt-dlp derives from one.
// Derived names share the output's stem followed by a dot; sanitized titles contain no dots.
func belongsTo(path string, outputs []string) bool {
	return lo.SomeBy(outputs, func(out string) bool {
		out = filepath.Clean(out)
		if path == out {
			return true
		}
		stem := strings.TrimSuffix(out, filepath.Ext(out))
		return strings.HasPrefix(path, stem+".")
	})
}
