package cache

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/platewise/costoracle/internal/model"
)

// FileCache is the canonical flat-file backend: the whole store is read into
// memory at open and rewritten in full, as indented JSON, on every put.
// The mutex protects in-process callers only; concurrent processes sharing
// the file race and the last writer wins.
type FileCache struct {
	path string

	mu      sync.Mutex
	entries map[string]*model.CostEstimate
}

// NewFile opens (or creates) a file cache at path. A missing file starts
// empty; an unreadable or corrupt file degrades to an empty cache with a
// warning, never an error.
func NewFile(path string) (*FileCache, error) {
	if path == "" {
		return nil, eris.New("cache: file path is required")
	}

	c := &FileCache{
		path:    path,
		entries: make(map[string]*model.CostEstimate),
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run.
	case err != nil:
		zap.L().Warn("cache: unreadable cache file, starting empty",
			zap.String("path", path),
			zap.Error(err),
		)
	default:
		if err := json.Unmarshal(raw, &c.entries); err != nil {
			zap.L().Warn("cache: corrupt cache file, starting empty",
				zap.String("path", path),
				zap.Error(err),
			)
			c.entries = make(map[string]*model.CostEstimate)
		}
	}

	return c, nil
}

// Get returns the cached estimate for key, if any.
func (c *FileCache) Get(_ context.Context, key string) (*model.CostEstimate, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := *e
	return &cp, true, nil
}

// Put stores the estimate and rewrites the whole file.
func (c *FileCache) Put(_ context.Context, key string, estimate *model.CostEstimate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *estimate
	c.entries[key] = &cp

	raw, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "cache: marshal entries")
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return eris.Wrapf(err, "cache: write %s", c.path)
	}
	return nil
}

// Len reports the number of cached entries.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close is a no-op for the file backend.
func (c *FileCache) Close() error { return nil }
