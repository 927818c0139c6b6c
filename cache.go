package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ExtremaCache stores per-property achievable maxima keyed by configuration
// fingerprint. Entries are content-addressed: when any input changes the key
// changes, so stale entries are simply never reused. Two sessions racing to
// populate the same key overwrite each other with identical values, which is
// accepted instead of extra coordination.
type ExtremaCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]float64
}

// NewExtremaCache returns an empty session-scoped cache.
func NewExtremaCache() *ExtremaCache {
	return &ExtremaCache{entries: map[string]map[string]float64{}}
}

// NewExtremaCacheFromDir seeds the cache with every precomputed
// achievable_*.json found in dir. A missing or unreadable directory yields
// an empty cache; individual bad files are skipped.
func NewExtremaCacheFromDir(dir string) *ExtremaCache {
	c := NewExtremaCache()
	matches, err := filepath.Glob(filepath.Join(dir, "achievable_*.json"))
	if err != nil {
		return c
	}
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		stored := map[string]map[string]float64{}
		if err := json.Unmarshal(raw, &stored); err != nil {
			logger.Warnw("skipping malformed extrema file", "path", path, "error", err)
			continue
		}
		for key, maxima := range stored {
			c.entries[key] = maxima
		}
	}
	return c
}

// Get returns the cached maxima for key, if present.
func (c *ExtremaCache) Get(key string) (map[string]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	maxima, ok := c.entries[key]
	return maxima, ok
}

// Put stores maxima under key.
func (c *ExtremaCache) Put(key string, maxima map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = maxima
}

// Len reports how many fingerprints are cached.
func (c *ExtremaCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the maxima for the (settings, rules) fingerprint,
// invoking compute only on a miss. A failed computation is returned to the
// caller and never stored.
func (c *ExtremaCache) GetOrCompute(set *Settings, rs *RuleSet, compute func() (map[string]float64, error)) (map[string]float64, error) {
	key := Fingerprint(set, rs)
	if maxima, ok := c.Get(key); ok {
		if Verbose {
			logger.Debugw("extrema cache hit", "key", key)
		}
		return maxima, nil
	}

	maxima, err := compute()
	if err != nil {
		return nil, fmt.Errorf("compute achievable maxima: %w", err)
	}
	c.Put(key, maxima)
	return maxima, nil
}

// WriteExtremaFile persists a fingerprint→maxima map, the format
// NewExtremaCacheFromDir reads back.
func WriteExtremaFile(path string, entries map[string]map[string]float64) error {
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode extrema: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write extrema: %w", err)
	}
	return nil
}
