// Package hub manages the local model artifact cache and the access token
// used to fetch artifacts that are not cached yet.
package hub

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"wawachat/internal/common/fsutil"
	"wawachat/pkg/types"
)

// Cache scans a directory for *.gguf model files and serves artifact lookups.
// Scans are cached until Invalidate is called (the watcher does this on
// filesystem changes).
type Cache struct {
	dir string

	mu        sync.Mutex
	artifacts []types.Artifact
	scanned   bool
}

// New builds a Cache rooted at dir, expanding a leading '~'. The directory is
// created when missing so a fresh install starts with an empty cache.
func New(dir string) (*Cache, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: abs}, nil
}

// Dir returns the absolute cache directory.
func (c *Cache) Dir() string { return c.dir }

// List returns the cached artifacts sorted by ID, rescanning when needed.
func (c *Cache) List() ([]types.Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.scanLocked(); err != nil {
		return nil, err
	}
	out := make([]types.Artifact, len(c.artifacts))
	copy(out, c.artifacts)
	return out, nil
}

// Resolve looks up one artifact by ID (its filename).
func (c *Cache) Resolve(id string) (types.Artifact, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.scanLocked(); err != nil {
		return types.Artifact{}, false, err
	}
	for _, a := range c.artifacts {
		if a.ID == id {
			return a, true, nil
		}
	}
	return types.Artifact{}, false, nil
}

// Delete removes one artifact from the cache.
func (c *Cache) Delete(id string) error {
	a, ok, err := c.Resolve(id)
	if err != nil {
		return err
	}
	if !ok {
		return errArtifactNotFound{id: id}
	}
	if err := os.Remove(a.Path); err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	c.Invalidate()
	return nil
}

// Clear removes every artifact from the cache directory.
func (c *Cache) Clear() error {
	arts, err := c.List()
	if err != nil {
		return err
	}
	for _, a := range arts {
		if err := os.Remove(a.Path); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	c.Invalidate()
	return nil
}

// TotalSizeMB sums the size of all cached artifacts.
func (c *Cache) TotalSizeMB() (int, error) {
	arts, err := c.List()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, a := range arts {
		total += a.SizeMB
	}
	return total, nil
}

// ExportJSON writes the artifact listing as indented JSON.
func (c *Cache) ExportJSON(w io.Writer) error {
	arts, err := c.List()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(arts)
}

// Invalidate marks the cached scan stale; the next read rescans.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.scanned = false
	c.mu.Unlock()
}

func (c *Cache) scanLocked() error {
	if c.scanned {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	var arts []types.Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		arts = append(arts, types.Artifact{
			ID:      name,
			Path:    filepath.Join(c.dir, name),
			SizeMB:  fsutil.SizeMB(fi),
			ModTime: fi.ModTime(),
		})
	}
	sort.Slice(arts, func(i, j int) bool { return arts[i].ID < arts[j].ID })
	c.artifacts = arts
	c.scanned = true
	return nil
}

type errArtifactNotFound struct{ id string }

func (e errArtifactNotFound) Error() string { return "artifact not found: " + e.id }

// ErrArtifactNotFound constructs the error returned for a missing artifact id.
func ErrArtifactNotFound(id string) error { return errArtifactNotFound{id: id} }

// IsArtifactNotFound reports whether err indicates a missing cache artifact.
func IsArtifactNotFound(err error) bool {
	_, ok := err.(errArtifactNotFound)
	return ok
}
