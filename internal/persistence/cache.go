package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/natefinch/atomic"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

// File suffix of a persisted group.
const saveExt = ".save"

// A write-back key/value cache over per-group save files.
//
// Groups are loaded from disk on first touch and are authoritative in memory
// from then on; disk is never re-read for a cached group. Writes only mark
// the group dirty. [Cache.Flush] writes every dirty group back.
//
// One mutex guards both the group map and the dirty set, so every dirty
// group is always present in the map.
type Cache struct {
	root   string                       // Save directory root.
	mu     sync.Mutex                   // Guards groups and dirty.
	groups map[string]map[string]string // Group path to key/value pairs.
	dirty  map[string]struct{}          // Group paths with unflushed writes.
}

// Creates an empty cache rooted at dir. Nothing is read until first access.
func New(dir string) *Cache {
	return &Cache{
		root:   dir,
		groups: make(map[string]map[string]string),
		dirty:  make(map[string]struct{}),
	}
}

// Returns the save directory root.
func (c *Cache) Root() string {
	return c.root
}

// Stores value under key in group and marks the group dirty.
//
// A group is a slash-separated name such as "8a1f/scores/level1". All but the
// last segment select a directory under the root; the last segment names the
// save file.
func (c *Cache) Save(group, key, value string) error {
	gp, err := groupPath(group)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.loadLocked(gp)
	if err != nil {
		return err
	}

	data[key] = value
	c.dirty[gp] = struct{}{}
	return nil
}

// Returns the value stored under key in group, loading the group from disk
// if it is not cached yet.
func (c *Cache) Load(group, key string) (string, error) {
	gp, err := groupPath(group)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.loadLocked(gp)
	if err != nil {
		return "", err
	}

	v, ok := data[key]
	if !ok {
		return "", fmt.Errorf("%w: %q in group %q: %w", ErrKeyNotFound, key, gp, errdefs.ErrNotFound)
	}
	return v, nil
}

// Writes every dirty group to disk.
//
// Groups are written in sorted order. Each group leaves the dirty set only
// once its file has been written, so a failure keeps the failed group and
// everything after it dirty for the next flush.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

// Flushes, then drops every cached group. Nothing is dropped if the flush
// fails.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.flushLocked(); err != nil {
		return err
	}

	slog.Info("persistence cache cleared", "groups", len(c.groups))
	clear(c.groups)
	return nil
}

// Returns the number of key/value pairs across all cached groups.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, data := range c.groups {
		n += len(data)
	}
	return n
}

// Returns the number of groups awaiting a flush.
func (c *Cache) Dirty() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dirty)
}

func (c *Cache) flushLocked() error {
	if len(c.dirty) == 0 {
		return nil
	}

	pending := make([]string, 0, len(c.dirty))
	for gp := range c.dirty {
		pending = append(pending, gp)
	}
	slices.Sort(pending)

	slog.Debug("flushing persistence cache", "groups", len(pending))

	var errs []error
	for _, gp := range pending {
		if err := c.writeGroup(gp, c.groups[gp]); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(c.dirty, gp)
	}
	return errors.Join(errs...)
}

// Returns the cached group, loading it from disk or creating it empty.
func (c *Cache) loadLocked(gp string) (map[string]string, error) {
	if data, ok := c.groups[gp]; ok {
		return data, nil
	}

	data := make(map[string]string)

	raw, err := os.ReadFile(c.file(gp))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, gp, err)
	default:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, gp, err)
		}
	}

	c.groups[gp] = data
	return data, nil
}

func (c *Cache) writeGroup(gp string, data map[string]string) error {
	path := c.file(gp)

	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFlush, gp, err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFlush, gp, err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFlush, gp, err)
	}
	return nil
}

func (c *Cache) file(gp string) string {
	return filepath.Join(c.root, filepath.FromSlash(gp)) + saveExt
}

// Validates a group name and returns its canonical path. Empty segments and
// dot segments are rejected so a group can never leave the root. A directory
// segment may not end in the save extension, since it would collide with
// the file of the group named by the path up to it.
func groupPath(group string) (string, error) {
	if group == "" {
		return "", fmt.Errorf("%w: empty: %w", ErrInvalidGroup, errdefs.ErrInvalidArgument)
	}
	segs := strings.Split(group, "/")
	for i, seg := range segs {
		if i < len(segs)-1 && strings.HasSuffix(seg, saveExt) {
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidGroup, group, errdefs.ErrInvalidArgument)
		}
		switch seg {
		case "", ".", "..":
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidGroup, group, errdefs.ErrInvalidArgument)
		}
		if strings.ContainsRune(seg, 0) {
			return "", fmt.Errorf("%w: %q: %w", ErrInvalidGroup, group, errdefs.ErrInvalidArgument)
		}
	}
	return group, nil
}
