package games

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/natefinch/atomic"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/catalog"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

// Files kept in each game's directory.
const (
	recordName = "game.json"
	iconName   = "icon.png"
	bannerName = "banner.png"
)

// Rejects ids that are not a single path segment.
func validateID(id string) error {
	if id == "" || strings.ContainsRune(id, '/') || !filepath.IsLocal(id) {
		return fmt.Errorf("%w: %q: %w", ErrInvalidID, id, errdefs.ErrInvalidArgument)
	}
	return nil
}

// Returns the directory holding everything for one game.
func (m *Manager) gameDir(id string) string {
	return filepath.Join(m.dir, id)
}

// Reads the locally persisted record for a game.
func (m *Manager) readRecord(id string) (catalog.Game, error) {
	return readRecordFile(filepath.Join(m.gameDir(id), recordName))
}

func readRecordFile(path string) (catalog.Game, error) {
	var g catalog.Game
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return g, fmt.Errorf("%s: %w", path, errdefs.ErrNotFound)
		}
		return g, err
	}
	if err := json.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Persists a game record atomically.
func (m *Manager) writeRecord(g catalog.Game) error {
	dir := m.gameDir(g.ID)
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return atomic.WriteFile(filepath.Join(dir, recordName), bytes.NewReader(data))
}

// Returns the records of every installed game.
//
// Each subdirectory of the games directory with a readable game.json counts.
// Unreadable records are logged and skipped. A missing games directory means
// nothing is installed.
func (m *Manager) ListInstalled() ([]catalog.Game, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []catalog.Game{}, nil
	}
	if err != nil {
		return nil, err
	}

	games := make([]catalog.Game, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(m.dir, e.Name(), recordName)
		g, err := readRecordFile(path)
		if err != nil {
			if !errdefs.IsNotFound(err) {
				slog.Warn("skipping unreadable game record", "path", path, "error", err)
			}
			continue
		}
		games = append(games, g)
	}
	return games, nil
}
