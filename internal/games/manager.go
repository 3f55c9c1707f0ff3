package games

import (
	"bytes"
	"context"
	_ "crypto/sha256" // Registers sha256 for digest.
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/natefinch/atomic"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/singleflight"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/catalog"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/runtime"
)

// Environment variables passed to every launched game.
const (
	EnvGameID     = "DEVCADE_GAME_ID"
	EnvGameSocket = "DEVCADE_GAME_SOCKET"
)

// The catalog operations the manager needs.
type Catalog interface {
	GetGame(ctx context.Context, id string) (catalog.Game, error)
	DownloadArtifact(ctx context.Context, id string, w io.Writer) error
	DownloadIcon(ctx context.Context, id string, w io.Writer) error
	DownloadBanner(ctx context.Context, id string, w io.Writer) error
}

// Installs a downloaded artifact and returns its install reference.
type Installer interface {
	Install(ctx context.Context, bundlePath, installDir string) (string, error)
}

// Writes pending save data to disk.
type Flusher interface {
	Flush() error
}

// Holds manager configuration.
type Config struct {
	Dir        string        // Games directory, one subdirectory per game.
	Catalog    Catalog       // Remote metadata and artifacts.
	Installer  Installer     // Unpacks artifacts.
	Cache      Flusher       // Flushed before every launch.
	Slot       *runtime.Slot // Receives the launched process.
	GameSocket string        // Exposed to games as DEVCADE_GAME_SOCKET.
}

// Downloads, installs and launches games, and tracks the current one.
type Manager struct {
	dir        string
	catalog    Catalog
	installer  Installer
	cache      Flusher
	slot       *runtime.Slot
	gameSocket string

	downloads singleflight.Group // One download per game id at a time.

	mu      sync.Mutex // Guards current.
	current *catalog.Game
}

// Creates a new manager.
func New(cfg Config) *Manager {
	slot := cfg.Slot
	if slot == nil {
		slot = new(runtime.Slot)
	}
	return &Manager{
		dir:        cfg.Dir,
		catalog:    cfg.Catalog,
		installer:  cfg.Installer,
		cache:      cfg.Cache,
		slot:       slot,
		gameSocket: cfg.GameSocket,
	}
}

// Returns the slot holding the launched game process.
func (m *Manager) Slot() *runtime.Slot {
	return m.slot
}

// Returns the most recently launched game, if any.
func (m *Manager) Current() (catalog.Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return catalog.Game{}, false
	}
	return *m.current, true
}

func (m *Manager) setCurrent(g catalog.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = &g
}

// Returns the metadata of a game.
//
// The catalog is asked first. If it cannot answer, the locally persisted
// record is used when the game has been installed before.
func (m *Manager) Resolve(ctx context.Context, id string) (catalog.Game, error) {
	if err := validateID(id); err != nil {
		return catalog.Game{}, err
	}

	remote, err := m.catalog.GetGame(ctx, id)
	if err == nil {
		return remote, nil
	}

	local, lerr := m.readRecord(id)
	if lerr != nil {
		return catalog.Game{}, fmt.Errorf("%w: %s: %w", ErrResolve, id, err)
	}

	slog.Warn("catalog unavailable, using local record", "game", id, "error", err)
	return local, nil
}

// Makes sure the current version of a game is installed and returns its
// record.
//
// When the installed copy carries the same hash as the catalog, nothing is
// fetched. Otherwise the artifact is downloaded, checked against the hash
// when the hash is a content digest, installed, and the updated record is
// persisted. Concurrent calls for the same game share one download.
func (m *Manager) Download(ctx context.Context, id string) (catalog.Game, error) {
	if err := validateID(id); err != nil {
		return catalog.Game{}, err
	}

	v, err, _ := m.downloads.Do(id, func() (any, error) {
		return m.download(ctx, id)
	})
	if err != nil {
		return catalog.Game{}, err
	}
	return v.(catalog.Game), nil
}

func (m *Manager) download(ctx context.Context, id string) (catalog.Game, error) {
	local, lerr := m.readRecord(id)
	installed := lerr == nil && local.InstallReference != ""

	game, err := m.catalog.GetGame(ctx, id)
	if err != nil {
		if installed {
			slog.Warn("catalog unavailable, using installed copy", "game", id, "error", err)
			return local, nil
		}
		return catalog.Game{}, fmt.Errorf("%w: %s: %w", ErrResolve, id, err)
	}

	if installed && local.Hash == game.Hash {
		slog.Debug("game up to date", "game", id, "hash", game.Hash)
		return local, nil
	}

	slog.Info("downloading game", "game", id, "name", game.Name, "hash", game.Hash)

	dir := m.gameDir(id)
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return catalog.Game{}, fmt.Errorf("%w: %w", ErrDownload, err)
	}

	bundle, err := m.fetchArtifact(ctx, game, dir)
	if err != nil {
		return catalog.Game{}, err
	}
	defer os.Remove(bundle)

	ref, err := m.installer.Install(ctx, bundle, dir)
	if err != nil {
		return catalog.Game{}, fmt.Errorf("%w: %s: %w", ErrDownload, id, err)
	}

	game.InstallReference = ref
	if err := m.writeRecord(game); err != nil {
		return catalog.Game{}, fmt.Errorf("%w: %s: %w", ErrDownload, id, err)
	}

	slog.Info("game installed", "game", id, "ref", ref)
	return game, nil
}

// Downloads the artifact into a temporary file inside dir and returns its
// path. A hash that parses as a digest is verified.
func (m *Manager) fetchArtifact(ctx context.Context, game catalog.Game, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "bundle-*.zip")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	path := f.Name()

	fail := func(err error) (string, error) {
		f.Close()
		os.Remove(path)
		return "", err
	}

	var (
		w        io.Writer = f
		verifier digest.Verifier
	)
	if d, err := digest.Parse(game.Hash); err == nil {
		verifier = d.Verifier()
		w = io.MultiWriter(f, verifier)
	}

	if err := m.catalog.DownloadArtifact(ctx, game.ID, w); err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrDownload, game.ID, err))
	}

	if verifier != nil && !verifier.Verified() {
		return fail(fmt.Errorf("%w: %s: %s: %w", ErrHashMismatch, game.ID, game.Hash, errdefs.ErrDataLoss))
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return path, nil
}

// Installs a game if needed and starts it.
//
// Pending save data is flushed first so nothing is lost across the switch,
// and the game becomes the current game before its process starts. The
// launch fails if the process exits within [runtime.GuardWindow]. A process
// that survives is handed to the slot.
func (m *Manager) Launch(ctx context.Context, id string) error {
	game, err := m.Download(ctx, id)
	if err != nil {
		return err
	}

	if m.cache != nil {
		if err := m.cache.Flush(); err != nil {
			slog.Warn("failed to flush save cache before launch", "error", err)
		}
	}

	m.setCurrent(game)

	env := []string{EnvGameID + "=" + game.ID}
	if m.gameSocket != "" {
		env = append(env, EnvGameSocket+"="+m.gameSocket)
	}

	cmd, err := runtime.GameCommand(game.InstallReference, game.Name, m.gameDir(id), env)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunch, id, err)
	}

	slog.Info("launching game", "game", id, "name", game.Name, "path", cmd.Path)

	proc, err := runtime.Launch(cmd)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunch, id, err)
	}

	if prev := m.slot.Put(id, proc); prev != nil {
		slog.Warn("replacing tracked game process", "previous_pid", prev.PID(), "pid", proc.PID())
	}
	return nil
}

// Fetches a game's icon into its directory unless it is already there.
func (m *Manager) DownloadIcon(ctx context.Context, id string) error {
	return m.downloadImage(ctx, id, iconName, m.catalog.DownloadIcon)
}

// Fetches a game's banner into its directory unless it is already there.
func (m *Manager) DownloadBanner(ctx context.Context, id string) error {
	return m.downloadImage(ctx, id, bannerName, m.catalog.DownloadBanner)
}

func (m *Manager) downloadImage(ctx context.Context, id, name string, fetch func(context.Context, string, io.Writer) error) error {
	if err := validateID(id); err != nil {
		return err
	}

	path := filepath.Join(m.gameDir(id), name)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}

	var buf bytes.Buffer
	if err := fetch(ctx, id, &buf); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDownload, id, name, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	return nil
}
