package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/catalog"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/environ"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/games"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/install"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/nfc"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/persistence"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/server"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/supervisor"
)

// Represents the 'devcaded start' command.
type StartCmd struct{}

// Executes the start command.
//
// Serves the front-end and game channels and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM). Unsaved data is flushed on the way
// out.
func (c *StartCmd) Run(ctx context.Context, root *RootCmd) error {
	cfg, err := environ.Load()
	if err != nil {
		return err
	}
	if root.SocketDir != "" {
		cfg.RuntimeDir = root.SocketDir
	}

	client := catalog.New(catalog.Config{
		APIDomain:    cfg.APIDomain,
		DevAPIDomain: cfg.DevAPIDomain,
		Production:   cfg.Production,
	})

	cache := persistence.New(cfg.SaveDir)

	badges, err := openBadges(ctx, cfg.NFCDevice, client)
	if err != nil {
		return err
	}

	gameSocket := paths.GameSocket(cfg.RuntimeDir)
	manager := games.New(games.Config{
		Dir:     cfg.GamesDir,
		Catalog: client,
		Installer: install.NewArchive(install.DefaultPolicy(
			gameSocket,
			paths.PersistenceSocket(cfg.RuntimeDir),
		)),
		Cache:      cache,
		GameSocket: gameSocket,
	})

	dispatcher := server.NewDispatcher(server.DispatcherConfig{
		Catalog: client,
		Games:   manager,
		Store:   cache,
		Badges:  badges,
	})

	tasks := []supervisor.Task{
		frontendTask(root.Transport, cfg.RuntimeDir, dispatcher),
		server.New(server.Config{
			SocketPath: gameSocket,
			Channel:    server.GameChannel(),
			Dispatcher: dispatcher,
		}),
	}

	if err := server.WritePID(cfg.RuntimeDir); err != nil {
		return err
	}
	defer func() {
		if err := server.RemovePID(cfg.RuntimeDir); err != nil {
			slog.Warn("failed to remove pid file", "error", err)
		}
	}()

	slog.Info("devcaded is running",
		"runtime", cfg.RuntimeDir,
		"saves", cfg.SaveDir,
		"games", cfg.GamesDir,
		"transport", root.Transport,
		"nfc", badges.Enabled(),
	)

	sup := supervisor.New(supervisor.Config{Tasks: tasks, Slot: manager.Slot()})
	if err := sup.Run(ctx); err != nil {
		return err
	}

	slog.Info("shutting down")
	return cache.Flush()
}

// Builds the front-end server for the chosen transport.
func frontendTask(transport, dir string, d *server.Dispatcher) supervisor.Task {
	if transport == TransportFIFO {
		command, response := paths.FrontendFIFOs(dir)
		return server.NewFIFO(command, response, server.FrontendChannel(), d)
	}
	return server.New(server.Config{
		SocketPath: paths.FrontendSocket(dir),
		Channel:    server.FrontendChannel(),
		Dispatcher: d,
	})
}

// Opens the badge reader at device, or returns a client without a reader
// when device is empty. Users are looked up in the catalog.
func openBadges(ctx context.Context, device string, client *catalog.Client) (*nfc.Client, error) {
	if device == "" {
		return nfc.New(nil), nil
	}

	reader, err := nfc.OpenDevice(ctx, device, catalogUser(client))
	if err != nil {
		return nil, err
	}
	return nfc.New(reader), nil
}

// Adapts catalog user lookups to the badge reader's record shape.
func catalogUser(client *catalog.Client) nfc.UserLookup {
	return func(ctx context.Context, id string) (map[string]any, error) {
		user, err := client.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(user)
		if err != nil {
			return nil, fmt.Errorf("encode user: %w", err)
		}
		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		return record, nil
	}
}
