package server

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/catalog"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/protocol"
)

// Catalog passthrough operations.
type Catalog interface {
	ListGames(ctx context.Context) ([]catalog.Game, error)
	ListTags(ctx context.Context) ([]catalog.Tag, error)
	GetTag(ctx context.Context, name string) (catalog.Tag, error)
	ListTagGames(ctx context.Context, name string) ([]catalog.Game, error)
	GetUser(ctx context.Context, id string) (catalog.User, error)
	SetProduction(prod bool)
}

// Game lifecycle operations.
type Games interface {
	Resolve(ctx context.Context, id string) (catalog.Game, error)
	Download(ctx context.Context, id string) (catalog.Game, error)
	DownloadIcon(ctx context.Context, id string) error
	DownloadBanner(ctx context.Context, id string) error
	Launch(ctx context.Context, id string) error
	Current() (catalog.Game, bool)
	ListInstalled() ([]catalog.Game, error)
}

// Save data operations.
type Store interface {
	Save(group, key, value string) error
	Load(group, key string) (string, error)
	Flush() error
	Clear() error
}

// Badge reader operations.
type Badges interface {
	Tags(ctx context.Context, gameID string) (*string, error)
	User(ctx context.Context, handle string) (map[string]any, error)
}

// Holds dispatcher dependencies.
type DispatcherConfig struct {
	Catalog Catalog
	Games   Games
	Store   Store
	Badges  Badges
}

// Maps requests to responses.
//
// Every request kind has exactly one success response shape; every failure
// becomes an Err response carrying the cause.
type Dispatcher struct {
	catalog Catalog
	games   Games
	store   Store
	badges  Badges
}

// Creates a new dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		catalog: cfg.Catalog,
		games:   cfg.Games,
		store:   cfg.Store,
		badges:  cfg.Badges,
	}
}

// Handles a single request body received on ch.
//
// Kinds the channel does not accept are rejected without being handled.
func (d *Dispatcher) Dispatch(ctx context.Context, ch Channel, body protocol.RequestBody) protocol.ResponseBody {
	if body == nil {
		return protocol.Err{Message: "empty request"}
	}
	if !ch.Kinds.Allows(body.Kind()) {
		return protocol.Error(fmt.Errorf("%w: %s on %s: %w", ErrNotAllowed, body.Kind(), ch.Name, errdefs.ErrPermissionDenied))
	}

	resp, err := d.handle(ctx, ch, body)
	if err != nil {
		return protocol.Error(err)
	}
	return resp
}

func (d *Dispatcher) handle(ctx context.Context, ch Channel, body protocol.RequestBody) (protocol.ResponseBody, error) {
	switch req := body.(type) {
	case protocol.Ping:
		return protocol.Pong{}, nil

	case protocol.GetGameList:
		games, err := d.catalog.ListGames(ctx)
		return protocol.GameList{Games: games}, err

	case protocol.GetGameListFromFs:
		games, err := d.games.ListInstalled()
		return protocol.GameList{Games: games}, err

	case protocol.GetGame:
		game, err := d.games.Resolve(ctx, req.ID)
		return protocol.Game{Game: game}, err

	case protocol.DownloadGame:
		game, err := d.games.Download(ctx, req.ID)
		return protocol.Game{Game: game}, err

	case protocol.DownloadIcon:
		return protocol.Ok{}, d.games.DownloadIcon(ctx, req.ID)

	case protocol.DownloadBanner:
		return protocol.Ok{}, d.games.DownloadBanner(ctx, req.ID)

	case protocol.GetTagList:
		tags, err := d.catalog.ListTags(ctx)
		return protocol.TagList{Tags: tags}, err

	case protocol.GetTag:
		tag, err := d.catalog.GetTag(ctx, req.Name)
		return protocol.Tag{Tag: tag}, err

	case protocol.GetGameListFromTag:
		games, err := d.catalog.ListTagGames(ctx, req.Name)
		return protocol.GameList{Games: games}, err

	case protocol.GetUser:
		user, err := d.catalog.GetUser(ctx, req.ID)
		return protocol.User{User: user}, err

	case protocol.SetProduction:
		d.catalog.SetProduction(req.Production)
		return protocol.Ok{}, nil

	case protocol.LaunchGame:
		return protocol.Ok{}, d.games.Launch(ctx, req.ID)

	case protocol.GetNfcTags:
		if req.Player != protocol.P1 {
			return nil, fmt.Errorf("no badge reader for player %q: %w", req.Player, errdefs.ErrNotFound)
		}
		game, _ := d.games.Current()
		handle, err := d.badges.Tags(ctx, game.ID)
		return protocol.NfcTags{AssociationID: handle}, err

	case protocol.GetNfcUser:
		user, err := d.badges.User(ctx, req.AssociationID)
		return protocol.NfcUser{User: user}, err

	case protocol.Save:
		group, err := d.group(ch, req.Group)
		if err != nil {
			return nil, err
		}
		return protocol.Ok{}, d.store.Save(group, req.Key, req.Value)

	case protocol.Load:
		group, err := d.group(ch, req.Group)
		if err != nil {
			return nil, err
		}
		value, err := d.store.Load(group, req.Key)
		return protocol.Object{Value: value}, err

	case protocol.Flush:
		return protocol.Ok{}, d.store.Flush()

	case protocol.ClearCache:
		return protocol.Ok{}, d.store.Clear()
	}

	return nil, fmt.Errorf("unhandled request %s: %w", body.Kind(), errdefs.ErrNotImplemented)
}

// Returns the save group a request addresses. On a scoped channel groups are
// confined to the current game.
func (d *Dispatcher) group(ch Channel, group string) (string, error) {
	if !ch.Scoped {
		return group, nil
	}
	game, ok := d.games.Current()
	if !ok || game.ID == "" {
		return "", fmt.Errorf("%w: %w", ErrNoGame, errdefs.ErrFailedPrecondition)
	}
	return game.ID + "/" + group, nil
}
