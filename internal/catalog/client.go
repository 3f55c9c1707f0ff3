package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/containerd/errdefs"
	"golang.org/x/sync/errgroup"
)

// Upper bound on concurrent game lookups when expanding a tag listing.
const tagFanOut = 8

// Holds client configuration.
type Config struct {
	APIDomain    string       // Production catalog host, e.g. "api.devcade.example".
	DevAPIDomain string       // Development catalog host.
	Production   bool         // Start against the production host.
	HTTPClient   *http.Client // Nil uses [http.DefaultClient].
}

// Talks to the remote game catalog over HTTP.
//
// The client switches between the production and development hosts at
// runtime; the switch is atomic and affects requests issued after it.
type Client struct {
	prodHost   string
	devHost    string
	production atomic.Bool
	http       *http.Client
}

// Creates a new catalog client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	c := &Client{
		prodHost: cfg.APIDomain,
		devHost:  cfg.DevAPIDomain,
		http:     hc,
	}
	c.production.Store(cfg.Production)
	return c
}

// Selects the production or development host for subsequent requests.
func (c *Client) SetProduction(prod bool) {
	c.production.Store(prod)
	slog.Info("catalog host switched", "production", prod, "host", c.host())
}

// Whether requests currently go to the production host.
func (c *Client) Production() bool {
	return c.production.Load()
}

func (c *Client) host() string {
	if c.production.Load() {
		return c.prodHost
	}
	return c.devHost
}

// Returns the absolute URL for a route. Hosts without a scheme are served
// over https.
func (c *Client) url(route string) (string, error) {
	host := c.host()
	if host == "" {
		return "", fmt.Errorf("%w: %w", ErrNoHost, errdefs.ErrFailedPrecondition)
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/") + "/" + route, nil
}

// Issues a GET for route and returns the open response body.
func (c *Client) get(ctx context.Context, route string) (io.ReadCloser, error) {
	u, err := c.url(route)
	if err != nil {
		return nil, err
	}

	slog.Debug("catalog request", "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrRequest, errdefs.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, route, errdefs.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: %s: %w", ErrRequest, route, resp.Status, errdefs.ErrUnavailable)
	}

	return resp.Body, nil
}

func getJSON[T any](ctx context.Context, c *Client, route string) (T, error) {
	var v T

	body, err := c.get(ctx, route)
	if err != nil {
		return v, err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %s: %w", ErrDecode, route, err)
	}
	return v, nil
}

// Returns every game in the catalog that has an uploaded artifact.
//
// Games without a hash have no build yet and are left out.
func (c *Client) ListGames(ctx context.Context) ([]Game, error) {
	games, err := getJSON[[]Game](ctx, c, "games/")
	if err != nil {
		return nil, err
	}

	out := games[:0]
	for _, g := range games {
		if g.Hash != "" {
			out = append(out, g)
		}
	}
	return out, nil
}

// Returns a single game.
func (c *Client) GetGame(ctx context.Context, id string) (Game, error) {
	return getJSON[Game](ctx, c, "games/"+url.PathEscape(id))
}

// Returns every tag.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	return getJSON[[]Tag](ctx, c, "tags/")
}

// Returns a single tag.
func (c *Client) GetTag(ctx context.Context, name string) (Tag, error) {
	return getJSON[Tag](ctx, c, "tags/"+url.PathEscape(name))
}

// Returns the full records of the games carrying a tag.
//
// The tag route only lists game ids, so each one is looked up separately.
// Games that fail to resolve are logged and skipped; the result keeps the
// order of the listing.
func (c *Client) ListTagGames(ctx context.Context, name string) ([]Game, error) {
	minimal, err := getJSON[[]minimalGame](ctx, c, "tags/"+url.PathEscape(name)+"/games")
	if err != nil {
		return nil, err
	}

	resolved := make([]*Game, len(minimal))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tagFanOut)
	for i, m := range minimal {
		g.Go(func() error {
			game, err := c.GetGame(gctx, m.ID)
			if err != nil {
				slog.Warn("skipping tagged game", "tag", name, "game", m.ID, "error", err)
				return nil
			}
			resolved[i] = &game
			return nil
		})
	}
	g.Wait()

	games := make([]Game, 0, len(resolved))
	for _, game := range resolved {
		if game != nil {
			games = append(games, *game)
		}
	}
	return games, nil
}

// Returns a user.
func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	return getJSON[User](ctx, c, "users/"+url.PathEscape(id))
}

// Streams a game's uploaded artifact into w.
func (c *Client) DownloadArtifact(ctx context.Context, id string, w io.Writer) error {
	return c.copy(ctx, "games/"+url.PathEscape(id)+"/game", w)
}

// Streams a game's icon into w.
func (c *Client) DownloadIcon(ctx context.Context, id string, w io.Writer) error {
	return c.copy(ctx, "games/"+url.PathEscape(id)+"/icon", w)
}

// Streams a game's banner into w.
func (c *Client) DownloadBanner(ctx context.Context, id string, w io.Writer) error {
	return c.copy(ctx, "games/"+url.PathEscape(id)+"/banner", w)
}

func (c *Client) copy(ctx context.Context, route string, w io.Writer) error {
	body, err := c.get(ctx, route)
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequest, route, err)
	}
	return nil
}
