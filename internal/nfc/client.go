package nfc

import (
	"context"
	_ "crypto/sha256" // Registers sha256 for digest.
	"fmt"
	"log/slog"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/opencontainers/go-digest"
)

// Number of recent association handles remembered for user lookups.
const ringSize = 8

// A badge reader.
type Reader interface {

	// Returns the association id of a badge presented since the last poll,
	// or ok false if none was.
	Poll(ctx context.Context) (associationID string, ok bool, err error)

	// Returns the user record behind an association id.
	FetchUser(ctx context.Context, associationID string) (map[string]any, error)
}

type entry struct {
	handle        string
	associationID string
}

// Hands out per-game badge handles and resolves them back to users.
//
// Games never see raw association ids. Each id is hashed together with the
// id of the game that asked, so the same badge yields unrelated handles in
// different games. Only the last few handles can be resolved.
type Client struct {
	reader Reader
	mu     sync.Mutex // Serializes reader access and guards ring.
	ring   [ringSize]entry
	next   int
	count  int
}

// Creates a client. A nil reader disables badge reading: polls report no
// badge and user lookups fail.
func New(reader Reader) *Client {
	return &Client{reader: reader}
}

// Whether a reader is attached.
func (c *Client) Enabled() bool {
	return c.reader != nil
}

// Polls the reader and returns the handle of the presented badge scoped to
// gameID, or nil if no badge was presented.
func (c *Client) Tags(ctx context.Context, gameID string) (*string, error) {
	if c.reader == nil {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	assoc, ok, err := c.reader.Poll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReader, err)
	}
	if !ok {
		return nil, nil
	}

	handle := Handle(assoc, gameID)
	if _, found := c.lookupLocked(handle); !found {
		c.ring[c.next] = entry{handle: handle, associationID: assoc}
		c.next = (c.next + 1) % ringSize
		c.count = min(c.count+1, ringSize)
		slog.Debug("badge read", "game", gameID)
	}

	return &handle, nil
}

// Returns the user record behind a handle issued by [Client.Tags].
func (c *Client) User(ctx context.Context, handle string) (map[string]any, error) {
	if c.reader == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoReader, errdefs.ErrUnavailable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	assoc, ok := c.lookupLocked(handle)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnknownHandle, errdefs.ErrNotFound)
	}

	user, err := c.reader.FetchUser(ctx, assoc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReader, err)
	}
	return user, nil
}

func (c *Client) lookupLocked(handle string) (string, bool) {
	for i := range c.count {
		if c.ring[i].handle == handle {
			return c.ring[i].associationID, true
		}
	}
	return "", false
}

// Returns the handle for an association id as seen by a game: the hex
// sha256 of "<association id>:<game id>".
func Handle(associationID, gameID string) string {
	return digest.FromString(associationID + ":" + gameID).Encoded()
}
