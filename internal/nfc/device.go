package nfc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/containerd/errdefs"
)

// Resolves an association id to a user record.
type UserLookup func(ctx context.Context, associationID string) (map[string]any, error)

// A [Reader] fed by a character device or FIFO that emits one association id
// per line, typically a bridge process in front of the badge hardware.
//
// Lines are consumed in the background. Poll returns the most recent id not
// yet returned; older unread ids are superseded.
type DeviceReader struct {
	path   string
	lookup UserLookup
	file   *os.File

	mu     sync.Mutex
	latest string
	fresh  bool
	err    error
	done   chan struct{}
}

// Opens the device at path and starts reading from it. Reading stops when ctx
// is cancelled or [DeviceReader.Close] is called. lookup may be nil, in which
// case user lookups fail.
func OpenDevice(ctx context.Context, path string, lookup UserLookup) (*DeviceReader, error) {

	// Read-write so opening a FIFO does not wait for a writer.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReader, err)
	}

	d := &DeviceReader{
		path:   path,
		lookup: lookup,
		file:   f,
		done:   make(chan struct{}),
	}

	go d.read(f)
	go func() {
		select {
		case <-ctx.Done():
			d.Close()
		case <-d.done:
		}
	}()

	slog.Info("badge reader opened", "device", path)
	return d, nil
}

func (d *DeviceReader) read(r io.Reader) {
	defer close(d.done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		d.mu.Lock()
		d.latest, d.fresh = id, true
		d.mu.Unlock()
	}

	err := scanner.Err()
	if err == nil || errors.Is(err, os.ErrClosed) {
		err = io.EOF
	}

	d.mu.Lock()
	d.err = err
	d.mu.Unlock()

	slog.Debug("badge reader stopped", "device", d.path, "error", err)
}

// Returns the latest unread association id.
func (d *DeviceReader) Poll(ctx context.Context) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fresh {
		d.fresh = false
		return d.latest, true, nil
	}
	if d.err != nil {
		return "", false, fmt.Errorf("%s: %w: %w", d.path, d.err, errdefs.ErrUnavailable)
	}
	return "", false, nil
}

// Looks up the user through the configured lookup.
func (d *DeviceReader) FetchUser(ctx context.Context, associationID string) (map[string]any, error) {
	if d.lookup == nil {
		return nil, fmt.Errorf("user lookup: %w", errdefs.ErrNotImplemented)
	}
	return d.lookup(ctx, associationID)
}

// Stops reading and closes the device.
func (d *DeviceReader) Close() error {
	return d.file.Close()
}
