package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/protocol"
)

// Serializes complete response lines onto a shared stream.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) write(resp protocol.Response) error {
	line, err := protocol.EncodeLine(resp)
	if err != nil {
		return err
	}

	lw.mu.Lock()
	defer lw.mu.Unlock()

	_, err = lw.w.Write(line)
	return err
}

// Runs the request loop for one logical connection.
//
// Lines are read from r until EOF or a read error. Each line that decodes is
// dispatched on its own goroutine and answered on w; lines that do not
// decode are logged and dropped. Responses may be written in any order, each
// one as a whole line. Once reading stops, in-flight requests are awaited
// before returning.
func serveConn(ctx context.Context, r io.Reader, w io.Writer, ch Channel, d *Dispatcher) error {
	reader := bufio.NewReader(r)
	out := &lineWriter{w: w}

	var g errgroup.Group

	var readErr error
	for {
		line, err := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var req protocol.Request
			if derr := json.Unmarshal(line, &req); derr != nil {
				slog.Debug("dropping malformed request", "channel", ch.Name, "error", derr)
			} else {
				g.Go(func() error {
					return respond(ctx, out, ch, d, req)
				})
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = fmt.Errorf("%w: read: %w", ErrServer, err)
			}
			break
		}
	}

	return errors.Join(readErr, g.Wait())
}

// Dispatches one request and writes its response.
func respond(ctx context.Context, out *lineWriter, ch Channel, d *Dispatcher, req protocol.Request) error {
	slog.Debug("request received", "channel", ch.Name, "request", req)

	resp := protocol.Response{ID: req.ID, Body: d.Dispatch(ctx, ch, req.Body)}

	if e, ok := resp.Body.(protocol.Err); ok {
		slog.Info("request failed", "channel", ch.Name, "request", req, "error", e.Message)
	}

	if err := out.write(resp); err != nil {
		slog.Warn("failed to write response", "channel", ch.Name, "request", req, "error", err)
		return fmt.Errorf("%w: write: %w", ErrServer, err)
	}
	return nil
}
