package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

// Serves one channel over a pair of named pipes.
//
// This is the legacy front-end transport: requests arrive on the command
// FIFO and responses leave on the response FIFO. The pair carries a single
// long-lived logical connection.
type FIFOServer struct {
	commandPath  string
	responsePath string
	channel      Channel
	dispatcher   *Dispatcher
}

// Creates a FIFO server. The pipes are created on [FIFOServer.Serve] if
// they do not exist.
func NewFIFO(commandPath, responsePath string, ch Channel, d *Dispatcher) *FIFOServer {
	return &FIFOServer{
		commandPath:  commandPath,
		responsePath: responsePath,
		channel:      ch,
		dispatcher:   d,
	}
}

// Returns the channel name.
func (s *FIFOServer) Name() string {
	return s.channel.Name + "-fifo"
}

// Opens both pipes and serves requests until ctx is cancelled or the command
// pipe fails. Returns nil after a shutdown requested through ctx.
func (s *FIFOServer) Serve(ctx context.Context) error {
	for _, path := range []string{s.commandPath, s.responsePath} {
		if err := makeFIFO(path); err != nil {
			return err
		}
	}

	// Read-write so opening does not block until the peer opens its end, and
	// so the command pipe never reports EOF between front-end restarts.
	cmd, err := os.OpenFile(s.commandPath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}
	defer cmd.Close()

	resp, err := os.OpenFile(s.responsePath, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}
	defer resp.Close()

	// Closing the response pipe too unblocks writers stuck on a full pipe.
	stop := context.AfterFunc(ctx, func() {
		cmd.Close()
		resp.Close()
	})
	defer stop()

	slog.Info("server listening on fifo", "channel", s.channel.Name, "command", s.commandPath, "response", s.responsePath)

	err = serveConn(ctx, cmd, resp, s.channel, s.dispatcher)
	if ctx.Err() != nil {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("%w: command pipe closed", ErrServer)
	}
	return err
}

// Creates a named pipe at path unless one already exists.
func makeFIFO(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode()&os.ModeNamedPipe != 0:
		return nil
	case err == nil:
		return fmt.Errorf("%w: %s exists and is not a fifo", ErrServer, path)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrServer, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrServer, err)
	}
	if err := unix.Mkfifo(path, socketMode); err != nil {
		return fmt.Errorf("%w: mkfifo %s: %w", ErrServer, path, err)
	}
	return nil
}
