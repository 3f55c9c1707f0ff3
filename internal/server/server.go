package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

// Holds server configuration.
type Config struct {
	SocketPath string      // Path of the Unix socket to bind.
	Channel    Channel     // Who connects and what they may request.
	Dispatcher *Dispatcher // Handles decoded requests.
}

// Serves one channel on a Unix domain socket.
//
// A Server is a restartable task: each call to [Server.Serve] binds a fresh
// listener, serves until the context is cancelled or the listener fails,
// and releases the socket before returning.
type Server struct {
	socketPath string
	channel    Channel
	dispatcher *Dispatcher

	mu    sync.Mutex            // Guards conns.
	conns map[net.Conn]struct{} // Open connections, closed on shutdown.
}

// Creates a new server. The socket is not opened until [Server.Serve].
func New(cfg Config) *Server {
	return &Server{
		socketPath: cfg.SocketPath,
		channel:    cfg.Channel,
		dispatcher: cfg.Dispatcher,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Returns the channel name.
func (s *Server) Name() string {
	return s.channel.Name
}

// Binds the socket and accepts connections until ctx is cancelled.
//
// Returns nil after a shutdown requested through ctx. Any other return is a
// fault: the socket could not be bound or the listener failed.
// Connections are closed and joined before returning either way.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := Listen(s.socketPath)
	if err != nil {
		return err
	}

	slog.Info("server listening on socket", "channel", s.channel.Name, "path", s.socketPath)

	stop := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stop()

	var wg sync.WaitGroup
	err = s.accept(ctx, listener, &wg)

	listener.Close()
	s.closeConns()
	wg.Wait()

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Accepts connections until the listener fails.
func (s *Server) accept(ctx context.Context, listener net.Listener, wg *sync.WaitGroup) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: accept on %s: %w", ErrServer, s.socketPath, err)
		}

		s.track(conn)
		wg.Go(func() {
			defer s.untrack(conn)
			s.handle(ctx, conn)
		})
	}
}

// Processes a single connection until the peer closes it.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	slog.Debug("client connected", "channel", s.channel.Name)

	if err := serveConn(ctx, conn, conn, s.channel, s.dispatcher); err != nil && ctx.Err() == nil {
		slog.Warn("connection ended with error", "channel", s.channel.Name, "error", err)
		return
	}

	slog.Debug("client disconnected", "channel", s.channel.Name)
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// Closes every open connection so their handlers return.
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

// Writes the daemon PID to the PID file in dir so tooling can detect whether
// the daemon is running and send it signals.
func WritePID(dir string) error {
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(paths.PIDFile(dir), []byte(strconv.Itoa(os.Getpid())), paths.DefaultFileMode)
}

// Removes the PID file in dir.
func RemovePID(dir string) error {
	err := os.Remove(paths.PIDFile(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
