package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/containerd/errdefs"
	"golang.org/x/sys/unix"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

const (

	// Group name used to grant socket access. Members of this group can
	// connect to the daemon sockets without owning the process.
	socketGroup = "devcade"

	// File mode applied to the Unix sockets. Owner and group get read-write
	// (required for connect); others get no access.
	socketMode = 0660

	// How long to wait for a possible live holder of the socket path.
	probeTimeout = time.Second
)

// Binds a Unix socket at socketPath.
//
// A leftover socket file from a crashed run makes the bind fail with
// EADDRINUSE. In that case the path is probed: if nothing accepts on it the
// file is stale, so it is removed and the bind retried once. If a live
// process still accepts on it, binding fails with [ErrSocketInUse].
func Listen(socketPath string) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}

	listener, err := net.Listen("unix", socketPath)
	if errors.Is(err, unix.EADDRINUSE) {
		if held(socketPath) {
			return nil, fmt.Errorf("%w: %s: %w", ErrSocketInUse, socketPath, errdefs.ErrConflict)
		}

		slog.Warn("removing stale socket", "path", socketPath)
		if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrServer, err)
		}
		listener, err = net.Listen("unix", socketPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, socketPath, err)
	}

	if err := setSocketPermissions(socketPath); err != nil {
		listener.Close()
		return nil, err
	}

	return listener, nil
}

// Whether a live process accepts connections on socketPath. Only a refused
// or vanished socket counts as free; any other dial error is treated as held.
func held(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, probeTimeout)
	if err == nil {
		conn.Close()
		return true
	}
	return !errors.Is(err, unix.ECONNREFUSED) && !errors.Is(err, unix.ENOENT)
}

// Restricts socket access to owner and group. Any user in the devcade group
// can also connect.
func setSocketPermissions(socketPath string) error {
	if err := os.Chmod(socketPath, socketMode); err != nil {
		return fmt.Errorf("%w: failed to chmod socket %s: %w", ErrServer, socketPath, err)
	}

	if g, err := user.LookupGroup(socketGroup); err == nil {
		if gid, err := strconv.Atoi(g.Gid); err == nil {
			if err := os.Chown(socketPath, -1, gid); err != nil {
				slog.Warn("failed to chgrp socket", "group", socketGroup, "error", err)
			}
		}
	} else {
		slog.Debug("socket group not found, socket accessible to owner only", "group", socketGroup)
	}

	return nil
}
