package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// How long a freshly started game must stay alive to count as launched.
const GuardWindow = 200 * time.Millisecond

// Describes a child process to start.
type Command struct {
	Path string   // Executable path or name looked up in PATH.
	Args []string // Arguments, not including the program name.
	Dir  string   // Working directory.
	Env  []string // KEY=VALUE overrides applied on top of the daemon's environment.
}

// Starts the command as a child process.
//
// Standard output is discarded and standard error is inherited from the
// daemon. The child is not tied to any context; it runs until it exits on
// its own.
func Start(c Command) (*Process, error) {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = mergeEnv(os.Environ(), c.Env)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLaunch, c.Path, err)
	}

	p := newProcess(cmd)
	slog.Debug("process started", "path", c.Path, "pid", p.PID(), "dir", c.Dir)
	return p, nil
}

// Starts the command and waits out [GuardWindow].
//
// A child that has already exited when the window closes is a failed launch,
// whatever its exit status. A child still running is returned to the caller,
// who then owns it.
func Launch(c Command) (*Process, error) {
	p, err := Start(c)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(GuardWindow)
	defer timer.Stop()

	if !survives(p, timer.C) {
		st := p.Status()
		return nil, fmt.Errorf("%w: %s: %s", ErrExitedImmediately, c.Path, st)
	}
	return p, nil
}

// Waits until expired fires or p exits and reports whether p is still
// running. An exit that is ready together with expiry counts as an exit.
func survives(p *Process, expired <-chan time.Time) bool {
	select {
	case <-p.Done():
		return false
	case <-expired:
	}

	select {
	case <-p.Done():
		return false
	default:
		return true
	}
}
