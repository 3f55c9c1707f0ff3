package runtime

import (
	"errors"
	"os"
	"os/exec"
	"sync"
)

// Snapshot of a child process's state.
type Status struct {
	Running  bool  // Still running.
	ExitCode int   // Exit code once exited; -1 if killed by a signal.
	Err      error // Wait error, nil for a zero exit.
}

// Returns a short description such as "running" or "exit status 1".
func (s Status) String() string {
	switch {
	case s.Running:
		return "running"
	case s.Err != nil:
		return s.Err.Error()
	default:
		return "exit status 0"
	}
}

// A started child process.
//
// The process is reaped by a background goroutine, so Status never blocks.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error // Set before done is closed.
}

func newProcess(cmd *exec.Cmd) *Process {
	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p
}

// Returns the operating system process id.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Returns a channel closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Reports the process state without blocking.
func (p *Process) Status() Status {
	select {
	case <-p.done:
	default:
		return Status{Running: true}
	}

	st := Status{Err: p.err}
	var exitErr *exec.ExitError
	switch {
	case p.err == nil:
	case errors.As(p.err, &exitErr):
		st.ExitCode = exitErr.ExitCode()
	default:
		st.ExitCode = -1
	}
	return st
}

// Kills the process. Killing an exited process is not an error.
func (p *Process) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Blocks until the process exits and returns its wait error.
func (p *Process) Wait() error {
	<-p.done
	return p.err
}

// Holds the launched game process until it exits.
//
// The slot keeps at most one process. Launching a new game replaces the
// previous process, which is then no longer tracked.
type Slot struct {
	mu    sync.Mutex
	proc  *Process
	label string
}

// Stores p under label and returns the process it replaced, if any.
func (s *Slot) Put(label string, p *Process) *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.proc
	s.proc, s.label = p, label
	return prev
}

// Returns the held process and its label.
func (s *Slot) Get() (string, *Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label, s.proc
}

// Clears the slot if its process has exited, returning what was held and
// its final status. ok is false when the slot is empty or still running.
func (s *Slot) Reap() (label string, st Status, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.proc == nil {
		return "", Status{}, false
	}
	st = s.proc.Status()
	if st.Running {
		return "", st, false
	}

	label = s.label
	s.proc, s.label = nil, ""
	return label, st, true
}
