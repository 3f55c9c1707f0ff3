package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/runtime"
)

// Interval between restart attempts and game reaping.
const DefaultTick = time.Second

// A long-running unit of work, such as a protocol server.
//
// Serve blocks until ctx is cancelled or the task fails. It must be safe to
// call again after it returns.
type Task interface {
	Name() string
	Serve(ctx context.Context) error
}

// Holds supervisor configuration.
type Config struct {
	Tasks []Task
	Slot  *runtime.Slot // Game process slot to reap; may be nil.
	Tick  time.Duration // Zero means DefaultTick.
}

// Runs tasks and restarts them when they stop.
type Supervisor struct {
	tasks []Task
	slot  *runtime.Slot
	tick  time.Duration
}

// Reported by a task goroutine when Serve returns.
type exit struct {
	task int
	err  error
}

// Creates a new supervisor.
func New(cfg Config) *Supervisor {
	tick := cfg.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Supervisor{tasks: cfg.Tasks, slot: cfg.Slot, tick: tick}
}

// Starts every task and supervises them until ctx is cancelled, then waits
// for the tasks to return. Always returns nil once every task has stopped.
func (s *Supervisor) Run(ctx context.Context) error {
	exits := make(chan exit, len(s.tasks))
	running := 0

	start := func(i int) {
		running++
		go func() {
			exits <- exit{task: i, err: s.tasks[i].Serve(ctx)}
		}()
	}

	for i := range s.tasks {
		start(i)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	stopped := make(map[int]struct{})

	for {
		select {
		case <-ctx.Done():
			for running > 0 {
				e := <-exits
				running--
				if e.err != nil {
					slog.Warn("task stopped with error", "task", s.tasks[e.task].Name(), "error", e.err)
				}
			}
			s.reap()
			return nil

		case e := <-exits:
			running--
			if ctx.Err() != nil {
				continue
			}
			name := s.tasks[e.task].Name()
			if e.err != nil {
				slog.Error("task failed", "task", name, "error", e.err)
			} else {
				slog.Warn("task exited", "task", name)
			}
			stopped[e.task] = struct{}{}

		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			for i := range stopped {
				slog.Info("restarting task", "task", s.tasks[i].Name())
				delete(stopped, i)
				start(i)
			}
			s.reap()
		}
	}
}

// Logs and clears the game slot if the game has exited.
func (s *Supervisor) reap() {
	if s.slot == nil {
		return
	}
	if id, st, ok := s.slot.Reap(); ok {
		slog.Info("game exited", "game", id, "status", st.String(), "code", st.ExitCode)
	}
}
