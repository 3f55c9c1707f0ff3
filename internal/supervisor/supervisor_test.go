package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/runtime"
)

const testTick = 20 * time.Millisecond

// Fails its first failures calls, then serves until cancelled.
type flakyTask struct {
	failures int32
	calls    atomic.Int32
}

func (t *flakyTask) Name() string { return "flaky" }

func (t *flakyTask) Serve(ctx context.Context) error {
	if t.calls.Add(1) <= t.failures {
		return errors.New("bind failed")
	}
	<-ctx.Done()
	return nil
}

func run(t *testing.T, cfg Config) (cancel func()) {
	t.Helper()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(cfg).Run(ctx) }()

	return func() {
		stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("supervisor did not stop")
		}
	}
}

func TestRestartsFailedTask(t *testing.T) {
	task := &flakyTask{failures: 2}
	cancel := run(t, Config{Tasks: []Task{task}, Tick: testTick})

	require.Eventually(t, func() bool {
		return task.calls.Load() == 3
	}, 2*time.Second, 5*time.Millisecond)

	// Healthy now; no further restarts.
	time.Sleep(5 * testTick)
	assert.Equal(t, int32(3), task.calls.Load())

	cancel()
}

func TestRestartRateLimited(t *testing.T) {
	task := &flakyTask{failures: 1 << 30}
	cancel := run(t, Config{Tasks: []Task{task}, Tick: testTick})

	time.Sleep(10 * testTick)
	cancel()

	calls := task.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(2))
	assert.LessOrEqual(t, calls, int32(12), "at most one restart per tick")
}

func TestRunWaitsForTasks(t *testing.T) {
	var stopped atomic.Bool
	task := taskFunc(func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		stopped.Store(true)
		return nil
	})

	cancel := run(t, Config{Tasks: []Task{task}, Tick: testTick})
	time.Sleep(testTick)
	cancel()

	assert.True(t, stopped.Load())
}

func TestReapsExitedGame(t *testing.T) {
	proc, err := runtime.Start(runtime.Command{Path: "/bin/sh", Args: []string{"-c", "exit 3"}})
	require.NoError(t, err)

	slot := &runtime.Slot{}
	slot.Put("pong", proc)

	cancel := run(t, Config{Slot: slot, Tick: testTick})
	defer cancel()

	require.Eventually(t, func() bool {
		_, p := slot.Get()
		return p == nil
	}, 2*time.Second, 5*time.Millisecond)
}

func TestKeepsRunningGame(t *testing.T) {
	proc, err := runtime.Start(runtime.Command{Path: "/bin/sh", Args: []string{"-c", "sleep 5"}})
	require.NoError(t, err)
	t.Cleanup(func() {
		proc.Kill()
		proc.Wait()
	})

	slot := &runtime.Slot{}
	slot.Put("pong", proc)

	cancel := run(t, Config{Slot: slot, Tick: testTick})
	time.Sleep(5 * testTick)
	cancel()

	label, p := slot.Get()
	assert.Equal(t, "pong", label)
	assert.Same(t, proc, p)
}

type taskFunc func(ctx context.Context) error

func (f taskFunc) Name() string                    { return "func" }
func (f taskFunc) Serve(ctx context.Context) error { return f(ctx) }
