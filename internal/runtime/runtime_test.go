package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func script(t *testing.T, body string) Command {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "game.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return Command{Path: path, Dir: dir}
}

func TestLaunchInstantCleanExitFails(t *testing.T) {
	_, err := Launch(script(t, "exit 0"))
	if !errors.Is(err, ErrExitedImmediately) {
		t.Fatalf("err = %v, want ErrExitedImmediately", err)
	}
}

func TestLaunchInstantFailureFails(t *testing.T) {
	_, err := Launch(script(t, "exit 3"))
	if !errors.Is(err, ErrExitedImmediately) {
		t.Fatalf("err = %v, want ErrExitedImmediately", err)
	}
}

func TestLaunchSurvivesGuard(t *testing.T) {
	start := time.Now()
	p, err := Launch(script(t, "sleep 1"))
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < GuardWindow {
		t.Fatal("launch returned before the guard window elapsed")
	}
	if !p.Status().Running {
		t.Fatal("process should still be running")
	}

	if err := p.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	st := p.Status()
	if st.Running || st.ExitCode != 0 {
		t.Fatalf("status = %+v, want clean exit", st)
	}
}

func TestGuardExitAtExpiry(t *testing.T) {
	p, err := Start(script(t, "exit 0"))
	if err != nil {
		t.Fatal(err)
	}
	p.Wait()

	expired := make(chan time.Time)
	close(expired)

	// Both cases are ready; the exit must win every time.
	for range 100 {
		if survives(p, expired) {
			t.Fatal("exited process reported as surviving the guard")
		}
	}
}

func TestLaunchMissingExecutable(t *testing.T) {
	_, err := Launch(Command{Path: filepath.Join(t.TempDir(), "absent")})
	if !errors.Is(err, ErrLaunch) {
		t.Fatalf("err = %v, want ErrLaunch", err)
	}
}

func TestLaunchEnv(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "env")
	cmd := script(t, `echo "$DEVCADE_GAME_ID" > "`+out+`"; sleep 1`)
	cmd.Env = []string{"DEVCADE_GAME_ID=pong"}

	p, err := Launch(cmd)
	if err != nil {
		t.Fatal(err)
	}
	p.Wait()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pong\n" {
		t.Fatalf("env = %q", data)
	}
}

func TestSlotReap(t *testing.T) {
	var slot Slot

	if _, _, ok := slot.Reap(); ok {
		t.Fatal("empty slot reaped")
	}

	p, err := Start(script(t, "sleep 0.3; exit 4"))
	if err != nil {
		t.Fatal(err)
	}
	if prev := slot.Put("pong", p); prev != nil {
		t.Fatal("empty slot returned a previous process")
	}

	if _, _, ok := slot.Reap(); ok {
		t.Fatal("running process reaped")
	}

	p.Wait()

	label, st, ok := slot.Reap()
	if !ok {
		t.Fatal("exited process not reaped")
	}
	if label != "pong" || st.ExitCode != 4 {
		t.Fatalf("reaped %q %+v", label, st)
	}
	if _, proc := slot.Get(); proc != nil {
		t.Fatal("slot not cleared")
	}
}
