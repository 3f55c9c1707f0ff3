package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name      string
		base      []string
		overrides []string
		want      []string
	}{
		{
			name:      "override existing key",
			base:      []string{"A=1", "B=2"},
			overrides: []string{"A=override"},
			want:      []string{"A=override", "B=2"},
		},
		{
			name:      "add new key",
			base:      []string{"A=1"},
			overrides: []string{"DEVCADE_GAME_ID=pong"},
			want:      []string{"A=1", "DEVCADE_GAME_ID=pong"},
		},
		{
			name:      "empty base",
			base:      nil,
			overrides: []string{"A=1"},
			want:      []string{"A=1"},
		},
		{
			name:      "both empty",
			base:      nil,
			overrides: nil,
			want:      []string{},
		},
		{
			name:      "value with equals sign",
			base:      []string{"CMD=foo=bar"},
			overrides: nil,
			want:      []string{"CMD=foo=bar"},
		},
		{
			name:      "malformed entries skipped",
			base:      []string{"NOEQUALS", "A=1"},
			overrides: []string{"ALSO_BAD", "B=2"},
			want:      []string{"A=1", "B=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeEnv(tt.base, tt.overrides)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("mergeEnv = %v, want %v", got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
}

func TestLocateExecutable(t *testing.T) {
	t.Run("runtime config", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "Pong.runtimeconfig.json"), 0o644)
		writeFile(t, filepath.Join(dir, "Pong"), 0o755)
		writeFile(t, filepath.Join(dir, "Declared"), 0o755)

		got, err := LocateExecutable(dir, "Declared")
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "Pong") {
			t.Fatalf("got %q, want runtime config stem", got)
		}
	})

	t.Run("declared name", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "Tetris"), 0o755)

		got, err := LocateExecutable(dir, "Tetris")
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "Tetris") {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("stale runtime config falls back", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "Gone.runtimeconfig.json"), 0o644)
		writeFile(t, filepath.Join(dir, "Tetris"), 0o755)

		got, err := LocateExecutable(dir, "Tetris")
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(dir, "Tetris") {
			t.Fatalf("got %q", got)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := LocateExecutable(t.TempDir(), "Missing")
		if !errors.Is(err, ErrNoExecutable) {
			t.Fatalf("err = %v, want ErrNoExecutable", err)
		}
	})
}

func TestGameCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Pong"), 0o755)

	cmd, err := GameCommand(dir, "Pong", "/games/pong", []string{"DEVCADE_GAME_ID=pong"})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Path != filepath.Join(dir, "Pong") || cmd.Dir != dir {
		t.Fatalf("unexpected command %+v", cmd)
	}

	cmd, err = GameCommand("org.devcade.Pong", "Pong", "/games/pong", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Path != "flatpak" || !slices.Equal(cmd.Args, []string{"run", "org.devcade.Pong"}) || cmd.Dir != "/games/pong" {
		t.Fatalf("unexpected flatpak command %+v", cmd)
	}
}
