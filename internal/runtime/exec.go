package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
)

// Suffix of the .NET runtime configuration file shipped next to a game's
// main executable.
const runtimeConfigSuffix = ".runtimeconfig.json"

// Finds the executable of a game unpacked in dir.
//
// The executable is named after the *.runtimeconfig.json file if the game
// ships one, otherwise after the game itself. The result is an absolute path
// to an existing regular file.
func LocateExecutable(dir, gameName string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoExecutable, err)
	}

	var candidates []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasSuffix(name, runtimeConfigSuffix) {
			stem := strings.TrimSuffix(name, runtimeConfigSuffix)
			slog.Debug("executable inferred from runtime config", "file", name, "executable", stem)
			candidates = append(candidates, stem)
			break
		}
	}
	if gameName != "" {
		candidates = append(candidates, gameName)
	}

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: in %s (tried %s): %w", ErrNoExecutable, dir, strings.Join(candidates, ", "), errdefs.ErrNotFound)
}

// Returns the command to run an installed game.
//
// A directory reference is an unpacked game and its executable is run from
// inside it. Anything else is a flatpak application id, run from gameDir.
func GameCommand(ref, gameName, gameDir string, env []string) (Command, error) {
	info, err := os.Stat(ref)
	if err != nil || !info.IsDir() {
		return Command{
			Path: "flatpak",
			Args: []string{"run", ref},
			Dir:  gameDir,
			Env:  env,
		}, nil
	}

	exe, err := LocateExecutable(ref, gameName)
	if err != nil {
		return Command{}, err
	}

	return Command{Path: exe, Dir: ref, Env: env}, nil
}

// Merges override env vars on top of a base env slice. The result is sorted
// by key.
func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for _, entry := range overrides {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}

	result := make([]string, 0, len(merged))
	for k, v := range merged {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}
