package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Subdirectory name under each XDG base directory.
	appName = "devcade"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Directory for runtime files (sockets, FIFOs, PID file).
//
//	Linux:   $XDG_RUNTIME_DIR/devcade or ~/.cache/devcade/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Root directory for per-game save files.
//
//	Linux:   $XDG_DATA_HOME/devcade/saves
func Saves() string {
	return filepath.Join(xdg.DataHome, appName, "saves")
}

// Directory holding one subdirectory per downloaded game.
//
//	Linux:   $XDG_DATA_HOME/devcade/games
func Games() string {
	return filepath.Join(xdg.DataHome, appName, "games")
}

// Socket the front end connects to, inside dir.
func FrontendSocket(dir string) string {
	return filepath.Join(dir, "onboard.sock")
}

// Socket running games connect to, inside dir.
func GameSocket(dir string) string {
	return filepath.Join(dir, "game.sock")
}

// Command and response FIFOs used by the legacy front-end transport.
func FrontendFIFOs(dir string) (command, response string) {
	return filepath.Join(dir, "onboard.cmd.fifo"), filepath.Join(dir, "onboard.resp.fifo")
}

// PID file inside dir.
func PIDFile(dir string) string {
	return filepath.Join(dir, "devcaded.pid")
}

// Socket path older games were built against for save data. Only referenced
// by the install policy so those games can still be installed.
func PersistenceSocket(dir string) string {
	return filepath.Join(dir, "persistence.sock")
}
