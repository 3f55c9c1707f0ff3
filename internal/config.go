package internal

import (
	"strconv"
	"sync/atomic"
)

// Process-wide output switches. They are set once from linker flags and once
// more from the command line, before any server goroutine starts.
var (
	quiet   atomic.Bool
	debug   atomic.Bool
	verbose atomic.Bool
)

func init() {
	seed(&quiet, rawQuiet)
	seed(&debug, rawDebug)
	seed(&verbose, rawVerbose)
}

func seed(flag *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		flag.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) { quiet.Store(enabled) }

// Returns true if quiet mode is enabled.
func IsQuiet() bool { return quiet.Load() }

// Enables or disables debug logging.
func SetDebug(enabled bool) { debug.Store(enabled) }

// Returns true if debug logging is enabled.
func IsDebug() bool { return debug.Load() }

// Enables or disables verbose log formatting.
func SetVerbose(enabled bool) { verbose.Store(enabled) }

// Returns true if verbose log formatting is enabled.
func IsVerbose() bool { return verbose.Load() }
