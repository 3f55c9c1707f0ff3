package main

import (
	"log/slog"
	"os"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/cli"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/logging"
)

// The entry point for the devcaded daemon.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero code.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("devcaded is starting",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates a logger seeded from build-time linker flags.
//
// The logger is rebuilt after flag parsing via cli.Execute.
func logger() *slog.Logger {
	logging.SetLevel(logLevel())
	return logging.New(internal.Name, logging.Options{
		Pretty: logging.IsTerminal(os.Stderr),
	})
}

// Returns the log level derived from build-time linker flags.
func logLevel() slog.Level {
	if internal.IsDebug() {
		return slog.LevelDebug
	}
	if internal.IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
