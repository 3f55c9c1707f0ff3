package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/logging"
)

// Front-end transports accepted by --transport.
const (
	TransportSocket = "socket"
	TransportFIFO   = "fifo"
)

// Represents the root command for the devcaded daemon.
type RootCmd struct {
	Quiet     bool       `short:"q" help:"Suppress informational output."`
	Verbose   bool       `short:"v" help:"Enable verbose output."`
	Debug     bool       `short:"d" help:"Enable debug output."`
	SocketDir string     `short:"s" help:"Override the runtime directory holding the sockets." placeholder:"DIR"`
	Transport string     `enum:"socket,fifo" default:"socket" help:"Front-end transport (${enum})."`
	Start     StartCmd   `cmd:"" help:"Start the daemon."`
	Version   VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var root RootCmd
	kongCtx := kong.Parse(&root,
		kong.Name(internal.Name),
		kong.Description("The Devcade cabinet daemon.\n\nServes the front end and running games over Unix domain sockets."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&root),
	)

	configureLogger(&root)

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger(root *RootCmd) {
	if root.Debug {
		internal.SetDebug(true)
	}
	if root.Quiet {
		internal.SetQuiet(true)
	}
	if root.Verbose {
		internal.SetVerbose(true)
	}

	switch {
	case internal.IsDebug():
		logging.SetLevel(slog.LevelDebug)
	case internal.IsQuiet():
		logging.SetLevel(slog.LevelWarn)
	default:
		logging.SetLevel(slog.LevelInfo)
	}

	slog.SetDefault(logging.New(internal.Name, logging.Options{
		Pretty:  logging.IsTerminal(os.Stderr),
		Verbose: internal.IsVerbose(),
	}))
}
