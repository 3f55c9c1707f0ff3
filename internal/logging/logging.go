// Package logging builds the daemon's slog logger on top of zap.
//
// All packages log through log/slog. This package only decides where the
// records go: a zap core writing to stderr, console-encoded on a terminal and
// JSON-encoded otherwise. The level lives in a zap.AtomicLevel so it can be
// changed after flag parsing without rebuilding the logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Shared by every logger built with New.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Output options for New.
type Options struct {
	Pretty  bool      // Console encoding instead of JSON.
	Verbose bool      // Include caller information.
	Stream  io.Writer // Destination; nil means stderr.
}

// Creates a logger with the given output options, scoped to name.
func New(name string, opts Options) *slog.Logger {
	stream := opts.Stream
	if stream == nil {
		stream = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if opts.Pretty {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(stream)), level)
	handler := zapslog.NewHandler(core, zapslog.WithName(name), zapslog.WithCaller(opts.Verbose))
	return slog.New(handler)
}

// Sets the minimum level for every logger built with New.
func SetLevel(l slog.Level) {
	switch {
	case l <= slog.LevelDebug:
		level.SetLevel(zapcore.DebugLevel)
	case l <= slog.LevelInfo:
		level.SetLevel(zapcore.InfoLevel)
	case l <= slog.LevelWarn:
		level.SetLevel(zapcore.WarnLevel)
	default:
		level.SetLevel(zapcore.ErrorLevel)
	}
}

// Whether the given file is an interactive terminal.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
