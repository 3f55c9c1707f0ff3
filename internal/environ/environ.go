// Package environ loads daemon settings from the process environment.
package environ

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/paths"
)

// Settings read from the environment. Empty path fields are filled with the
// XDG defaults from the paths package.
type Config struct {
	RuntimeDir   string `env:"DEVCADE_PATH"`           // Directory for sockets, FIFOs and the PID file.
	SaveDir      string `env:"DEVCADE_SAVE_PATH"`      // Root of the persistence cache.
	GamesDir     string `env:"DEVCADE_GAMES_PATH"`     // Download and install directory.
	APIDomain    string `env:"DEVCADE_API_DOMAIN"`     // Production catalog host.
	DevAPIDomain string `env:"DEVCADE_DEV_API_DOMAIN"` // Development catalog host.
	Production   bool   `env:"DEVCADE_PRODUCTION" envDefault:"true"`
	NFCDevice    string `env:"DEVCADE_NFC_DEVICE"` // Badge reader device; empty disables NFC.
}

// Parses the environment into a Config and applies path defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.RuntimeDir == "" {
		cfg.RuntimeDir = paths.Runtime()
	}
	if cfg.SaveDir == "" {
		cfg.SaveDir = paths.Saves()
	}
	if cfg.GamesDir == "" {
		cfg.GamesDir = paths.Games()
	}

	return cfg, nil
}
