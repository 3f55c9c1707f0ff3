package games

import "errors"

var (
	ErrInvalidID    = errors.New("invalid game id")
	ErrResolve      = errors.New("failed to resolve game")
	ErrDownload     = errors.New("failed to download game")
	ErrHashMismatch = errors.New("artifact does not match hash")
	ErrLaunch       = errors.New("failed to launch game")
)
