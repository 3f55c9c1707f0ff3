package server

import "errors"

var (
	ErrServer      = errors.New("server error")
	ErrSocketInUse = errors.New("socket held by another process")
	ErrNotAllowed  = errors.New("request not allowed on this channel")
	ErrNoGame      = errors.New("no game is running")
)
