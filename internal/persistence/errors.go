package persistence

import "errors"

var (
	ErrInvalidGroup = errors.New("invalid group")
	ErrKeyNotFound  = errors.New("key not found")
	ErrLoad         = errors.New("failed to load group")
	ErrFlush        = errors.New("failed to flush group")
)
