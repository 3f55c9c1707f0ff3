package protocol

import "errors"

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownKind = errors.New("unknown kind")
)
