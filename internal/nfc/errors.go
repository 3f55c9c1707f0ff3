package nfc

import "errors"

var (
	ErrNoReader      = errors.New("no badge reader configured")
	ErrUnknownHandle = errors.New("unknown association handle")
	ErrReader        = errors.New("badge reader failed")
)
