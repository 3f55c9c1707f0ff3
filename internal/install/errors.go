package install

import "errors"

var (
	ErrInstall    = errors.New("install failed")
	ErrDisallowed = errors.New("capability not allowed")
	ErrMetadata   = errors.New("invalid bundle metadata")
	ErrUnsafePath = errors.New("archive entry escapes install directory")
)
