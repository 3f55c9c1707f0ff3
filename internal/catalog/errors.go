package catalog

import "errors"

var (
	ErrRequest = errors.New("catalog request failed")
	ErrDecode  = errors.New("catalog response malformed")
	ErrNoHost  = errors.New("catalog host not configured")
)
