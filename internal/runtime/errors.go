package runtime

import "errors"

var (
	ErrLaunch            = errors.New("launch failed")
	ErrExitedImmediately = errors.New("launched but exited immediately")
	ErrNoExecutable      = errors.New("no executable found")
)
