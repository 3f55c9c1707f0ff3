// Package supervisor keeps the daemon's server tasks running.
//
// Each task runs on its own goroutine and reports back on a channel when
// it returns. A task that stops while the daemon is still running is
// restarted on the next tick, so a task that cannot start is retried at a
// fixed pace instead of in a busy loop. Each tick also reaps the launched
// game if it has exited.
package supervisor
