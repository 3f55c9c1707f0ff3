// Provides default filesystem locations for the daemon.
//
// Defaults follow XDG conventions. Every location can be overridden through
// the environment (see the environ package); the helpers taking a dir
// argument derive socket and FIFO names from whatever runtime directory was
// finally chosen.
package paths
