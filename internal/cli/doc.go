// Parses flags and configures logging for the devcaded daemon.
//
// The daemon accepts the following flags:
//
//	-q, --quiet        Suppress informational output.
//	-v, --verbose      Enable verbose output.
//	-d, --debug        Enable debug output.
//	-s, --socket-dir   Directory for sockets, FIFOs and the PID file.
//	    --transport    Front-end transport, "socket" or "fifo".
//
// Flags override build-time defaults set via linker flags and the DEVCADE_*
// environment. After parsing, the global logger is rebuilt to reflect the
// final level and verbosity before the servers start.
package cli
