// Package server implements the devcaded protocol servers.
//
// The daemon serves two channels on separate Unix domain sockets. The
// front-end channel accepts every request kind. The game channel is handed
// to the running game and accepts only pings, save data and badge requests;
// its save data is confined to the current game.
//
// A connection carries newline-delimited JSON requests. Each request is
// handled concurrently and answered with a response echoing its request id,
// so responses may arrive in any order. Lines that fail to decode are
// dropped without a response.
//
// Servers are tasks for the supervisor: [Server.Serve] binds the socket,
// serves until the context is cancelled, and can simply be called again
// after a failure.
//
// Example usage:
//
//	d := server.NewDispatcher(server.DispatcherConfig{
//	    Catalog: client,
//	    Games:   manager,
//	    Store:   cache,
//	    Badges:  badges,
//	})
//
//	srv := server.New(server.Config{
//	    SocketPath: paths.FrontendSocket(dir),
//	    Channel:    server.FrontendChannel(),
//	    Dispatcher: d,
//	})
//
//	if err := srv.Serve(ctx); err != nil {
//	    return err
//	}
package server
