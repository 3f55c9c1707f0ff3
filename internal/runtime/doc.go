// Package runtime starts games as child processes of the daemon.
//
// A game is started with [Launch], which applies a short guard window: a
// process that dies within [GuardWindow] of starting is reported as a failed
// launch, even on a clean exit. A process that survives the window is handed
// back as a [Process], whose state can be queried without blocking.
//
// The daemon keeps the running game in a [Slot] and reaps it periodically:
//
//	cmd, err := runtime.GameCommand(ref, game.Name, gameDir, env)
//	if err != nil {
//	    return err
//	}
//
//	proc, err := runtime.Launch(cmd)
//	if err != nil {
//	    return err
//	}
//	slot.Put(game.ID, proc)
//
//	// later, once per tick
//	if id, st, ok := slot.Reap(); ok {
//	    slog.Info("game exited", "game", id, "status", st)
//	}
package runtime
