// Package persistence stores per-game save data.
//
// Data is organized as groups of string key/value pairs. Each group lives in
// its own JSON file, <root>/<group>.save, and is cached in memory once
// touched:
//
//	c := persistence.New(paths.Saves())
//	c.Save("8a1f/scores", "high", "9001")
//	v, err := c.Load("8a1f/scores", "high")
//	err = c.Flush()
//
// Writes are not durable until flushed. Callers flush before switching games
// and on shutdown.
package persistence
