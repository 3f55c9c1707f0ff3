// Package games manages the games installed on the cabinet.
//
// A [Manager] moves a game through its lifecycle: metadata is resolved from
// the catalog, the artifact is downloaded and installed into
// <dir>/<id>/, and the installed game is launched as a child process.
//
// Downloads are deduplicated by hash. Each installed game keeps its catalog
// record, including the install reference, in <dir>/<id>/game.json; when the
// catalog reports the same hash, the installed copy is used as is:
//
//	m := games.New(games.Config{
//		Dir:       paths.Games(),
//		Catalog:   client,
//		Installer: install.NewArchive(policy),
//		Cache:     cache,
//	})
//	if err := m.Launch(ctx, id); err != nil {
//		return err
//	}
//
// The manager also tracks the current game, the one launched most recently.
// Save data requested by a running game is scoped to it.
package games
