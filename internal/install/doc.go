// Package install turns a downloaded game artifact into an installed game.
//
// Artifacts are zip archives. An archive may carry a flatpak-style keyfile
// named "metadata" at its root whose [Context] group lists the sandbox
// capabilities the game wants:
//
//	[Context]
//	shared=network;ipc;
//	sockets=x11;pulseaudio;
//	devices=dri;
//
// Installation is refused when any requested capability falls outside the
// [Policy]. Accepted archives are unpacked into the game's install directory:
//
//	inst := install.NewArchive(install.DefaultPolicy(paths.GameSocket(dir)))
//	ref, err := inst.Install(ctx, "/var/games/8a1f/bundle.zip", "/var/games/8a1f")
package install
