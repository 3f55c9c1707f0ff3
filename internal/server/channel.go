package server

import "github.com/matthewlefler/devcade-onboard-ui-revamp/internal/protocol"

// Describes who is on the other end of a listener and what they may ask for.
type Channel struct {
	Name   string           // Used in logs and error messages.
	Kinds  protocol.KindSet // Accepted request kinds.
	Scoped bool             // Save groups are confined to the current game.
}

// The channel the front end uses. Every request kind is accepted.
func FrontendChannel() Channel {
	return Channel{Name: "frontend", Kinds: protocol.FrontendKinds()}
}

// The channel running games use. Only pings, save data and badge requests
// are accepted, and save data is confined to the current game.
func GameChannel() Channel {
	return Channel{Name: "game", Kinds: protocol.GameKinds(), Scoped: true}
}
