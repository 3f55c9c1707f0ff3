// Package catalog is the HTTP client for the remote game catalog.
//
// The catalog serves game, tag and user records as JSON and game artifacts,
// icons and banners as raw bytes. Two hosts are configured, production and
// development, and [Client.SetProduction] flips between them at runtime.
//
//	c := catalog.New(catalog.Config{
//		APIDomain:    "api.devcade.example",
//		DevAPIDomain: "api-dev.devcade.example",
//		Production:   true,
//	})
//	games, err := c.ListGames(ctx)
//
// Errors carry an errdefs class: a missing record is [errdefs.ErrNotFound],
// a transport failure or unexpected status is [errdefs.ErrUnavailable].
package catalog
