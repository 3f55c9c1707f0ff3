// Package nfc exposes the cabinet's badge reader to games.
//
// A [Client] wraps a [Reader] and never leaks raw association ids: each
// badge read is turned into a handle bound to the requesting game, and only
// the most recent handles can be traded back for a user record.
//
//	r, err := nfc.OpenDevice(ctx, "/dev/devcade-nfc", lookup)
//	if err != nil {
//		return err
//	}
//	c := nfc.New(r)
//	handle, err := c.Tags(ctx, gameID) // nil when no badge was presented
//
// A client built with a nil reader reports no badges.
package nfc
