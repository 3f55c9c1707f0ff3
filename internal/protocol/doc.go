// Package protocol defines the line-oriented JSON messages exchanged between
// the daemon and its clients.
//
// Every message is one JSON object terminated by a newline. A request carries
// a caller-chosen request_id and a body; the response to it carries the same
// request_id. Bodies use a tag-and-payload envelope:
//
//	{"request_id":7,"body":{"type":"GetGame","data":"8a1f..."}}
//	{"request_id":7,"body":{"type":"Game","data":{"id":"8a1f...",...}}}
//
// Kinds without arguments omit data. Kinds with several arguments carry them
// as a JSON array:
//
//	{"request_id":8,"body":{"type":"Save","data":["scores","high","9001"]}}
//
// Request and response bodies are closed sets. Each variant is its own Go
// type implementing [RequestBody] or [ResponseBody], so handlers dispatch with
// a single type switch:
//
//	var req protocol.Request
//	if err := json.Unmarshal(line, &req); err != nil {
//		return err
//	}
//	switch body := req.Body.(type) {
//	case protocol.Ping:
//		...
//	case protocol.Save:
//		...
//	}
//
// A connection may carry many requests at once and responses can arrive in
// any order. The request_id is the only correlation mechanism.
package protocol
