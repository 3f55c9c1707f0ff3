package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/catalog"
)

// A response sent to a client. ID echoes the request it answers.
type Response struct {
	ID   uint32
	Body ResponseBody
}

// The closed set of response bodies. Only types in this package implement it.
type ResponseBody interface {
	Kind() Kind
	payload() any
}

type (
	Pong struct{}
	Ok   struct{}

	// A failure with a human-readable cause.
	Err struct{ Message string }

	GameList struct{ Games []catalog.Game }
	Game     struct{ Game catalog.Game }
	TagList  struct{ Tags []catalog.Tag }
	Tag      struct{ Tag catalog.Tag }
	User     struct{ User catalog.User }

	// The most recent badge association handle, nil if none was read.
	NfcTags struct{ AssociationID *string }

	// The user record behind an association handle.
	NfcUser struct{ User map[string]any }

	// A single stored value.
	Object struct{ Value string }
)

func (Pong) Kind() Kind     { return KindPong }
func (Ok) Kind() Kind       { return KindOk }
func (Err) Kind() Kind      { return KindErr }
func (GameList) Kind() Kind { return KindGameList }
func (Game) Kind() Kind     { return KindGame }
func (TagList) Kind() Kind  { return KindTagList }
func (Tag) Kind() Kind      { return KindTag }
func (User) Kind() Kind     { return KindUser }
func (NfcTags) Kind() Kind  { return KindNfcTags }
func (NfcUser) Kind() Kind  { return KindNfcUser }
func (Object) Kind() Kind   { return KindObject }

func (Pong) payload() any       { return nil }
func (Ok) payload() any         { return nil }
func (r Err) payload() any      { return r.Message }
func (r GameList) payload() any { return nonNil(r.Games) }
func (r Game) payload() any     { return r.Game }
func (r TagList) payload() any  { return nonNil(r.Tags) }
func (r Tag) payload() any      { return r.Tag }
func (r User) payload() any     { return r.User }
func (r NfcTags) payload() any  { return r.AssociationID }
func (r NfcUser) payload() any  { return r.User }
func (r Object) payload() any   { return r.Value }

// Lists are sent as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Builds an Err body from an error.
func Error(err error) Err {
	return Err{Message: err.Error()}
}

func decodeResponseBody(k Kind, data json.RawMessage) (ResponseBody, error) {
	var (
		body ResponseBody
		err  error
	)

	switch k {
	case KindPong:
		return Pong{}, nil
	case KindOk:
		return Ok{}, nil
	case KindErr:
		var r Err
		err = json.Unmarshal(data, &r.Message)
		body = r
	case KindGameList:
		var r GameList
		err = json.Unmarshal(data, &r.Games)
		body = r
	case KindGame:
		var r Game
		err = json.Unmarshal(data, &r.Game)
		body = r
	case KindTagList:
		var r TagList
		err = json.Unmarshal(data, &r.Tags)
		body = r
	case KindTag:
		var r Tag
		err = json.Unmarshal(data, &r.Tag)
		body = r
	case KindUser:
		var r User
		err = json.Unmarshal(data, &r.User)
		body = r
	case KindNfcTags:
		var r NfcTags
		if len(data) > 0 {
			err = json.Unmarshal(data, &r.AssociationID)
		}
		body = r
	case KindNfcUser:
		var r NfcUser
		err = json.Unmarshal(data, &r.User)
		body = r
	case KindObject:
		var r Object
		err = json.Unmarshal(data, &r.Value)
		body = r
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, k, err)
	}
	return body, nil
}

type responseWire struct {
	RequestID uint32   `json:"request_id"`
	Body      envelope `json:"body"`
}

// Encodes the response as {"request_id":N,"body":{"type":...,"data":...}}.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("%w: response %d has no body", ErrMalformed, r.ID)
	}
	env, err := wrap(r.Body.Kind(), r.Body.payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(responseWire{RequestID: r.ID, Body: env})
}

// Decodes a response envelope.
func (r *Response) UnmarshalJSON(b []byte) error {
	var w responseWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	body, err := decodeResponseBody(w.Body.Type, w.Body.Data)
	if err != nil {
		return err
	}
	r.ID = w.RequestID
	r.Body = body
	return nil
}

func (r Response) LogValue() slog.Value {
	kind := Kind("")
	if r.Body != nil {
		kind = r.Body.Kind()
	}
	attrs := []slog.Attr{
		slog.Any("id", r.ID),
		slog.String("kind", string(kind)),
	}
	if e, ok := r.Body.(Err); ok {
		attrs = append(attrs, slog.String("error", e.Message))
	}
	return slog.GroupValue(attrs...)
}
