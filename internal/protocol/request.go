package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// A request received from a client.
//
// ID is chosen by the client and echoed verbatim in the response; it is the
// only way to correlate responses on a connection.
type Request struct {
	ID   uint32
	Body RequestBody
}

// The closed set of request bodies. Only types in this package implement it.
type RequestBody interface {
	Kind() Kind
	payload() any
}

// Index of the badge reader a tag lookup is addressed to.
type Player string

const (
	P1 Player = "P1"
	P2 Player = "P2"
)

type (
	Ping              struct{}
	GetGameList       struct{}
	GetGameListFromFs struct{}
	GetTagList        struct{}
	Flush             struct{}
	ClearCache        struct{}

	GetGame            struct{ ID string }
	DownloadGame       struct{ ID string }
	DownloadIcon       struct{ ID string }
	DownloadBanner     struct{ ID string }
	LaunchGame         struct{ ID string }
	GetTag             struct{ Name string }
	GetGameListFromTag struct{ Name string }
	GetUser            struct{ ID string }

	SetProduction struct{ Production bool }
	GetNfcTags    struct{ Player Player }
	GetNfcUser    struct{ AssociationID string }

	Save struct{ Group, Key, Value string }
	Load struct{ Group, Key string }
)

func (Ping) Kind() Kind               { return KindPing }
func (GetGameList) Kind() Kind        { return KindGetGameList }
func (GetGameListFromFs) Kind() Kind  { return KindGetGameListFromFs }
func (GetTagList) Kind() Kind         { return KindGetTagList }
func (Flush) Kind() Kind              { return KindFlush }
func (ClearCache) Kind() Kind         { return KindClearCache }
func (GetGame) Kind() Kind            { return KindGetGame }
func (DownloadGame) Kind() Kind       { return KindDownloadGame }
func (DownloadIcon) Kind() Kind       { return KindDownloadIcon }
func (DownloadBanner) Kind() Kind     { return KindDownloadBanner }
func (LaunchGame) Kind() Kind         { return KindLaunchGame }
func (GetTag) Kind() Kind             { return KindGetTag }
func (GetGameListFromTag) Kind() Kind { return KindGetGameListFromTag }
func (GetUser) Kind() Kind            { return KindGetUser }
func (SetProduction) Kind() Kind      { return KindSetProduction }
func (GetNfcTags) Kind() Kind         { return KindGetNfcTags }
func (GetNfcUser) Kind() Kind         { return KindGetNfcUser }
func (Save) Kind() Kind               { return KindSave }
func (Load) Kind() Kind               { return KindLoad }

func (Ping) payload() any                 { return nil }
func (GetGameList) payload() any          { return nil }
func (GetGameListFromFs) payload() any    { return nil }
func (GetTagList) payload() any           { return nil }
func (Flush) payload() any                { return nil }
func (ClearCache) payload() any           { return nil }
func (r GetGame) payload() any            { return r.ID }
func (r DownloadGame) payload() any       { return r.ID }
func (r DownloadIcon) payload() any       { return r.ID }
func (r DownloadBanner) payload() any     { return r.ID }
func (r LaunchGame) payload() any         { return r.ID }
func (r GetTag) payload() any             { return r.Name }
func (r GetGameListFromTag) payload() any { return r.Name }
func (r GetUser) payload() any            { return r.ID }
func (r SetProduction) payload() any      { return r.Production }
func (r GetNfcTags) payload() any         { return r.Player }
func (r GetNfcUser) payload() any         { return r.AssociationID }
func (r Save) payload() any               { return []string{r.Group, r.Key, r.Value} }
func (r Load) payload() any               { return []string{r.Group, r.Key} }

// Builds an empty body of the given kind for decoding into.
func newRequestBody(k Kind) (RequestBody, bool) {
	switch k {
	case KindPing:
		return Ping{}, true
	case KindGetGameList:
		return GetGameList{}, true
	case KindGetGameListFromFs:
		return GetGameListFromFs{}, true
	case KindGetTagList:
		return GetTagList{}, true
	case KindFlush:
		return Flush{}, true
	case KindClearCache:
		return ClearCache{}, true
	}
	return nil, false
}

// Decodes the data field of a request envelope.
func decodeRequestBody(k Kind, data json.RawMessage) (RequestBody, error) {
	if body, ok := newRequestBody(k); ok {
		return body, nil
	}

	var (
		s    string
		args []string
	)

	switch k {
	case KindGetGame, KindDownloadGame, KindDownloadIcon, KindDownloadBanner,
		KindLaunchGame, KindGetTag, KindGetGameListFromTag, KindGetUser,
		KindGetNfcTags, KindGetNfcUser:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, k, err)
		}
	case KindSave, KindLoad:
		if err := json.Unmarshal(data, &args); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, k, err)
		}
	}

	switch k {
	case KindGetGame:
		return GetGame{ID: s}, nil
	case KindDownloadGame:
		return DownloadGame{ID: s}, nil
	case KindDownloadIcon:
		return DownloadIcon{ID: s}, nil
	case KindDownloadBanner:
		return DownloadBanner{ID: s}, nil
	case KindLaunchGame:
		return LaunchGame{ID: s}, nil
	case KindGetTag:
		return GetTag{Name: s}, nil
	case KindGetGameListFromTag:
		return GetGameListFromTag{Name: s}, nil
	case KindGetUser:
		return GetUser{ID: s}, nil
	case KindGetNfcTags:
		return GetNfcTags{Player: Player(s)}, nil
	case KindGetNfcUser:
		return GetNfcUser{AssociationID: s}, nil
	case KindSetProduction:
		var prod bool
		if err := json.Unmarshal(data, &prod); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, k, err)
		}
		return SetProduction{Production: prod}, nil
	case KindSave:
		if len(args) != 3 {
			return nil, fmt.Errorf("%w: %s takes 3 arguments, got %d", ErrMalformed, k, len(args))
		}
		return Save{Group: args[0], Key: args[1], Value: args[2]}, nil
	case KindLoad:
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s takes 2 arguments, got %d", ErrMalformed, k, len(args))
		}
		return Load{Group: args[0], Key: args[1]}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

type requestWire struct {
	RequestID uint32   `json:"request_id"`
	Body      envelope `json:"body"`
}

// Encodes the request as {"request_id":N,"body":{"type":...,"data":...}}.
func (r Request) MarshalJSON() ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("%w: request %d has no body", ErrMalformed, r.ID)
	}
	env, err := wrap(r.Body.Kind(), r.Body.payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(requestWire{RequestID: r.ID, Body: env})
}

// Decodes a request envelope. Unknown kinds and malformed payloads are errors.
func (r *Request) UnmarshalJSON(b []byte) error {
	var w requestWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	body, err := decodeRequestBody(w.Body.Type, w.Body.Data)
	if err != nil {
		return err
	}
	r.ID = w.RequestID
	r.Body = body
	return nil
}

// Logs the request as its id and kind. Payloads may hold save data and are
// left out.
func (r Request) LogValue() slog.Value {
	kind := Kind("")
	if r.Body != nil {
		kind = r.Body.Kind()
	}
	return slog.GroupValue(
		slog.Any("id", r.ID),
		slog.String("kind", string(kind)),
	)
}
