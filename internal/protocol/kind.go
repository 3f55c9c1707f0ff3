package protocol

// Names the variant of a request or response body. It is the "type" field of
// the body envelope on the wire.
type Kind string

// Request kinds.
const (
	KindPing               Kind = "Ping"
	KindGetGameList        Kind = "GetGameList"
	KindGetGameListFromFs  Kind = "GetGameListFromFs"
	KindGetGame            Kind = "GetGame"
	KindDownloadGame       Kind = "DownloadGame"
	KindDownloadIcon       Kind = "DownloadIcon"
	KindDownloadBanner     Kind = "DownloadBanner"
	KindGetTagList         Kind = "GetTagList"
	KindGetTag             Kind = "GetTag"
	KindGetGameListFromTag Kind = "GetGameListFromTag"
	KindGetUser            Kind = "GetUser"
	KindSetProduction      Kind = "SetProduction"
	KindLaunchGame         Kind = "LaunchGame"
	KindGetNfcTags         Kind = "GetNfcTags"
	KindGetNfcUser         Kind = "GetNfcUser"
	KindSave               Kind = "Save"
	KindLoad               Kind = "Load"
	KindFlush              Kind = "Flush"
	KindClearCache         Kind = "ClearCache"
)

// Response kinds.
const (
	KindPong     Kind = "Pong"
	KindOk       Kind = "Ok"
	KindErr      Kind = "Err"
	KindGameList Kind = "GameList"
	KindGame     Kind = "Game"
	KindTagList  Kind = "TagList"
	KindTag      Kind = "Tag"
	KindUser     Kind = "User"
	KindNfcTags  Kind = "NfcTags"
	KindNfcUser  Kind = "NfcUser"
	KindObject   Kind = "Object"
)

// A set of request kinds a channel accepts.
type KindSet map[Kind]struct{}

// Reports whether k is in the set.
func (s KindSet) Allows(k Kind) bool {
	_, ok := s[k]
	return ok
}

func newKindSet(kinds ...Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Kinds accepted on the front-end channel.
func FrontendKinds() KindSet {
	return newKindSet(
		KindPing, KindGetGameList, KindGetGameListFromFs, KindGetGame,
		KindDownloadGame, KindDownloadIcon, KindDownloadBanner,
		KindGetTagList, KindGetTag, KindGetGameListFromTag, KindGetUser,
		KindSetProduction, KindLaunchGame, KindGetNfcTags, KindGetNfcUser,
		KindSave, KindLoad, KindFlush, KindClearCache,
	)
}

// Kinds accepted on the game channel. A running game may only talk to its
// own save data and the badge reader.
func GameKinds() KindSet {
	return newKindSet(
		KindPing, KindSave, KindLoad, KindFlush, KindGetNfcTags, KindGetNfcUser,
	)
}
