package catalog

// A tag used to categorize games.
type Tag struct {
	Name        string `json:"name"`        // Unique tag name.
	Description string `json:"description"` // Human-readable description.
}

// Identifies whether a user is a club member or an external Google account.
type UserType string

const (
	UserTypeCSH    UserType = "CSH"
	UserTypeGoogle UserType = "GOOGLE"
)

// A catalog user, typically the author of a game.
type User struct {
	ID        string   `json:"id"`
	Admin     bool     `json:"admin"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Picture   string   `json:"picture"`
	UserType  UserType `json:"user_type"`
}

// A game as described by the catalog, extended with local install state.
//
// Hash fingerprints the uploaded artifact; a change in hash means a new
// version. InstallReference is empty until the game has been installed on
// this machine and is then set exactly once per install.
type Game struct {
	ID               string `json:"id"`
	Hash             string `json:"hash"`
	Name             string `json:"name"`
	Author           string `json:"author"`
	Description      string `json:"description"`
	UploadDate       string `json:"upload_date"`
	Tags             []Tag  `json:"tags"`
	User             User   `json:"user"`
	InstallReference string `json:"install_reference,omitempty"`
}

// The reduced game record returned by the tag listing route.
type minimalGame struct {
	ID string `json:"id"`
}
