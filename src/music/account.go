package music

import (
	"fmt"
	"strings"
)

// Role distinguishes listeners from publishing artists.
type Role string

const (
	RoleUser   Role = "user"
	RoleArtist Role = "artist"
)

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleArtist:
		return RoleArtist, nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// Account is one user of the catalog. It owns the song list and the three
// collection namespaces. Collections are kept as ordered slices so listing
// preserves creation order across save/load cycles.
type Account struct {
	Username  string             `json:"-"`
	Password  string             `json:"password"`
	Role      Role               `json:"role"`
	Songs     []*Song            `json:"songs"`
	Credits   map[string]*Credit `json:"songcredits"`
	Albums    []*Collection      `json:"albums"`
	EPs       []*Collection      `json:"eps"`
	Playlists []*Collection      `json:"playlists"`
}

// NewAccount creates an account with empty catalog and collections.
func NewAccount(username, password string, role Role) *Account {
	return &Account{
		Username:  username,
		Password:  password,
		Role:      role,
		Songs:     []*Song{},
		Credits:   map[string]*Credit{},
		Albums:    []*Collection{},
		EPs:       []*Collection{},
		Playlists: []*Collection{},
	}
}

// Validate validates the account fields.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if strings.TrimSpace(a.Password) == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if a.Role != RoleUser && a.Role != RoleArtist {
		return fmt.Errorf("invalid role: %q", a.Role)
	}
	return nil
}

// Song returns the song with the given id.
func (a *Account) Song(id string) (*Song, error) {
	for _, s := range a.Songs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSongNotFound, id)
}

// HasSong reports whether the id is already taken in the catalog. Used to
// re-roll generated ids on collision.
func (a *Account) HasSong(id string) bool {
	_, err := a.Song(id)
	return err == nil
}

// AddSong appends a song and its credit stub to the catalog.
func (a *Account) AddSong(song *Song, credit *Credit) error {
	if err := song.Validate(); err != nil {
		return err
	}
	if a.HasSong(song.ID) {
		return fmt.Errorf("song id %s already in catalog", song.ID)
	}
	a.Songs = append(a.Songs, song)
	if a.Credits == nil {
		a.Credits = map[string]*Credit{}
	}
	a.Credits[song.ID] = credit
	return nil
}

// Collections returns the account's collection list for the given kind.
// The returned pointer lets callers append through it.
func (a *Account) Collections(kind Kind) *[]*Collection {
	switch kind {
	case KindAlbum:
		return &a.Albums
	case KindEP:
		return &a.EPs
	default:
		return &a.Playlists
	}
}

// Collection returns the named collection of the given kind.
func (a *Account) Collection(kind Kind, name string) (*Collection, error) {
	for _, c := range *a.Collections(kind) {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", ErrCollectionNotFound, kind, name)
}

// CreateCollection adds an empty collection of the given kind. Names are
// unique within their kind; there is no rename.
func (a *Account) CreateCollection(kind Kind, name string) (*Collection, error) {
	c := &Collection{Name: name, Members: []string{}}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := a.Collection(kind, name); err == nil {
		return nil, fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, name)
	}
	list := a.Collections(kind)
	*list = append(*list, c)
	return c, nil
}

// AssignExclusive moves a song into the named album or EP, removing it from
// every other collection of the same kind first. The caller is expected to
// run this inside a single store update so no intermediate state is visible.
// Member ids may reference songs of any account; existence is checked by the
// caller against the whole catalog.
func (a *Account) AssignExclusive(kind Kind, songID, name string) error {
	if !kind.Exclusive() {
		return fmt.Errorf("kind %s does not have exclusive membership", kind)
	}
	target, err := a.Collection(kind, name)
	if err != nil {
		return err
	}
	for _, c := range *a.Collections(kind) {
		if c != target {
			c.Remove(songID)
		}
	}
	target.Add(songID)
	return nil
}

// AddToPlaylist inserts a song into the named playlist. Idempotent. As with
// AssignExclusive, the id may reference another account's song.
func (a *Account) AddToPlaylist(songID, name string) error {
	pl, err := a.Collection(KindPlaylist, name)
	if err != nil {
		return err
	}
	pl.Add(songID)
	return nil
}

// MembershipOf returns the name of the collection of the given kind that
// contains the song, or NoMembership when none does. For exclusive kinds at
// most one collection can match; for playlists the first match in creation
// order is returned.
func (a *Account) MembershipOf(kind Kind, songID string) string {
	for _, c := range *a.Collections(kind) {
		if c.Contains(songID) {
			return c.Name
		}
	}
	return NoMembership
}
