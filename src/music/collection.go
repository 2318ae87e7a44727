package music

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies one of the three collection namespaces an account owns.
type Kind string

const (
	KindAlbum    Kind = "album"
	KindEP       Kind = "ep"
	KindPlaylist Kind = "playlist"
)

// NoMembership is the sentinel returned by membership lookups when no
// collection of the requested kind contains the song.
const NoMembership = "none"

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindAlbum:
		return KindAlbum, nil
	case KindEP:
		return KindEP, nil
	case KindPlaylist:
		return KindPlaylist, nil
	}
	return "", fmt.Errorf("unknown collection kind: %q", s)
}

// Exclusive reports whether membership in this kind is exclusive: a song may
// belong to at most one album and at most one EP at a time. Playlists are
// non-exclusive.
func (k Kind) Exclusive() bool {
	return k == KindAlbum || k == KindEP
}

// Collection is a named grouping of songs within one account and kind.
// Members hold song ids in insertion order.
type Collection struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Validate validates the collection fields.
func (c *Collection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if len(c.Name) > 200 {
		return fmt.Errorf("collection name cannot exceed 200 characters, got %d: name -> %s", len(c.Name), c.Name)
	}
	return nil
}

// Contains reports whether the song id is a member.
func (c *Collection) Contains(songID string) bool {
	return slices.Contains(c.Members, songID)
}

// Add appends the song id if it is not already a member. Re-adding an
// existing member is a no-op, which makes playlist insertion idempotent.
func (c *Collection) Add(songID string) {
	if !c.Contains(songID) {
		c.Members = append(c.Members, songID)
	}
}

// Remove deletes the song id from the member list if present.
func (c *Collection) Remove(songID string) {
	c.Members = slices.DeleteFunc(c.Members, func(id string) bool {
		return id == songID
	})
}
