package music

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SongIDLength is the length of the short song id token. Ids are the first
// characters of a v4 UUID; collisions are re-rolled against the owning
// account's catalog.
const SongIDLength = 8

// Song represents one uploaded audio file in an account's catalog.
// The record is immutable after upload; lyric text and credits live in
// separate keyed entries so they can be edited without touching it.
type Song struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	FileRef string `json:"file"`
}

// Validate validates the song fields.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title cannot be empty")
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("song title cannot exceed 500 characters, got %d: title -> %s", len(s.Title), s.Title)
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("song id cannot be empty")
	}
	if strings.TrimSpace(s.FileRef) == "" {
		return fmt.Errorf("song file reference cannot be empty")
	}
	return nil
}

// Credit is the artist attribution and free-text credit note for a song,
// keyed by song id. A stub is created at upload time.
type Credit struct {
	Artist  string `json:"artist"`
	Credits string `json:"credits"`
}

// DefaultCreditNote is the credit text every stub starts with.
const DefaultCreditNote = "No credits yet."

// NewSongID returns a fresh short song id token.
func NewSongID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:SongIDLength]
}
