// Package library is the catalog store: songs, lyric text and credits.
package library

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/contre95/songvault/src/features/metrics"
	"github.com/contre95/songvault/src/music"
	"github.com/gosimple/unidecode"
)

// Transcriber produces lyric text from an audio file. It never fails:
// unrecognizable audio yields the fixed placeholder text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) string
}

// Blobs is the file-backed storage for audio bytes and lyric text.
type Blobs interface {
	WriteAudio(id, ext string, r io.Reader) (string, error)
	AudioPath(fileRef string) string
	WriteLyrics(id, text string) error
	ReadLyrics(id string) (string, error)
	Discard(fileRef, id string)
}

// TagProbe is the embedded metadata read from an uploaded file.
type TagProbe struct {
	Title  string
	Artist string
	Format string
}

// TagReader probes uploaded audio for embedded tags.
type TagReader interface {
	ReadFileTags(ctx context.Context, path string) (*TagProbe, error)
}

// TagWriter embeds lyric text back into a stored audio file.
type TagWriter interface {
	WriteLyrics(ctx context.Context, path, lyrics string) error
}

// SongDetails is the display view of one song.
type SongDetails struct {
	Song   *music.Song   `json:"song"`
	Credit *music.Credit `json:"credit"`
	Album  string        `json:"album"`
	EP     string        `json:"ep"`
	Lyrics string        `json:"lyrics"`
}

// Service is the domain service for the library feature.
type Service struct {
	store       music.Store
	blobs       Blobs
	transcriber Transcriber
	tagReader   TagReader
	tagWriter   TagWriter
}

// NewService creates a new library service.
func NewService(store music.Store, blobs Blobs, transcriber Transcriber, tagReader TagReader, tagWriter TagWriter) *Service {
	return &Service{
		store:       store,
		blobs:       blobs,
		transcriber: transcriber,
		tagReader:   tagReader,
		tagWriter:   tagWriter,
	}
}

// AddSong runs the transcription pipeline on the uploaded audio and commits
// the four upload effects together: audio blob, lyric text, song record and
// credit stub. If the catalog commit fails the blobs are rolled back, so no
// orphaned entries survive. A cancelled context before the commit step
// discards everything.
func (s *Service) AddSong(ctx context.Context, username, title, artist, srcPath string) (*music.Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("song title cannot be empty")
	}

	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if acc.Role != music.RoleArtist {
		return nil, fmt.Errorf("%w: %s", music.ErrNotArtist, username)
	}

	lyrics := s.transcriber.Transcribe(ctx, srcPath)
	if err := ctx.Err(); err != nil {
		// Upload cancelled while transcribing: commit nothing.
		return nil, err
	}

	// Generate a unique id, re-rolling on collision.
	id := music.NewSongID()
	for acc.HasSong(id) {
		id = music.NewSongID()
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	fileRef, err := s.blobs.WriteAudio(id, filepath.Ext(srcPath), f)
	f.Close()
	if err != nil {
		return nil, err
	}
	if err := s.blobs.WriteLyrics(id, lyrics); err != nil {
		s.blobs.Discard(fileRef, id)
		return nil, err
	}

	song := &music.Song{ID: id, Title: title, FileRef: fileRef}
	credit := &music.Credit{Artist: s.resolveArtist(ctx, artist, srcPath, username), Credits: music.DefaultCreditNote}

	if _, err := s.store.UpdateAccount(ctx, username, func(acc *music.Account) error {
		return acc.AddSong(song, credit)
	}); err != nil {
		s.blobs.Discard(fileRef, id)
		return nil, fmt.Errorf("failed to commit song: %w", err)
	}

	metrics.SongUploads.Inc()
	slog.Info("Song published", "username", username, "id", id, "title", title)
	return song, nil
}

// resolveArtist picks the credit-stub artist: the caller's explicit value,
// then the file's embedded artist tag, then the account username.
func (s *Service) resolveArtist(ctx context.Context, artist, srcPath, username string) string {
	if artist = strings.TrimSpace(artist); artist != "" {
		return artist
	}
	if s.tagReader != nil {
		if probe, err := s.tagReader.ReadFileTags(ctx, srcPath); err == nil && strings.TrimSpace(probe.Artist) != "" {
			return strings.TrimSpace(probe.Artist)
		}
	}
	return username
}

// ListSongs returns the account's catalog in upload order.
func (s *Service) ListSongs(ctx context.Context, username string) ([]*music.Song, error) {
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	return acc.Songs, nil
}

// SearchSongs filters the catalog by a case- and accent-insensitive title
// substring match. An empty keyword returns the full list.
func (s *Service) SearchSongs(ctx context.Context, username, keyword string) ([]*music.Song, error) {
	songs, err := s.ListSongs(ctx, username)
	if err != nil {
		return nil, err
	}
	keyword = normalize(keyword)
	if keyword == "" {
		return songs, nil
	}
	filtered := []*music.Song{}
	for _, song := range songs {
		if strings.Contains(normalize(song.Title), keyword) {
			filtered = append(filtered, song)
		}
	}
	return filtered, nil
}

func normalize(s string) string {
	return strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
}

// GetLyrics returns the stored lyric text for a song.
func (s *Service) GetLyrics(ctx context.Context, username, songID string) (string, error) {
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return "", err
	}
	if _, err := acc.Song(songID); err != nil {
		return "", err
	}
	return s.blobs.ReadLyrics(songID)
}

// UpdateLyrics overwrites the stored lyric text. Artist accounts only.
// The text is also embedded into the audio file's tags when the format
// supports it; embedding failures don't fail the edit.
func (s *Service) UpdateLyrics(ctx context.Context, username, songID, text string) error {
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return err
	}
	if acc.Role != music.RoleArtist {
		return fmt.Errorf("%w: %s", music.ErrNotArtist, username)
	}
	song, err := acc.Song(songID)
	if err != nil {
		return err
	}
	if err := s.blobs.WriteLyrics(songID, text); err != nil {
		return err
	}
	if s.tagWriter != nil {
		if err := s.tagWriter.WriteLyrics(ctx, s.blobs.AudioPath(song.FileRef), text); err != nil {
			slog.Debug("Skipped lyric tag embedding", "id", songID, "error", err)
		}
	}
	slog.Info("Lyrics updated", "username", username, "id", songID)
	return nil
}

// UpdateCredit overwrites a song's credit entry. Artist accounts only.
func (s *Service) UpdateCredit(ctx context.Context, username, songID, artist, credits string) error {
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return err
	}
	if acc.Role != music.RoleArtist {
		return fmt.Errorf("%w: %s", music.ErrNotArtist, username)
	}
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return fmt.Errorf("credit artist cannot be empty")
	}
	_, err = s.store.UpdateAccount(ctx, username, func(acc *music.Account) error {
		if _, err := acc.Song(songID); err != nil {
			return err
		}
		acc.Credits[songID] = &music.Credit{Artist: artist, Credits: credits}
		return nil
	})
	return err
}

// SongDetails assembles the display view of a song: credit, album and EP
// membership and the current lyric text.
func (s *Service) SongDetails(ctx context.Context, username, songID string) (*SongDetails, error) {
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	song, err := acc.Song(songID)
	if err != nil {
		return nil, err
	}
	credit := acc.Credits[songID]
	if credit == nil {
		credit = &music.Credit{Artist: username, Credits: music.DefaultCreditNote}
	}
	lyrics, err := s.blobs.ReadLyrics(songID)
	if err != nil {
		lyrics = "(Lyrics not found)"
	}
	return &SongDetails{
		Song:   song,
		Credit: credit,
		Album:  acc.MembershipOf(music.KindAlbum, songID),
		EP:     acc.MembershipOf(music.KindEP, songID),
		Lyrics: lyrics,
	}, nil
}

// AudioPath resolves the stored audio file of a song for streaming.
func (s *Service) AudioPath(ctx context.Context, username, songID string) (string, error) {
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return "", err
	}
	song, err := acc.Song(songID)
	if err != nil {
		return "", err
	}
	return s.blobs.AudioPath(song.FileRef), nil
}
