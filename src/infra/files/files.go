// Package files manages the on-disk blob areas of the library: audio bytes
// under songs/ and lyric text under lyrics/, both addressed by song id.
package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	songsDir  = "songs"
	lyricsDir = "lyrics"
)

// Storage reads and writes song blobs relative to the library root.
type Storage struct {
	root string
}

// NewStorage creates a Storage rooted at the library path.
func NewStorage(root string) *Storage {
	return &Storage{root: root}
}

// WriteAudio stores the audio bytes for a song id, keeping the original
// extension. It returns the file reference recorded on the Song.
func (s *Storage) WriteAudio(id, ext string, r io.Reader) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ref := filepath.Join(songsDir, id+strings.ToLower(ext))
	f, err := os.Create(filepath.Join(s.root, ref))
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return ref, nil
}

// AudioPath resolves a song's file reference to an absolute path.
func (s *Storage) AudioPath(fileRef string) string {
	return filepath.Join(s.root, fileRef)
}

// WriteLyrics stores the lyric text for a song id.
func (s *Storage) WriteLyrics(id, text string) error {
	path := filepath.Join(s.root, lyricsDir, id+".txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write lyrics: %w", err)
	}
	return nil
}

// ReadLyrics returns the lyric text for a song id.
func (s *Storage) ReadLyrics(id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, lyricsDir, id+".txt"))
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics: %w", err)
	}
	return string(data), nil
}

// Discard removes the blobs written for a song id. Used to roll back an
// upload whose catalog commit failed; missing files are not an error.
func (s *Storage) Discard(fileRef, id string) {
	if fileRef != "" {
		if err := os.Remove(filepath.Join(s.root, fileRef)); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove audio blob during rollback", "file", fileRef, "error", err)
		}
	}
	if err := os.Remove(filepath.Join(s.root, lyricsDir, id+".txt")); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove lyrics blob during rollback", "id", id, "error", err)
	}
}
