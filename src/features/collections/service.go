// Package collections manages albums, EPs and playlists.
package collections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contre95/songvault/src/features/metrics"
	"github.com/contre95/songvault/src/music"
)

// Service is the domain service for the collections feature.
type Service struct {
	store music.Store
}

// NewService creates a new collections service.
func NewService(store music.Store) *Service {
	return &Service{store: store}
}

// Create adds an empty collection of the given kind. Names are unique
// within their kind for the account.
func (s *Service) Create(ctx context.Context, username, kind, name string) error {
	k, err := music.ParseKind(kind)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("collection name cannot be empty")
	}
	if _, err := s.store.UpdateAccount(ctx, username, func(acc *music.Account) error {
		_, err := acc.CreateCollection(k, name)
		return err
	}); err != nil {
		return err
	}
	metrics.CollectionChanges.WithLabelValues("create").Inc()
	slog.Info("Collection created", "username", username, "kind", kind, "name", name)
	return nil
}

// AddSong places a song into a collection. The song may belong to any
// account: a listener's playlist can reference an artist's upload. For
// albums and EPs the song moves: it is removed from every other collection
// of that kind before insertion, so at most one holds it. For playlists the
// add is idempotent and a song may appear in any number of them.
func (s *Service) AddSong(ctx context.Context, username, kind, name, songID string) error {
	k, err := music.ParseKind(kind)
	if err != nil {
		return err
	}
	if err := s.songExists(ctx, songID); err != nil {
		return err
	}
	if _, err := s.store.UpdateAccount(ctx, username, func(acc *music.Account) error {
		if k.Exclusive() {
			return acc.AssignExclusive(k, songID, name)
		}
		return acc.AddToPlaylist(songID, name)
	}); err != nil {
		return err
	}
	metrics.CollectionChanges.WithLabelValues("add_song").Inc()
	return nil
}

// songExists checks the id against every account's catalog.
func (s *Service) songExists(ctx context.Context, songID string) error {
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		if acc.HasSong(songID) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", music.ErrSongNotFound, songID)
}

// List returns the account's collections of one kind, oldest first.
func (s *Service) List(ctx context.Context, username, kind string) ([]*music.Collection, error) {
	k, err := music.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	return *acc.Collections(k), nil
}

// Songs resolves a collection's members to song records in member order.
// Members can live in any account's catalog; dangling ids are skipped.
func (s *Service) Songs(ctx context.Context, username, kind, name string) ([]*music.Song, error) {
	k, err := music.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	col, err := acc.Collection(k, name)
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	byID := map[string]*music.Song{}
	for _, owner := range accounts {
		for _, song := range owner.Songs {
			byID[song.ID] = song
		}
	}
	songs := make([]*music.Song, 0, len(col.Members))
	for _, id := range col.Members {
		if song, ok := byID[id]; ok {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

// MembershipOf reports which collection of the given exclusive kind holds
// the song, or "none".
func (s *Service) MembershipOf(ctx context.Context, username, kind, songID string) (string, error) {
	k, err := music.ParseKind(kind)
	if err != nil {
		return "", err
	}
	acc, err := s.store.GetAccount(ctx, username)
	if err != nil {
		return "", err
	}
	if err := s.songExists(ctx, songID); err != nil {
		return "", err
	}
	return acc.MembershipOf(k, songID), nil
}
