package collections

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/contre95/songvault/src/music"
)

// mockStore is a mock implementation of music.Store.
type mockStore struct {
	accounts map[string]*music.Account
}

func newMockStore() *mockStore {
	return &mockStore{accounts: make(map[string]*music.Account)}
}

func (m *mockStore) GetAccount(ctx context.Context, username string) (*music.Account, error) {
	if acc, ok := m.accounts[username]; ok {
		return acc, nil
	}
	return nil, fmt.Errorf("%w: %s", music.ErrAccountNotFound, username)
}

func (m *mockStore) PutAccount(ctx context.Context, acc *music.Account) error {
	m.accounts[acc.Username] = acc
	return nil
}

func (m *mockStore) UpdateAccount(ctx context.Context, username string, mutate func(*music.Account) error) (*music.Account, error) {
	acc, err := m.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := mutate(acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (m *mockStore) Accounts(ctx context.Context) ([]*music.Account, error) {
	accounts := make([]*music.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func seedAccount(t *testing.T, store *mockStore, username string, titles ...string) []*music.Song {
	t.Helper()
	acc := music.NewAccount(username, "pw", music.RoleArtist)
	songs := make([]*music.Song, 0, len(titles))
	for _, title := range titles {
		song := &music.Song{ID: music.NewSongID(), Title: title, FileRef: "songs/x.mp3"}
		if err := acc.AddSong(song, &music.Credit{Artist: username, Credits: music.DefaultCreditNote}); err != nil {
			t.Fatal(err)
		}
		songs = append(songs, song)
	}
	store.accounts[username] = acc
	return songs
}

func TestCreateRejectsDuplicatesWithinKind(t *testing.T) {
	store := newMockStore()
	seedAccount(t, store, "alice")
	service := NewService(store)
	ctx := context.Background()

	if err := service.Create(ctx, "alice", "album", "First Light"); err != nil {
		t.Fatal(err)
	}
	if err := service.Create(ctx, "alice", "album", "First Light"); !errors.Is(err, music.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	// The same name is free in a different kind.
	if err := service.Create(ctx, "alice", "playlist", "First Light"); err != nil {
		t.Fatalf("same name in another kind must be allowed: %v", err)
	}
	if err := service.Create(ctx, "alice", "mixtape", "X"); err == nil {
		t.Error("unknown kind must be rejected")
	}
	if err := service.Create(ctx, "alice", "ep", "  "); err == nil {
		t.Error("blank name must be rejected")
	}
}

func TestExclusiveAddMovesSongBetweenAlbums(t *testing.T) {
	store := newMockStore()
	songs := seedAccount(t, store, "alice", "Desert Wind")
	service := NewService(store)
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		if err := service.Create(ctx, "alice", "album", name); err != nil {
			t.Fatal(err)
		}
	}
	if err := service.AddSong(ctx, "alice", "album", "A", songs[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := service.AddSong(ctx, "alice", "album", "B", songs[0].ID); err != nil {
		t.Fatal(err)
	}

	membership, err := service.MembershipOf(ctx, "alice", "album", songs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if membership != "B" {
		t.Errorf("membership = %q, want B", membership)
	}
	inA, err := service.Songs(ctx, "alice", "album", "A")
	if err != nil {
		t.Fatal(err)
	}
	if len(inA) != 0 {
		t.Error("song must leave album A when added to album B")
	}
}

func TestAlbumAndEPMembershipAreIndependent(t *testing.T) {
	store := newMockStore()
	songs := seedAccount(t, store, "alice", "Desert Wind")
	service := NewService(store)
	ctx := context.Background()

	if err := service.Create(ctx, "alice", "album", "LP"); err != nil {
		t.Fatal(err)
	}
	if err := service.Create(ctx, "alice", "ep", "Extended"); err != nil {
		t.Fatal(err)
	}
	if err := service.AddSong(ctx, "alice", "album", "LP", songs[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := service.AddSong(ctx, "alice", "ep", "Extended", songs[0].ID); err != nil {
		t.Fatal(err)
	}

	if m, _ := service.MembershipOf(ctx, "alice", "album", songs[0].ID); m != "LP" {
		t.Errorf("album membership = %q", m)
	}
	if m, _ := service.MembershipOf(ctx, "alice", "ep", songs[0].ID); m != "Extended" {
		t.Errorf("ep membership = %q", m)
	}
}

func TestPlaylistAddIsIdempotent(t *testing.T) {
	store := newMockStore()
	songs := seedAccount(t, store, "alice", "Desert Wind", "Midnight Run")
	service := NewService(store)
	ctx := context.Background()

	if err := service.Create(ctx, "alice", "playlist", "Road Trip"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := service.AddSong(ctx, "alice", "playlist", "Road Trip", songs[0].ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := service.AddSong(ctx, "alice", "playlist", "Road Trip", songs[1].ID); err != nil {
		t.Fatal(err)
	}

	inPlaylist, err := service.Songs(ctx, "alice", "playlist", "Road Trip")
	if err != nil {
		t.Fatal(err)
	}
	if len(inPlaylist) != 2 {
		t.Fatalf("playlist has %d songs, want 2", len(inPlaylist))
	}
	if inPlaylist[0].Title != "Desert Wind" || inPlaylist[1].Title != "Midnight Run" {
		t.Error("playlist must keep first-add order")
	}
}

func TestSongMayLiveInManyPlaylists(t *testing.T) {
	store := newMockStore()
	songs := seedAccount(t, store, "alice", "Desert Wind")
	service := NewService(store)
	ctx := context.Background()

	for _, name := range []string{"Morning", "Evening"} {
		if err := service.Create(ctx, "alice", "playlist", name); err != nil {
			t.Fatal(err)
		}
		if err := service.AddSong(ctx, "alice", "playlist", name, songs[0].ID); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"Morning", "Evening"} {
		in, err := service.Songs(ctx, "alice", "playlist", name)
		if err != nil || len(in) != 1 {
			t.Errorf("playlist %s has %d songs, want 1 (%v)", name, len(in), err)
		}
	}
}

func TestAddSongValidatesTargets(t *testing.T) {
	store := newMockStore()
	songs := seedAccount(t, store, "alice", "Desert Wind")
	service := NewService(store)
	ctx := context.Background()

	if err := service.AddSong(ctx, "alice", "album", "Missing", songs[0].ID); !errors.Is(err, music.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
	if err := service.Create(ctx, "alice", "album", "LP"); err != nil {
		t.Fatal(err)
	}
	if err := service.AddSong(ctx, "alice", "album", "LP", "deadbeef"); !errors.Is(err, music.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
	if err := service.AddSong(ctx, "ghost", "album", "LP", songs[0].ID); !errors.Is(err, music.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

// A listener's playlist can hold another account's upload.
func TestPlaylistReferencesAnotherAccountsSong(t *testing.T) {
	store := newMockStore()
	store.accounts["alice"] = music.NewAccount("alice", "pw", music.RoleUser)
	bobSongs := seedAccount(t, store, "bob", "Night Drive")
	service := NewService(store)
	ctx := context.Background()

	if err := service.Create(ctx, "alice", "playlist", "Road Trip"); err != nil {
		t.Fatal(err)
	}
	if err := service.AddSong(ctx, "alice", "playlist", "Road Trip", bobSongs[0].ID); err != nil {
		t.Fatalf("adding another account's song to a playlist must work: %v", err)
	}

	inPlaylist, err := service.Songs(ctx, "alice", "playlist", "Road Trip")
	if err != nil || len(inPlaylist) != 1 || inPlaylist[0].Title != "Night Drive" {
		t.Fatalf("playlist songs = %v (%v)", inPlaylist, err)
	}
	if m, err := service.MembershipOf(ctx, "alice", "album", bobSongs[0].ID); err != nil || m != music.NoMembership {
		t.Errorf("album membership = %q (%v), want %q", m, err, music.NoMembership)
	}
}

func TestListKeepsCreationOrder(t *testing.T) {
	store := newMockStore()
	seedAccount(t, store, "alice")
	service := NewService(store)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		if err := service.Create(ctx, "alice", "playlist", name); err != nil {
			t.Fatal(err)
		}
	}
	cols, err := service.List(ctx, "alice", "playlist")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 3 || cols[0].Name != "First" || cols[2].Name != "Third" {
		t.Errorf("collections out of order: %+v", cols)
	}
}
