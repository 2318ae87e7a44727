package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/songvault/src/music"
)

// mockStore is a mock implementation of music.Store.
type mockStore struct {
	accounts  map[string]*music.Account
	updateErr error
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
	if m.updateErr != nil {
		return nil, m.updateErr
	}
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

// mockBlobs records audio and lyric writes in memory.
type mockBlobs struct {
	audio     map[string][]byte
	lyrics    map[string]string
	discarded []string
}

func newMockBlobs() *mockBlobs {
	return &mockBlobs{audio: make(map[string][]byte), lyrics: make(map[string]string)}
}

func (m *mockBlobs) WriteAudio(id, ext string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := "songs/" + id + ext
	m.audio[ref] = data
	return ref, nil
}

func (m *mockBlobs) AudioPath(fileRef string) string {
	return filepath.Join("/library", fileRef)
}

func (m *mockBlobs) WriteLyrics(id, text string) error {
	m.lyrics[id] = text
	return nil
}

func (m *mockBlobs) ReadLyrics(id string) (string, error) {
	text, ok := m.lyrics[id]
	if !ok {
		return "", fmt.Errorf("no lyrics for %s", id)
	}
	return text, nil
}

func (m *mockBlobs) Discard(fileRef, id string) {
	delete(m.audio, fileRef)
	delete(m.lyrics, id)
	m.discarded = append(m.discarded, id)
}

// mockTranscriber returns a fixed text, optionally cancelling the context
// mid-call to simulate an aborted upload.
type mockTranscriber struct {
	text   string
	cancel context.CancelFunc
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) string {
	if m.cancel != nil {
		m.cancel()
	}
	return m.text
}

// mockTagReader returns a canned probe.
type mockTagReader struct {
	probe *TagProbe
	err   error
}

func (m *mockTagReader) ReadFileTags(ctx context.Context, path string) (*TagProbe, error) {
	return m.probe, m.err
}

// mockTagWriter records embed calls.
type mockTagWriter struct {
	calls int
	err   error
}

func (m *mockTagWriter) WriteLyrics(ctx context.Context, path, lyrics string) error {
	m.calls++
	return m.err
}

func stageFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func artistStore(username string) *mockStore {
	store := newMockStore()
	store.accounts[username] = music.NewAccount(username, "pw", music.RoleArtist)
	return store
}

func TestAddSongCommitsAllEffects(t *testing.T) {
	store := artistStore("alice")
	blobs := newMockBlobs()
	service := NewService(store, blobs, &mockTranscriber{text: "la la la"}, &mockTagReader{err: errors.New("no tags")}, nil)

	song, err := service.AddSong(context.Background(), "alice", "Desert Wind", "", stageFile(t))
	if err != nil {
		t.Fatalf("expected upload to succeed, got %v", err)
	}
	if len(song.ID) != music.SongIDLength {
		t.Errorf("id = %q, want %d chars", song.ID, music.SongIDLength)
	}

	acc := store.accounts["alice"]
	if len(acc.Songs) != 1 || acc.Songs[0].Title != "Desert Wind" {
		t.Fatalf("song record not committed: %+v", acc.Songs)
	}
	credit := acc.Credits[song.ID]
	if credit == nil || credit.Credits != music.DefaultCreditNote {
		t.Errorf("credit stub = %+v, want placeholder note", credit)
	}
	if credit != nil && credit.Artist != "alice" {
		t.Errorf("credit artist = %q, want username fallback", credit.Artist)
	}
	if _, ok := blobs.audio[song.FileRef]; !ok {
		t.Error("audio blob was not written")
	}
	if blobs.lyrics[song.ID] != "la la la" {
		t.Errorf("lyrics = %q", blobs.lyrics[song.ID])
	}
}

func TestAddSongRejectsNonArtist(t *testing.T) {
	store := newMockStore()
	store.accounts["lena"] = music.NewAccount("lena", "pw", music.RoleUser)
	service := NewService(store, newMockBlobs(), &mockTranscriber{text: "x"}, nil, nil)

	if _, err := service.AddSong(context.Background(), "lena", "Song", "", stageFile(t)); !errors.Is(err, music.ErrNotArtist) {
		t.Fatalf("expected ErrNotArtist, got %v", err)
	}
}

func TestAddSongRejectsEmptyTitle(t *testing.T) {
	service := NewService(artistStore("alice"), newMockBlobs(), &mockTranscriber{text: "x"}, nil, nil)

	if _, err := service.AddSong(context.Background(), "alice", "   ", "", stageFile(t)); err == nil {
		t.Fatal("empty title must be rejected")
	}
}

func TestAddSongRollsBackBlobsOnCommitFailure(t *testing.T) {
	store := artistStore("alice")
	store.updateErr = errors.New("disk full")
	blobs := newMockBlobs()
	service := NewService(store, blobs, &mockTranscriber{text: "x"}, nil, nil)

	if _, err := service.AddSong(context.Background(), "alice", "Song", "", stageFile(t)); err == nil {
		t.Fatal("expected commit failure to surface")
	}
	if len(blobs.audio) != 0 || len(blobs.lyrics) != 0 {
		t.Error("blobs must be rolled back when the catalog commit fails")
	}
	if len(blobs.discarded) != 1 {
		t.Errorf("discard calls = %d, want 1", len(blobs.discarded))
	}
}

func TestAddSongCancelledBeforeCommit(t *testing.T) {
	store := artistStore("alice")
	blobs := newMockBlobs()
	ctx, cancel := context.WithCancel(context.Background())
	service := NewService(store, blobs, &mockTranscriber{text: "x", cancel: cancel}, nil, nil)

	if _, err := service.AddSong(ctx, "alice", "Song", "", stageFile(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(blobs.audio) != 0 || len(blobs.lyrics) != 0 {
		t.Error("a cancelled upload must leave no blobs")
	}
	if len(store.accounts["alice"].Songs) != 0 {
		t.Error("a cancelled upload must leave no song record")
	}
}

func TestAddSongArtistResolution(t *testing.T) {
	cases := []struct {
		name   string
		artist string
		probe  *TagProbe
		want   string
	}{
		{"explicit wins", "The Dunes", &TagProbe{Artist: "Tagged"}, "The Dunes"},
		{"tag fallback", "", &TagProbe{Artist: "Tagged"}, "Tagged"},
		{"username fallback", "", &TagProbe{}, "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := artistStore("alice")
			service := NewService(store, newMockBlobs(), &mockTranscriber{text: "x"}, &mockTagReader{probe: tc.probe}, nil)

			song, err := service.AddSong(context.Background(), "alice", "Song", tc.artist, stageFile(t))
			if err != nil {
				t.Fatal(err)
			}
			if got := store.accounts["alice"].Credits[song.ID].Artist; got != tc.want {
				t.Errorf("credit artist = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSearchSongs(t *testing.T) {
	store := artistStore("alice")
	acc := store.accounts["alice"]
	for _, title := range []string{"Corazón Roto", "Midnight Run", "Corduroy"} {
		song := &music.Song{ID: music.NewSongID(), Title: title, FileRef: "songs/x.mp3"}
		if err := acc.AddSong(song, &music.Credit{Artist: "alice", Credits: music.DefaultCreditNote}); err != nil {
			t.Fatal(err)
		}
	}
	service := NewService(store, newMockBlobs(), &mockTranscriber{}, nil, nil)
	ctx := context.Background()

	all, err := service.SearchSongs(ctx, "alice", "")
	if err != nil || len(all) != 3 {
		t.Fatalf("empty keyword should return all songs, got %d (%v)", len(all), err)
	}
	if all[0].Title != "Corazón Roto" || all[2].Title != "Corduroy" {
		t.Error("listing must preserve upload order")
	}

	hits, err := service.SearchSongs(ctx, "alice", "corazon")
	if err != nil || len(hits) != 1 || hits[0].Title != "Corazón Roto" {
		t.Fatalf("accent-insensitive search failed: %v (%v)", hits, err)
	}

	hits, err = service.SearchSongs(ctx, "alice", "COR")
	if err != nil || len(hits) != 2 {
		t.Fatalf("case-insensitive substring search failed: got %d", len(hits))
	}
}

func TestUpdateLyricsArtistOnly(t *testing.T) {
	store := newMockStore()
	store.accounts["lena"] = music.NewAccount("lena", "pw", music.RoleUser)
	service := NewService(store, newMockBlobs(), &mockTranscriber{}, nil, nil)

	err := service.UpdateLyrics(context.Background(), "lena", "abcd1234", "new words")
	if !errors.Is(err, music.ErrNotArtist) {
		t.Fatalf("expected ErrNotArtist, got %v", err)
	}
}

func TestUpdateLyricsEmbedsTagsBestEffort(t *testing.T) {
	store := artistStore("alice")
	blobs := newMockBlobs()
	writer := &mockTagWriter{err: errors.New("format not supported")}
	service := NewService(store, blobs, &mockTranscriber{}, nil, writer)

	song := &music.Song{ID: music.NewSongID(), Title: "Song", FileRef: "songs/a.ogg"}
	if err := store.accounts["alice"].AddSong(song, &music.Credit{Artist: "alice", Credits: music.DefaultCreditNote}); err != nil {
		t.Fatal(err)
	}

	if err := service.UpdateLyrics(context.Background(), "alice", song.ID, "rewritten"); err != nil {
		t.Fatalf("tag embedding failure must not fail the edit: %v", err)
	}
	if blobs.lyrics[song.ID] != "rewritten" {
		t.Errorf("lyrics = %q", blobs.lyrics[song.ID])
	}
	if writer.calls != 1 {
		t.Errorf("tag writer calls = %d, want 1", writer.calls)
	}
}

func TestUpdateCredit(t *testing.T) {
	store := artistStore("alice")
	service := NewService(store, newMockBlobs(), &mockTranscriber{}, nil, nil)
	ctx := context.Background()

	song := &music.Song{ID: music.NewSongID(), Title: "Song", FileRef: "songs/a.mp3"}
	acc := store.accounts["alice"]
	if err := acc.AddSong(song, &music.Credit{Artist: "alice", Credits: music.DefaultCreditNote}); err != nil {
		t.Fatal(err)
	}

	if err := service.UpdateCredit(ctx, "alice", song.ID, "The Dunes", "Produced by L."); err != nil {
		t.Fatal(err)
	}
	credit := acc.Credits[song.ID]
	if credit.Artist != "The Dunes" || credit.Credits != "Produced by L." {
		t.Errorf("credit = %+v", credit)
	}

	if err := service.UpdateCredit(ctx, "alice", "missing1", "X", "Y"); !errors.Is(err, music.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
	if err := service.UpdateCredit(ctx, "alice", song.ID, "   ", "Y"); err == nil {
		t.Error("blank credit artist must be rejected")
	}
}

func TestSongDetailsReportsMembership(t *testing.T) {
	store := artistStore("alice")
	acc := store.accounts["alice"]
	song := &music.Song{ID: music.NewSongID(), Title: "Song", FileRef: "songs/a.mp3"}
	if err := acc.AddSong(song, &music.Credit{Artist: "alice", Credits: music.DefaultCreditNote}); err != nil {
		t.Fatal(err)
	}
	if _, err := acc.CreateCollection(music.KindAlbum, "First Light"); err != nil {
		t.Fatal(err)
	}
	if err := acc.AssignExclusive(music.KindAlbum, song.ID, "First Light"); err != nil {
		t.Fatal(err)
	}

	blobs := newMockBlobs()
	blobs.lyrics[song.ID] = "la la"
	service := NewService(store, blobs, &mockTranscriber{}, nil, nil)

	details, err := service.SongDetails(context.Background(), "alice", song.ID)
	if err != nil {
		t.Fatal(err)
	}
	if details.Album != "First Light" {
		t.Errorf("album = %q", details.Album)
	}
	if details.EP != music.NoMembership {
		t.Errorf("ep = %q, want %q", details.EP, music.NoMembership)
	}
	if details.Lyrics != "la la" {
		t.Errorf("lyrics = %q", details.Lyrics)
	}
	if details.Credit.Credits != music.DefaultCreditNote {
		t.Errorf("credit = %+v", details.Credit)
	}
}
