package transcribing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/contre95/songvault/src/features/jobs"
	"github.com/contre95/songvault/src/features/library"
	"github.com/contre95/songvault/src/infra/files"
	"github.com/contre95/songvault/src/infra/store"
	"github.com/contre95/songvault/src/music"
)

// stubTranscriber stands in for the pipeline so the task test exercises the
// commit path against real file-backed storage.
type stubTranscriber struct {
	text   string
	cancel context.CancelFunc
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) string {
	if s.cancel != nil {
		s.cancel()
	}
	return s.text
}

func uploadFixture(t *testing.T, transcriber library.Transcriber) (*UploadTask, *store.FileStore, *files.Storage, string) {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"songs", "lyrics"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	fileStore, err := store.NewFileStore(filepath.Join(root, "users.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fileStore.PutAccount(context.Background(), music.NewAccount("alice", "pw", music.RoleArtist)); err != nil {
		t.Fatal(err)
	}
	blobs := files.NewStorage(root)
	libraryService := library.NewService(fileStore, blobs, transcriber, nil, nil)

	staged := filepath.Join(t.TempDir(), "upload.mp3")
	if err := os.WriteFile(staged, []byte("audio bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return NewUploadTask(libraryService), fileStore, blobs, staged
}

func TestUploadTaskCommitsThroughRealStore(t *testing.T) {
	task, fileStore, blobs, staged := uploadFixture(t, &stubTranscriber{text: "verse one"})
	job := &jobs.Job{Metadata: map[string]any{"username": "alice", "title": "Desert Wind", "path": staged}}

	result, err := task.Execute(context.Background(), job, func(int, string) {})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	songID, _ := result["song_id"].(string)
	if songID == "" {
		t.Fatal("result must carry the new song id")
	}

	// Reload from disk: the commit must be durable.
	acc, err := fileStore.GetAccount(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	song, err := acc.Song(songID)
	if err != nil {
		t.Fatalf("committed song not found after reload: %v", err)
	}
	if _, err := os.Stat(blobs.AudioPath(song.FileRef)); err != nil {
		t.Errorf("audio blob missing: %v", err)
	}
	lyrics, err := blobs.ReadLyrics(songID)
	if err != nil || lyrics != "verse one" {
		t.Errorf("lyrics = %q (%v)", lyrics, err)
	}

	if err := task.Cleanup(job); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staged upload must be removed by cleanup")
	}
}

func TestUploadTaskCancelDiscardsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task, fileStore, blobs, staged := uploadFixture(t, &stubTranscriber{text: "x", cancel: cancel})
	job := &jobs.Job{Metadata: map[string]any{"username": "alice", "title": "Desert Wind", "path": staged}}

	_, err := task.Execute(ctx, job, func(int, string) {})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	acc, err := fileStore.GetAccount(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(acc.Songs) != 0 || len(acc.Credits) != 0 {
		t.Error("a cancelled upload must commit nothing")
	}
	songsDir, _ := os.ReadDir(filepath.Join(blobs.AudioPath(""), "songs"))
	if len(songsDir) != 0 {
		t.Error("a cancelled upload must leave no audio blobs")
	}
}
