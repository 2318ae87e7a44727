package transcribing

import (
	"context"
	"fmt"
	"os"

	"github.com/contre95/songvault/src/features/jobs"
	"github.com/contre95/songvault/src/music"
)

// SongAdder commits an upload to the catalog. Implemented by the library
// service.
type SongAdder interface {
	AddSong(ctx context.Context, username, title, artist, srcPath string) (*music.Song, error)
}

// UploadTask runs a song upload as a background job so the long recognition
// call never blocks the caller. Cancelling the job before the commit step
// discards every effect: no audio blob, no lyric text, no song record, no
// credit stub.
type UploadTask struct {
	library SongAdder
}

// NewUploadTask creates the task executed for "song_upload" jobs.
func NewUploadTask(library SongAdder) *UploadTask {
	return &UploadTask{library: library}
}

// MetadataKeys lists the metadata the job must carry.
func (t *UploadTask) MetadataKeys() []string {
	return []string{"username", "title", "path"}
}

// Execute transcribes and commits the staged upload.
func (t *UploadTask) Execute(ctx context.Context, job *jobs.Job, progressUpdater func(int, string)) (map[string]any, error) {
	username := job.Metadata["username"].(string)
	title := job.Metadata["title"].(string)
	path := job.Metadata["path"].(string)
	artist, _ := job.Metadata["artist"].(string)

	progressUpdater(10, "Transcribing lyrics")
	song, err := t.library.AddSong(ctx, username, title, artist, path)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	progressUpdater(100, "Song published")
	return map[string]any{"song_id": song.ID, "song_title": song.Title}, nil
}

// Cleanup removes the staged upload file regardless of outcome.
func (t *UploadTask) Cleanup(job *jobs.Job) error {
	path, ok := job.Metadata["path"].(string)
	if !ok || path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove staged upload: %w", err)
	}
	return nil
}
