// Package tag reads and writes embedded metadata on stored audio files.
package tag

import (
	"context"
	"fmt"
	"os"

	"github.com/contre95/songvault/src/features/library"
	"github.com/dhowden/tag"
)

// Reader probes uploaded audio for embedded tags using dhowden/tag.
type Reader struct{}

// NewReader creates a new Reader implementing library.TagReader.
func NewReader() library.TagReader {
	return &Reader{}
}

// ReadFileTags returns the embedded metadata of the file. Untagged or
// unrecognized files return an error; callers treat the probe as optional.
func (r *Reader) ReadFileTags(ctx context.Context, filePath string) (*library.TagProbe, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &library.TagProbe{
		Title:  tags.Title(),
		Artist: tags.Artist(),
		Format: string(tags.FileType()),
	}, nil
}
