package tag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/songvault/src/features/library"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// Writer embeds lyric text into stored audio files so the files stay
// self-describing when copied out of the library. MP3 and FLAC are
// supported; other formats are skipped.
type Writer struct{}

// NewWriter creates a new Writer implementing library.TagWriter.
func NewWriter() library.TagWriter {
	return &Writer{}
}

// WriteLyrics embeds the lyric text into the file's tags.
func (w *Writer) WriteLyrics(ctx context.Context, filePath, lyrics string) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3":
		return w.writeMP3(filePath, lyrics)
	case ".flac":
		return w.writeFLAC(filePath, lyrics)
	default:
		return fmt.Errorf("unsupported format for lyric embedding: %s", filepath.Ext(filePath))
	}
}

func (w *Writer) writeMP3(filePath, lyrics string) error {
	t, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer t.Close()

	t.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding:          id3v2.EncodingUTF8,
		Language:          "eng",
		ContentDescriptor: "",
		Lyrics:            lyrics,
	})
	if err := t.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	return nil
}

func (w *Writer) writeFLAC(filePath, lyrics string) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var vorbisComment *flacvorbis.MetaDataBlockVorbisComment
	commentIndex := -1
	for idx, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			vorbisComment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			commentIndex = idx
			break
		}
	}
	if vorbisComment == nil {
		vorbisComment = flacvorbis.New()
	}

	vorbisComment.Add("LYRICS", lyrics)

	commentMeta := vorbisComment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC tags: %w", err)
	}
	return nil
}
