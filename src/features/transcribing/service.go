// Package transcribing turns uploaded audio into best-effort lyric text.
package transcribing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/features/metrics"
	"github.com/google/uuid"
)

// FallbackLyrics is the fixed placeholder returned whenever recognition
// cannot produce a result.
const FallbackLyrics = "(Could not generate lyrics)"

// Normalizer prepares an audio file for recognition: decode, downmix to
// mono, resample to the recognizer's rate and write a staging WAV.
type Normalizer interface {
	Normalize(ctx context.Context, srcPath, dstPath string) error
}

// Recognizer converts staged audio into text.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

// Service is the transcription pipeline. It never fails outward: every
// internal fault is absorbed and converted into FallbackLyrics.
type Service struct {
	normalizer Normalizer
	recognizer Recognizer
	config     *config.Manager
}

// NewService creates a new transcription service.
func NewService(normalizer Normalizer, recognizer Recognizer, cfgManager *config.Manager) *Service {
	return &Service{
		normalizer: normalizer,
		recognizer: recognizer,
		config:     cfgManager,
	}
}

// Transcribe runs the pipeline on the audio file and returns lyric text.
// Single attempt: no retry, no partial results. The staged intermediate is
// removed on every exit path.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (text string) {
	start := time.Now()
	defer func() {
		metrics.TranscriptionDuration.Observe(time.Since(start).Seconds())
		// Decoder faults on malformed input must not cross the pipeline
		// boundary either.
		if r := recover(); r != nil {
			slog.Error("Transcription pipeline panicked", "file", audioPath, "panic", r)
			metrics.TranscriptionFallbacks.Inc()
			text = FallbackLyrics
		}
	}()

	staged := filepath.Join(s.config.Get().StagingPath, uuid.New().String()+".wav")
	defer os.Remove(staged)

	if err := s.normalizer.Normalize(ctx, audioPath, staged); err != nil {
		slog.Warn("Audio normalization failed, using fallback lyrics", "file", audioPath, "error", err)
		metrics.TranscriptionFallbacks.Inc()
		return FallbackLyrics
	}

	recognized, err := s.recognizer.Recognize(ctx, staged)
	if err != nil {
		slog.Warn("Speech recognition failed, using fallback lyrics", "file", audioPath, "error", err)
		metrics.TranscriptionFallbacks.Inc()
		return FallbackLyrics
	}
	if strings.TrimSpace(recognized) == "" {
		slog.Debug("Recognition returned no speech", "file", audioPath)
		metrics.TranscriptionFallbacks.Inc()
		return FallbackLyrics
	}

	slog.Debug("Transcription completed", "file", audioPath, "chars", len(recognized))
	return recognized
}
