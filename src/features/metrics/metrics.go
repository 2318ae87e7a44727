// Package metrics exposes operational counters for the catalog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SongUploads counts songs committed to the catalog.
	SongUploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "songvault_song_uploads_total",
		Help: "Number of songs added to the catalog.",
	})

	// TranscriptionFallbacks counts transcriptions that produced the
	// placeholder text instead of recognized lyrics.
	TranscriptionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "songvault_transcription_fallbacks_total",
		Help: "Number of transcriptions that fell back to the placeholder text.",
	})

	// TranscriptionDuration observes how long the transcription pipeline takes.
	TranscriptionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "songvault_transcription_duration_seconds",
		Help:    "Duration of the transcription pipeline per upload.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// CollectionChanges counts collection create/assign/add operations.
	CollectionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "songvault_collection_changes_total",
		Help: "Number of collection mutations by operation.",
	}, []string{"operation"})
)
