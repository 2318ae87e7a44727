package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/contre95/songvault/src/features/accounts"
	"github.com/contre95/songvault/src/features/collections"
	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/features/hosting"
	"github.com/contre95/songvault/src/features/jobs"
	"github.com/contre95/songvault/src/features/library"
	"github.com/contre95/songvault/src/features/logging"
	"github.com/contre95/songvault/src/features/transcribing"
	"github.com/contre95/songvault/src/infra/audio"
	"github.com/contre95/songvault/src/infra/database"
	"github.com/contre95/songvault/src/infra/files"
	"github.com/contre95/songvault/src/infra/recognize"
	"github.com/contre95/songvault/src/infra/store"
	"github.com/contre95/songvault/src/infra/tag"
	"github.com/contre95/songvault/src/music"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	if err := cfgManager.EnsureDirectories(); err != nil {
		log.Fatalf("failed to create library directories: %v", err)
	}
	if err := cfgManager.Watch(); err != nil {
		slog.Warn("Config hot reload disabled", "error", err)
	}
	defer cfgManager.Close()

	// Create the account store
	var accountStore music.Store
	switch cfgManager.Get().Database.Backend {
	case "sqlite":
		accountStore, err = database.NewSqliteStore(cfgManager.Get().Database.Path)
	default:
		accountStore, err = store.NewFileStore(cfgManager.Get().Database.Path)
	}
	if err != nil {
		log.Fatalf("failed to open account store: %v", err)
	}

	// Blob storage for audio and lyric files
	blobs := files.NewStorage(cfgManager.Get().LibraryPath)

	// Transcription pipeline: normalize to mono 16 kHz WAV, then recognize
	recognition := cfgManager.Get().Recognition
	normalizer := audio.NewNormalizer(recognition.FFmpegPath)
	recognizer := recognize.NewHTTPRecognizer(recognition.Endpoint, recognition.Language, time.Duration(recognition.TimeoutSeconds)*time.Second)
	transcribingService := transcribing.NewService(normalizer, recognizer, cfgManager)

	// Create the job service
	jobService := jobs.NewService(&cfgManager.Get().Jobs)

	// Feature services
	accountsService := accounts.NewService(accountStore)
	libraryService := library.NewService(accountStore, blobs, transcribingService, tag.NewReader(), tag.NewWriter())
	collectionsService := collections.NewService(accountStore)

	// Register the upload task
	uploadTask := transcribing.NewUploadTask(libraryService)
	jobService.RegisterHandler("song_upload", jobs.NewBaseTaskHandler(uploadTask))

	// Create and start the Telegram bot if enabled
	var telegramBot *hosting.TelegramBot
	if cfgManager.Get().Telegram.Enabled {
		telegramBot, err = hosting.NewTelegramBot(cfgManager, accountStore, jobService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			slog.Info("Telegram bot started")
		}
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, accountStore, accountsService, libraryService, collectionsService, jobService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	if telegramBot != nil {
		telegramBot.Stop()
		slog.Info("Telegram bot stopped")
	}

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
