package hosting

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/contre95/songvault/src/features/config"
	"github.com/contre95/songvault/src/features/jobs"
	"github.com/contre95/songvault/src/music"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot notifies about finished uploads and answers catalog queries.
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	store    music.Store
	jobs     *jobs.Service
	updates  tgbotapi.UpdatesChannel
	stopChan chan struct{}
}

// NewTelegramBot creates a new Telegram bot instance.
func NewTelegramBot(cfg *config.Manager, store music.Store, jobService *jobs.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := &TelegramBot{
		bot:      bot,
		config:   cfg,
		store:    store,
		jobs:     jobService,
		updates:  bot.GetUpdatesChan(updateConfig),
		stopChan: make(chan struct{}),
	}

	// Push a note to the configured chat whenever an upload job settles.
	jobService.OnFinish(telegramBot.notifyJobFinished)

	return telegramBot, nil
}

// Start begins listening for Telegram updates.
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")
	for {
		select {
		case update := <-t.updates:
			if update.Message == nil {
				continue
			}
			t.handleMessage(update.Message)
		case <-t.stopChan:
			return
		}
	}
}

// Stop stops the bot listener.
func (t *TelegramBot) Stop() {
	close(t.stopChan)
	t.bot.StopReceivingUpdates()
}

func (t *TelegramBot) isAllowed(username string) bool {
	allowed := t.config.Get().Telegram.AllowedUsers
	return len(allowed) == 0 || slices.Contains(allowed, username)
}

func (t *TelegramBot) handleMessage(msg *tgbotapi.Message) {
	if !t.isAllowed(msg.From.UserName) {
		slog.Warn("Ignoring message from unauthorized user", "user", msg.From.UserName)
		return
	}
	if !msg.IsCommand() {
		return
	}

	var reply string
	switch msg.Command() {
	case "start", "help":
		reply = "Commands:\n/songs <account> - list an account's songs\n/jobs - list recent jobs"
	case "songs":
		reply = t.songsReply(msg.CommandArguments())
	case "jobs":
		reply = t.jobsReply()
	default:
		reply = "Unknown command. Try /help."
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
		slog.Error("Failed to send Telegram reply", "error", err)
	}
}

func (t *TelegramBot) songsReply(args string) string {
	username := strings.TrimSpace(args)
	if username == "" {
		return "Usage: /songs <account>"
	}
	acc, err := t.store.GetAccount(context.Background(), username)
	if err != nil {
		return fmt.Sprintf("Account %q not found.", username)
	}
	if len(acc.Songs) == 0 {
		return fmt.Sprintf("%s has no songs yet.", username)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d songs):\n", username, len(acc.Songs))
	for _, song := range acc.Songs {
		fmt.Fprintf(&b, "- %s [%s]\n", song.Title, song.ID)
	}
	return b.String()
}

func (t *TelegramBot) jobsReply() string {
	jobList := t.jobs.GetJobs()
	if len(jobList) == 0 {
		return "No jobs."
	}
	var b strings.Builder
	for _, job := range jobList {
		fmt.Fprintf(&b, "%s %s (%s) %d%%\n", job.Name, job.Status, job.ID[:8], job.Progress)
	}
	return b.String()
}

func (t *TelegramBot) notifyJobFinished(job *jobs.Job) {
	chatID := t.config.Get().Telegram.ChatID
	if chatID == 0 {
		return
	}
	var text string
	switch job.Status {
	case jobs.JobStatusCompleted:
		text = fmt.Sprintf("✅ %s finished", job.Name)
		if title, ok := job.Metadata["song_title"].(string); ok {
			text = fmt.Sprintf("✅ Published %q", title)
		}
	case jobs.JobStatusFailed:
		text = fmt.Sprintf("❌ %s failed: %s", job.Name, job.Error)
	case jobs.JobStatusCancelled:
		text = fmt.Sprintf("🚫 %s cancelled", job.Name)
	default:
		return
	}
	if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Error("Failed to send Telegram notification", "error", err)
	}
}
