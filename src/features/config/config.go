package config

// Config holds the application configuration.
type Config struct {
	LibraryPath string      `yaml:"libraryPath" validate:"required"`
	StagingPath string      `yaml:"stagingPath" validate:"required"`
	Server      Server      `yaml:"server"`
	Logger      Logger      `yaml:"logger"`
	Database    Database    `yaml:"database"`
	Recognition Recognition `yaml:"recognition"`
	Telegram    Telegram    `yaml:"telegram"`
	Jobs        Jobs        `yaml:"jobs"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Database holds the configuration for the account store.
// Backend selects between the JSON file store and the SQLite store.
type Database struct {
	Backend string `yaml:"backend" validate:"required,oneof=file sqlite"`
	Path    string `yaml:"path" validate:"required"`
}

// Recognition holds the configuration for the speech-to-text capability.
type Recognition struct {
	Endpoint       string `yaml:"endpoint"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	// FFmpegPath is the converter used for non-WAV uploads. Empty disables
	// conversion; WAV files are always decoded natively.
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// Telegram holds the configuration for the notification bot.
type Telegram struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token,omitempty"`
	AllowedUsers []string `yaml:"allowed_users"`
	ChatID       int64    `yaml:"chat_id"`
}

// Jobs holds the configuration for background job logging.
type Jobs struct {
	Log     bool   `yaml:"log"`
	LogPath string `yaml:"log_path"`
}
