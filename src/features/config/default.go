package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// createDefaultConfig creates a new Config with sensible default values.
func createDefaultConfig() *Config {
	return &Config{
		LibraryPath: "./library",
		StagingPath: "./staging",
		Server: Server{
			PrintRoutes: false,
			Port:        3636,
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Database: Database{
			Backend: "file",
			Path:    "./library/users.json",
		},
		Recognition: Recognition{
			Endpoint:       "http://localhost:8080/inference",
			Language:       "en",
			TimeoutSeconds: 120,
			FFmpegPath:     "ffmpeg",
		},
		Telegram: Telegram{
			Enabled:      false,
			Token:        "", // Can be obtained with https://t.me/BotFather
			AllowedUsers: []string{},
		},
		Jobs: Jobs{
			Log:     false,
			LogPath: "./logs",
		},
	}
}

// saveDefaultConfig writes the default configuration to the given path.
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	return encoder.Encode(cfg)
}
