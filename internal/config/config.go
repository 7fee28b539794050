package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the service.
type Config struct {
	TelegramToken    string
	DatabaseURL      string
	HTTPAddr         string
	ReminderInterval time.Duration
	InviteUsageLimit int
	DigestTime       string // HH:MM, empty disables the daily digest
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HTTPAddr:         strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		ReminderInterval: parseDuration(strings.TrimSpace(os.Getenv("REMINDER_INTERVAL"))),
		InviteUsageLimit: parseInt(strings.TrimSpace(os.Getenv("INVITE_USAGE_LIMIT"))),
		DigestTime:       strings.TrimSpace(os.Getenv("DIGEST_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "collab_todo.db"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.ReminderInterval == 0 {
		cfg.ReminderInterval = time.Minute
	}
	if cfg.InviteUsageLimit == 0 {
		cfg.InviteUsageLimit = 10
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
