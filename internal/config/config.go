package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string        `envconfig:"TELEGRAM_TOKEN" required:"true"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" default:"data/deadlines.db"`
	CheckInterval  time.Duration `envconfig:"CHECK_INTERVAL" default:"60s"`
	ReminderHours  []int         `envconfig:"REMINDER_HOURS" default:"24,72,120"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	ActionCooldown time.Duration `envconfig:"ACTION_COOLDOWN" default:"168h"`
	SendRatePerSec int           `envconfig:"SEND_RATE_PER_SEC" default:"25"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot express with tags.
func (c Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.CheckInterval < time.Second {
		return fmt.Errorf("CHECK_INTERVAL must be at least 1s, got %s", c.CheckInterval)
	}
	if len(c.ReminderHours) == 0 {
		return fmt.Errorf("REMINDER_HOURS must not be empty")
	}
	for _, h := range c.ReminderHours {
		if h <= 0 {
			return fmt.Errorf("REMINDER_HOURS must be positive, got %d", h)
		}
	}
	if c.SendRatePerSec <= 0 {
		return fmt.Errorf("SEND_RATE_PER_SEC must be positive, got %d", c.SendRatePerSec)
	}
	return nil
}
