// Package config loads the bot configuration from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DiscordToken      string   `env:"DISCORD_TOKEN,notEmpty"`
	GuildBlacklist    []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	CommandCacheDir   string   `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	LogDir          string `env:"LOG_DIR" envDefault:"logs"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	EventLogEnabled bool   `env:"EVENT_LOG_ENABLED" envDefault:"true"`

	// Player
	IdleTimeout         time.Duration `env:"IDLE_TIMEOUT" envDefault:"30s"`
	PollInterval        time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	ConnectPollInterval time.Duration `env:"CONNECT_POLL_INTERVAL" envDefault:"250ms"`
	ConnectTimeout      time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	QueuePreview        int           `env:"QUEUE_PREVIEW" envDefault:"15"`
	NotifyRate          time.Duration `env:"NOTIFY_RATE" envDefault:"1s"`

	// Resolver
	SearchResults  int           `env:"SEARCH_RESULTS" envDefault:"5"`
	SelectTimeout  time.Duration `env:"SELECT_TIMEOUT" envDefault:"60s"`
	ResolveWorkers int           `env:"RESOLVE_WORKERS" envDefault:"3"`
	PlaylistLimit  int           `env:"PLAYLIST_LIMIT" envDefault:"100"`
	FFmpegPath     string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
}

// New reads .env (if any) and parses the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	cfg.DiscordToken = strings.TrimSpace(cfg.DiscordToken)
	for i, id := range cfg.GuildBlacklist {
		cfg.GuildBlacklist[i] = strings.TrimSpace(id)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"IDLE_TIMEOUT":          c.IdleTimeout,
		"POLL_INTERVAL":         c.PollInterval,
		"CONNECT_POLL_INTERVAL": c.ConnectPollInterval,
		"CONNECT_TIMEOUT":       c.ConnectTimeout,
		"SELECT_TIMEOUT":        c.SelectTimeout,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.SearchResults < 1 || c.SearchResults > 25 {
		errs = append(errs, fmt.Errorf("SEARCH_RESULTS must be between 1 and 25, got %d", c.SearchResults))
	}
	if c.ResolveWorkers < 1 {
		errs = append(errs, fmt.Errorf("RESOLVE_WORKERS must be at least 1, got %d", c.ResolveWorkers))
	}
	if c.QueuePreview < 1 {
		errs = append(errs, fmt.Errorf("QUEUE_PREVIEW must be at least 1, got %d", c.QueuePreview))
	}
	return errors.Join(errs...)
}

// IsGuildBlacklisted reports whether the bot should ignore guildID.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}
