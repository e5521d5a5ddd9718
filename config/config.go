// Package config loads the daemon configuration from a TOML file and
// validates it. Both the bot and the web daemon read the same file; each
// checks the extra fields it needs at startup.
package config

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds every setting the daemons accept.
type Config struct {
	// BotToken is the Telegram bot API token. Required by the bot daemon.
	BotToken string `toml:"bot_token"`

	// StorageDir is the absolute path to the archive root. Required.
	StorageDir string `toml:"storage_dir"`

	// RateLimitPerMin is the number of messages each user may send per
	// minute before the bot refuses to archive more.
	RateLimitPerMin int `toml:"rate_limit_per_min"`

	// MaxAudioBytes is the largest voice file the bot will download.
	MaxAudioBytes int64 `toml:"max_audio_bytes"`

	// Allowlist restricts the bot to these user ids. Empty admits everyone.
	Allowlist []int64 `toml:"allowlist"`

	// IncludeSender records the numeric sender id in metadata when true.
	// Off by default: the archive keeps minimal PII.
	IncludeSender bool `toml:"include_sender"`

	// Port the web daemon listens on.
	Port string `toml:"port"`

	// TokensFile is the web API key list, one "user role token" per line.
	// If empty the web daemon runs without authentication.
	TokensFile string `toml:"tokens_file"`

	// SentryDSN enables error capture when set.
	SentryDSN string `toml:"sentry_dsn"`
}

// Load reads and validates the configuration at path. Missing optional
// fields receive their defaults.
func Load(path string) (*Config, error) {
	c := &Config{
		RateLimitPerMin: 10,
		MaxAudioBytes:   50 << 20,
		Port:            "8000",
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.StorageDir == "" {
		return errors.New("storage_dir is required")
	}
	if !filepath.IsAbs(c.StorageDir) {
		return errors.New("storage_dir must be an absolute path")
	}
	if c.RateLimitPerMin < 1 {
		return errors.New("rate_limit_per_min must be at least 1")
	}
	if c.MaxAudioBytes < 1024 {
		return errors.New("max_audio_bytes must be at least 1024")
	}
	return nil
}

// UserAllowed reports whether the given user may use the bot. An empty
// allowlist admits everyone.
func (c *Config) UserAllowed(userID int64) bool {
	if len(c.Allowlist) == 0 {
		return true
	}
	for _, id := range c.Allowlist {
		if id == userID {
			return true
		}
	}
	return false
}

// RedactedSummary returns the settings in a form safe for startup logging.
// The bot token is reduced to its length.
func (c *Config) RedactedSummary() map[string]interface{} {
	return map[string]interface{}{
		"bot_token_length":   len(c.BotToken),
		"storage_dir":        c.StorageDir,
		"rate_limit_per_min": c.RateLimitPerMin,
		"max_audio_bytes":    c.MaxAudioBytes,
		"allowlist_count":    len(c.Allowlist),
		"include_sender":     c.IncludeSender,
		"port":               c.Port,
	}
}
