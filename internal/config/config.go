// Package config loads and validates sync configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ankisign/internal/cards"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Anki     AnkiConfig     `mapstructure:"anki"`
	Decks    DecksConfig    `mapstructure:"decks"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Status   StatusConfig   `mapstructure:"status"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Lock     LockConfig     `mapstructure:"lock"`
}

// ProviderConfig points at the SigningSavvy JSON facade and carries the
// credentials it expects on every request.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	MediaBaseURL   string `mapstructure:"media_base_url"`
	User           string `mapstructure:"user"`
	Pass           string `mapstructure:"pass"`
	UserAgent      string `mapstructure:"user_agent"`
	DelaySeconds   int    `mapstructure:"delay_seconds"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Delay converts the courtesy pause into a duration.
func (c ProviderConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// Timeout converts the per-request timeout into a duration.
func (c ProviderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AnkiConfig controls access to the AnkiConnect endpoint.
type AnkiConfig struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout converts the AnkiConnect request timeout into a duration.
func (c AnkiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DecksConfig names the target decks.
type DecksConfig struct {
	Words     string `mapstructure:"words"`
	Sentences string `mapstructure:"sentences"`
}

// SyncConfig governs what a run covers.
type SyncConfig struct {
	Quality   string `mapstructure:"quality"`
	Sentences bool   `mapstructure:"sentences"`
}

// StatusConfig controls the optional diagnostic HTTP server. An empty addr
// disables it.
type StatusConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features and names the run journal.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Journal     string `mapstructure:"journal"`
}

// LockConfig names the file lock that keeps runs from overlapping.
type LockConfig struct {
	Path string `mapstructure:"path"`
}

// Load builds a Config from disk/environment. When path is empty the usual
// search paths are tried and a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ANKISIGN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("ankisign")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ankisign")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider.base_url", "http://127.0.0.1:5954")
	v.SetDefault("provider.media_base_url", "https://www.signingsavvy.com")
	v.SetDefault("provider.user_agent", "ankisign/0.1")
	v.SetDefault("provider.delay_seconds", 5)
	v.SetDefault("provider.timeout_seconds", 15)
	v.SetDefault("anki.url", "http://localhost:8765")
	v.SetDefault("anki.timeout_seconds", 30)
	v.SetDefault("decks.words", "nonfiction::asl::words")
	v.SetDefault("decks.sentences", "nonfiction::asl::sentences")
	v.SetDefault("sync.quality", string(cards.QualityHigh))
	v.SetDefault("sync.sentences", false)
	v.SetDefault("status.addr", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.journal", "signingsavvy_anki.log")
	v.SetDefault("lock.path", "ankisign.lock")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url must be set")
	}
	if _, err := url.Parse(c.Provider.BaseURL); err != nil {
		return fmt.Errorf("provider.base_url invalid: %w", err)
	}
	if c.Provider.MediaBaseURL == "" {
		return fmt.Errorf("provider.media_base_url must be set")
	}
	if c.Provider.DelaySeconds < 0 {
		return fmt.Errorf("provider.delay_seconds must be >= 0")
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("provider.timeout_seconds must be > 0")
	}
	if c.Anki.URL == "" {
		return fmt.Errorf("anki.url must be set")
	}
	if c.Anki.TimeoutSeconds <= 0 {
		return fmt.Errorf("anki.timeout_seconds must be > 0")
	}
	if c.Decks.Words == "" {
		return fmt.Errorf("decks.words must be set")
	}
	if c.Sync.Sentences && c.Decks.Sentences == "" {
		return fmt.Errorf("decks.sentences must be set when sync.sentences is enabled")
	}
	if _, err := cards.ParseQuality(c.Sync.Quality); err != nil {
		return fmt.Errorf("sync.quality: %w", err)
	}
	return nil
}
