package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
provider:
  base_url: http://127.0.0.1:9999
  user: alice
  pass: hunter2
  user_agent: test-agent
  delay_seconds: 1
  timeout_seconds: 20
anki:
  url: http://127.0.0.1:8765
  timeout_seconds: 10
decks:
  words: custom::words
  sentences: custom::sentences
sync:
  quality: sd
  sentences: true
status:
  addr: ":9278"
logging:
  development: false
  journal: test.log
lock:
  path: test.lock
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider.BaseURL != "http://127.0.0.1:9999" {
		t.Fatalf("expected provider base_url override, got %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.User != "alice" || cfg.Provider.Pass != "hunter2" {
		t.Fatalf("expected provider credentials to apply")
	}
	if got := cfg.Provider.Delay(); got != time.Second {
		t.Fatalf("expected delay 1s, got %v", got)
	}
	if got := cfg.Provider.Timeout(); got != 20*time.Second {
		t.Fatalf("expected provider timeout 20s, got %v", got)
	}
	if got := cfg.Anki.Timeout(); got != 10*time.Second {
		t.Fatalf("expected anki timeout 10s, got %v", got)
	}
	if cfg.Decks.Words != "custom::words" || cfg.Decks.Sentences != "custom::sentences" {
		t.Fatalf("expected deck overrides to apply: %+v", cfg.Decks)
	}
	if cfg.Sync.Quality != "sd" || !cfg.Sync.Sentences {
		t.Fatalf("expected sync overrides to apply: %+v", cfg.Sync)
	}
	if cfg.Status.Addr != ":9278" {
		t.Fatalf("expected status addr override, got %q", cfg.Status.Addr)
	}
	if cfg.Logging.Development || cfg.Logging.Journal != "test.log" {
		t.Fatalf("expected logging overrides to apply: %+v", cfg.Logging)
	}
	if cfg.Lock.Path != "test.lock" {
		t.Fatalf("expected lock path override, got %q", cfg.Lock.Path)
	}

	// Values absent from the file keep their defaults.
	if cfg.Provider.MediaBaseURL != "https://www.signingsavvy.com" {
		t.Fatalf("expected default media base url, got %q", cfg.Provider.MediaBaseURL)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Provider: ProviderConfig{
			BaseURL:        "http://127.0.0.1:5954",
			MediaBaseURL:   "https://www.signingsavvy.com",
			DelaySeconds:   5,
			TimeoutSeconds: 15,
		},
		Anki:  AnkiConfig{URL: "http://localhost:8765", TimeoutSeconds: 30},
		Decks: DecksConfig{Words: "nonfiction::asl::words", Sentences: "nonfiction::asl::sentences"},
		Sync:  SyncConfig{Quality: "hd"},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "missing provider base url",
			cfg: func() Config {
				c := base
				c.Provider.BaseURL = ""
				return c
			}(),
			want: "provider.base_url",
		},
		{
			name: "negative delay",
			cfg: func() Config {
				c := base
				c.Provider.DelaySeconds = -1
				return c
			}(),
			want: "provider.delay_seconds",
		},
		{
			name: "missing provider timeout",
			cfg: func() Config {
				c := base
				c.Provider.TimeoutSeconds = 0
				return c
			}(),
			want: "provider.timeout_seconds",
		},
		{
			name: "missing anki url",
			cfg: func() Config {
				c := base
				c.Anki.URL = ""
				return c
			}(),
			want: "anki.url",
		},
		{
			name: "missing words deck",
			cfg: func() Config {
				c := base
				c.Decks.Words = ""
				return c
			}(),
			want: "decks.words",
		},
		{
			name: "sentences enabled without deck",
			cfg: func() Config {
				c := base
				c.Sync.Sentences = true
				c.Decks.Sentences = ""
				return c
			}(),
			want: "decks.sentences",
		},
		{
			name: "unknown quality",
			cfg: func() Config {
				c := base
				c.Sync.Quality = "4k"
				return c
			}(),
			want: "sync.quality",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
