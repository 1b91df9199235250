package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }},
		{"empty sessions dir", func(c *Config) { c.Server.SessionsDir = "" }},
		{"zero sample rate", func(c *Config) { c.Segmenter.SampleRate = 0 }},
		{"zero channels", func(c *Config) { c.Segmenter.Channels = 0 }},
		{"zero chunk seconds", func(c *Config) { c.Segmenter.DefaultChunkSecs = 0 }},
		{"zero poll interval", func(c *Config) { c.Pipeline.PollInterval = 0 }},
		{"zero step timeout", func(c *Config) { c.Pipeline.StepTimeout = 0 }},
		{"zero subscriber buffer", func(c *Config) { c.Pipeline.SubscriberBuffer = 0 }},
		{"empty transcription provider", func(c *Config) { c.Transcription.Provider = "" }},
		{"bad translation provider", func(c *Config) { c.Translation.Provider = "google" }},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() accepted invalid config", tt.name)
		}
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	cfg := DefaultConfig()
	cfg.Transcription.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted openai provider without an API key")
	}

	cfg.Transcription.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with explicit key failed: %v", err)
	}
}

func TestLoadPathParsesDurations(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
  listen_addr = ":9000"
  sessions_dir = "/tmp/sessions"

[pipeline]
  poll_interval = "500ms"
  step_timeout = "2m"
  subscriber_buffer = 4

[transcription]
  provider = "whisper.cpp"
  model = "/models/ggml-base.bin"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPath(configPath)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("listen_addr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Pipeline.PollInterval != 500*time.Millisecond {
		t.Errorf("poll_interval = %v", cfg.Pipeline.PollInterval)
	}
	if cfg.Pipeline.StepTimeout != 2*time.Minute {
		t.Errorf("step_timeout = %v", cfg.Pipeline.StepTimeout)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	original := DefaultConfig()
	original.Server.ListenAddr = ":7070"
	original.Transcription.Provider = "groq"

	if err := Save(original, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadPath(configPath)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if *loaded != *original {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, original)
	}
}

func TestLoadPathMissingFile(t *testing.T) {
	if _, err := LoadPath(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadPath on missing file succeeded")
	}
}
