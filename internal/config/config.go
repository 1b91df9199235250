package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobbygenerik/stream-transcribe-server/internal/segmenter"
	"github.com/bobbygenerik/stream-transcribe-server/internal/transcriber"
	"github.com/bobbygenerik/stream-transcribe-server/internal/translator"
)

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Segmenter     SegmenterConfig     `toml:"segmenter"`
	Pipeline      PipelineConfig      `toml:"pipeline"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Translation   TranslationConfig   `toml:"translation"`
}

type ServerConfig struct {
	ListenAddr  string `toml:"listen_addr"`
	SessionsDir string `toml:"sessions_dir"`
}

type SegmenterConfig struct {
	FFmpegPath       string `toml:"ffmpeg_path"`
	SampleRate       int    `toml:"sample_rate"`
	Channels         int    `toml:"channels"`
	DefaultChunkSecs int    `toml:"default_chunk_seconds"`
}

type PipelineConfig struct {
	PollInterval     time.Duration `toml:"poll_interval"`
	StepTimeout      time.Duration `toml:"step_timeout"`
	SubscriberBuffer int           `toml:"subscriber_buffer"`
}

type TranscriptionConfig struct {
	Provider string        `toml:"provider"`
	APIKey   string        `toml:"api_key"`
	Model    string        `toml:"model"`
	Language string        `toml:"language"`
	Timeout  time.Duration `toml:"timeout"`
}

type TranslationConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

func (c *Config) ToSegmenterConfig() segmenter.Config {
	return segmenter.Config{
		FFmpegPath: c.Segmenter.FFmpegPath,
		SampleRate: c.Segmenter.SampleRate,
		Channels:   c.Segmenter.Channels,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	config := transcriber.Config{
		Provider: c.Transcription.Provider,
		APIKey:   c.Transcription.APIKey,
		Model:    c.Transcription.Model,
		Language: c.Transcription.Language,
		Timeout:  c.Transcription.Timeout,
	}

	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return config
}

func (c *Config) ToTranslatorConfig() translator.Config {
	config := translator.Config{
		Provider: c.Translation.Provider,
		APIKey:   c.Translation.APIKey,
		Model:    c.Translation.Model,
	}

	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return config
}

func (c *Config) Validate() error {
	// Server
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("invalid server.listen_addr: empty")
	}
	if c.Server.SessionsDir == "" {
		return fmt.Errorf("invalid server.sessions_dir: empty")
	}

	// Segmenter
	if c.Segmenter.SampleRate <= 0 {
		return fmt.Errorf("invalid segmenter.sample_rate: %d", c.Segmenter.SampleRate)
	}
	if c.Segmenter.Channels <= 0 {
		return fmt.Errorf("invalid segmenter.channels: %d", c.Segmenter.Channels)
	}
	if c.Segmenter.DefaultChunkSecs <= 0 {
		return fmt.Errorf("invalid segmenter.default_chunk_seconds: %d", c.Segmenter.DefaultChunkSecs)
	}

	// Pipeline
	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("invalid pipeline.poll_interval: %v", c.Pipeline.PollInterval)
	}
	if c.Pipeline.StepTimeout <= 0 {
		return fmt.Errorf("invalid pipeline.step_timeout: %v", c.Pipeline.StepTimeout)
	}
	if c.Pipeline.SubscriberBuffer <= 0 {
		return fmt.Errorf("invalid pipeline.subscriber_buffer: %d", c.Pipeline.SubscriberBuffer)
	}

	// Transcription
	if c.Transcription.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}
	if c.Transcription.Provider == "openai" || c.Transcription.Provider == "groq" {
		apiKey := c.Transcription.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			apiKey = os.Getenv("GROQ_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("%s API key required: not found in config (transcription.api_key) or environment", c.Transcription.Provider)
		}
	}
	if c.Transcription.Model == "" && c.Transcription.Provider != "groq" {
		return fmt.Errorf("invalid transcription.model: empty")
	}

	// Translation
	validProviders := map[string]bool{"openai": true, "none": true, "": true}
	if !validProviders[c.Translation.Provider] {
		return fmt.Errorf("invalid translation.provider: %s (must be openai or none)", c.Translation.Provider)
	}

	return nil
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	serverDir := filepath.Join(configDir, "stserver")
	if err := os.MkdirAll(serverDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(serverDir, "config.toml"), nil
}
