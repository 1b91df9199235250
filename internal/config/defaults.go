package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:  ":8080",
			SessionsDir: "sessions",
		},
		Segmenter: SegmenterConfig{
			FFmpegPath:       "ffmpeg",
			SampleRate:       16000,
			Channels:         1,
			DefaultChunkSecs: 8,
		},
		Pipeline: PipelineConfig{
			PollInterval:     time.Second,
			StepTimeout:      60 * time.Second,
			SubscriberBuffer: 16,
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Language: "",
			Timeout:  60 * time.Second,
		},
		Translation: TranslationConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
	}
}
