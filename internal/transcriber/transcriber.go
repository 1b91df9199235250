package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Adapter is the capability interface for transcription backends: one audio
// segment file in, raw text out. A failure is recovered by the pipeline
// (empty caption), so adapters only need to report it.
type Adapter interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Config selects and parameterizes a transcription backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Model:    "whisper-1",
		Timeout:  60 * time.Second,
	}
}

// New creates the adapter for the configured provider.
func New(config Config) (Adapter, error) {
	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAIAdapter(config), nil

	case "groq":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("GROQ_API_KEY")
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		return NewGroqAdapter(config), nil

	case "whisper.cpp":
		return NewWhisperCppAdapter(config.Model, config.Language, 0), nil

	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", config.Provider)
	}
}
