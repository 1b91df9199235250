package translator

import (
	"context"
	"fmt"
	"os"
)

// Adapter is the capability interface for translation backends. A failed
// translation degrades to the untranslated text upstream, so adapters only
// report the failure.
type Adapter interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Config selects and parameterizes a translation backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}
}

// New creates the adapter for the configured provider. Provider "none"
// passes text through untranslated.
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

	case "none", "":
		return Noop{}, nil

	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", config.Provider)
	}
}

// Noop passes text through unchanged. Used when no translation backend is
// configured or the caption language already matches the stream.
type Noop struct{}

func (Noop) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return text, nil
}
