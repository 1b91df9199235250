package transcriber

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqAdapter implements Adapter against Groq's OpenAI-compatible audio API.
type GroqAdapter struct {
	client *openai.Client
	config Config
}

func NewGroqAdapter(config Config) *GroqAdapter {
	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = groqBaseURL

	if config.Model == "" {
		config.Model = "whisper-large-v3"
	}

	return &GroqAdapter{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

func (a *GroqAdapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	req := openai.AudioRequest{
		Model:    a.config.Model,
		FilePath: audioPath,
		Language: a.config.Language,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("groq-adapter: API call failed after %v: %v", duration, err)
		return "", fmt.Errorf("groq transcription: %w", err)
	}

	log.Printf("groq-adapter: transcribed %s in %v: %q", audioPath, duration, resp.Text)
	return resp.Text, nil
}
