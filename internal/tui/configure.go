// Package tui implements the interactive configuration setup for the
// caption server: backend providers, API keys, and the listen address.
package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/muesli/termenv"

	"github.com/bobbygenerik/stream-transcribe-server/internal/config"
)

// Run walks the user through the configuration and mutates cfg in place.
// Returns huh.ErrUserAborted if the user cancels.
func Run(cfg *config.Config) error {
	clearScreen()

	transcription := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Transcription provider").
			Description("Backend used to turn audio segments into text").
			Options(
				huh.NewOption("OpenAI (whisper-1)", "openai"),
				huh.NewOption("Groq (whisper-large-v3)", "groq"),
				huh.NewOption("whisper.cpp (local)", "whisper.cpp"),
			).
			Value(&cfg.Transcription.Provider),
		huh.NewInput().
			Title("Transcription API key").
			Description("Leave empty to use OPENAI_API_KEY / GROQ_API_KEY").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Transcription.APIKey),
		huh.NewInput().
			Title("Model").
			Description("Model name, or ggml model path for whisper.cpp").
			Value(&cfg.Transcription.Model),
	)

	translation := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Translation provider").
			Description("Backend used to translate captions into the session's target language").
			Options(
				huh.NewOption("OpenAI chat model", "openai"),
				huh.NewOption("None (captions stay untranslated)", "none"),
			).
			Value(&cfg.Translation.Provider),
		huh.NewInput().
			Title("Translation API key").
			Description("Leave empty to use OPENAI_API_KEY").
			EchoMode(huh.EchoModePassword).
			Value(&cfg.Translation.APIKey),
	)

	server := huh.NewGroup(
		huh.NewInput().
			Title("Listen address").
			Description("host:port the HTTP server binds to").
			Value(&cfg.Server.ListenAddr),
		huh.NewInput().
			Title("Sessions directory").
			Description("Where segment chunks and subtitle files are stored").
			Value(&cfg.Server.SessionsDir),
	)

	form := huh.NewForm(transcription, translation, server).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		return fmt.Errorf("configuration form: %w", err)
	}
	return nil
}

func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}
