package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bobbygenerik/stream-transcribe-server/internal/config"
	"github.com/bobbygenerik/stream-transcribe-server/internal/server"
	"github.com/bobbygenerik/stream-transcribe-server/internal/session"
	"github.com/bobbygenerik/stream-transcribe-server/internal/transcriber"
	"github.com/bobbygenerik/stream-transcribe-server/internal/translator"
	"github.com/bobbygenerik/stream-transcribe-server/internal/tui"
)

const version = "0.1.0"

func main() {
	_ = rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "stserver",
	Short: "Live captioning server for streaming audio/video sources",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		configureCmd(),
		versionCmd(),
	)
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the captioning server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default: user config dir)")
	return cmd
}

func runServe(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	tr, err := transcriber.New(cfg.ToTranscriberConfig())
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}
	tl, err := translator.New(cfg.ToTranslatorConfig())
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	manager := session.NewManager(session.Options{
		SessionsDir:      cfg.Server.SessionsDir,
		PollInterval:     cfg.Pipeline.PollInterval,
		StepTimeout:      cfg.Pipeline.StepTimeout,
		SubscriberBuffer: cfg.Pipeline.SubscriberBuffer,
		Segmenter:        cfg.ToSegmenterConfig(),
	}, tr, tl)

	srv := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.New(manager).Router(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server: listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down gracefully", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	manager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration setup for stserver.
This will guide you through setting up:
- Transcription backend and API key
- Translation backend
- Server listen address and session storage`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := tui.Run(cfg); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("Configuration cancelled.")
			return nil
		}
		return fmt.Errorf("configuration wizard error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Printf("Config file location: %s\n", configPath)
	fmt.Println()
	fmt.Println("Start the server with: stserver serve")
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}
