package config

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads the config file, creating it with defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file found at %s, creating with defaults", configPath)
		if err := Save(DefaultConfig(), configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	return LoadPath(configPath)
}

// LoadPath reads and parses a specific config file.
func LoadPath(configPath string) (*Config, error) {
	log.Printf("Config: loading configuration from %s", configPath)

	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	return &config, nil
}

// Save writes the configuration as commented TOML.
func Save(config *Config, configPath string) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const header = `# stserver configuration
#
# [server]        listen_addr, sessions_dir (session state and subtitle files)
# [segmenter]     ffmpeg binary and audio format for stream slicing
# [pipeline]      poll_interval, step_timeout, per-viewer subscriber_buffer
# [transcription] provider: "openai", "groq" or "whisper.cpp"
#                 (for whisper.cpp, model is the path to a ggml model file)
# [translation]   provider: "openai" or "none"
#
# API keys may also come from OPENAI_API_KEY / GROQ_API_KEY.

`
