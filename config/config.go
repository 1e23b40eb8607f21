// Package config loads the application configuration from an optional YAML
// file plus SPOTIFAI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant.
type Config struct {
	Agent   AgentConfig   `mapstructure:"agent"`
	Model   ModelConfig   `mapstructure:"model"`
	Spotify SpotifyConfig `mapstructure:"spotify"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// AgentConfig tunes the orchestration engine.
type AgentConfig struct {
	Domain             string `mapstructure:"domain"`
	Tone               string `mapstructure:"tone"`
	HumanName          string `mapstructure:"human_name"`
	ThreadID           string `mapstructure:"thread_id"`
	SummarizeThreshold int    `mapstructure:"summarize_threshold"`
	MaxStageVisits     int    `mapstructure:"max_stage_visits"`
	Verbose            bool   `mapstructure:"verbose"`
}

// ModelConfig selects the oracle provider and model.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"` // openai or anthropic
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// SpotifyConfig covers the OAuth client and callback server.
type SpotifyConfig struct {
	ClientID       string        `mapstructure:"client_id"`
	RedirectHost   string        `mapstructure:"redirect_host"`
	RedirectPort   int           `mapstructure:"redirect_port"`
	TokenCachePath string        `mapstructure:"token_cache_path"`
	OpenBrowser    bool          `mapstructure:"open_browser"`
	AuthTimeout    time.Duration `mapstructure:"auth_timeout"`
}

func (c SpotifyConfig) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("spotify.client_id is required (set SPOTIFAI_SPOTIFY_CLIENT_ID)")
	}
	if c.RedirectPort <= 0 || c.RedirectPort > 65535 {
		return fmt.Errorf("spotify.redirect_port must be a valid port")
	}
	return nil
}

// StorageConfig selects where conversation state is persisted. An empty
// redis address keeps state in memory.
type StorageConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	TTLHours      int    `mapstructure:"ttl_hours"`
}

// LoggingConfig controls the slog backend.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// Load reads configuration from the given file (optional when empty) and the
// environment. Missing config files are fine; env and defaults then apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Every key gets a default so AutomaticEnv can override it through
	// Unmarshal; viper only maps env vars onto keys it already knows.
	v.SetDefault("agent.domain", "Eres experto en música y en el uso de herramientas de Spotify.")
	v.SetDefault("agent.tone", "Cercano, profesional y entusiasta.")
	v.SetDefault("agent.human_name", "")
	v.SetDefault("agent.thread_id", "1")
	v.SetDefault("agent.summarize_threshold", 10)
	v.SetDefault("agent.max_stage_visits", 50)
	v.SetDefault("agent.verbose", false)
	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "gpt-4o-mini")
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.max_tokens", 0)
	v.SetDefault("spotify.client_id", "")
	v.SetDefault("spotify.redirect_host", "localhost")
	v.SetDefault("spotify.redirect_port", 8443)
	v.SetDefault("spotify.token_cache_path", "")
	v.SetDefault("spotify.open_browser", true)
	v.SetDefault("spotify.auth_timeout", 3*time.Minute)
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.key_prefix", "deepagent:state:")
	v.SetDefault("storage.ttl_hours", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if path == "" {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".spotifai"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SPOTIFAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
