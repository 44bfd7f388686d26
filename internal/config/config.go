// Package config loads vitae settings from the config file, a .env file,
// VITAE_* environment variables and the platform secret store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Engine     EngineConfig
	Ollama     OllamaConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Storage    StorageConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
	// APIToken, when set, is required as a bearer token on /v1 routes.
	APIToken string
}

type EngineConfig struct {
	// Backend is "ollama", "gemini", "openrouter" or empty to pick one from
	// the configured credentials.
	Backend string
	Timeout time.Duration
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Engine: EngineConfig{
			Timeout: 120 * time.Second,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration. Later sources override earlier ones:
//
//  1. built-in defaults
//  2. $XDG_CONFIG_HOME/vitae/config.yaml
//  3. a .env file in the working directory (never overrides the real environment)
//  4. VITAE_* environment variables
//
// Secrets left empty after that are looked up in the platform secret store.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}
	b, err := newFileBackend(configFilePath())
	if err != nil {
		return Config{}, err
	}
	return loadWith(b, keychainReader{})
}

// keychain abstracts secret store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	applySecrets(&cfg, kc)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applySecrets(cfg *Config, kc keychain) {
	for _, s := range specs {
		if !s.secret || s.extract(*cfg) != "" {
			continue
		}
		if v, err := kc.Get(secretService, s.account()); err == nil && v != "" {
			s.apply(cfg, v)
		}
	}
}

func validate(cfg Config) error {
	switch strings.ToLower(cfg.Engine.Backend) {
	case "", "ollama":
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return missingSecret("gemini.api_key")
		}
	case "openrouter":
		if cfg.OpenRouter.APIKey == "" {
			return missingSecret("openrouter.api_key")
		}
	default:
		return fmt.Errorf("invalid engine.backend %q: want ollama, gemini or openrouter", cfg.Engine.Backend)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	return nil
}

func missingSecret(key string) error {
	s, _ := lookup(key)
	return fmt.Errorf("missing required config: %s. Set it via environment variable %s or `vitae config set %s <value>`%s",
		key, s.env, key, secretHint(s.account()))
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
