// Package config layers defaults, the JSON config file, a local .env
// file, and CHICBOT_* environment variables into the runtime
// configuration.
package config

import (
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Inference InferenceConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Search    SearchConfig
	Log       LogConfig
	API       APIConfig
}

type ServerConfig struct {
	Port int
}

// InferenceConfig points at the model server hosting the language and
// intent classifiers.
type InferenceConfig struct {
	BaseURL string
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type StorageConfig struct {
	DataDir string
}

type SearchConfig struct {
	MaxResults int
}

type LogConfig struct {
	Level string
}

type APIConfig struct {
	Token string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Inference: InferenceConfig{
			BaseURL: "http://localhost:8000",
		},
		LLM: LLMConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in precedence order: defaults, the JSON
// file at $XDG_CONFIG_HOME/chicbot/config.json, a .env file in the
// working directory, then CHICBOT_* environment variables. The LLM
// API key is secret and only read from the environment.
func Load() (Config, error) {
	// Best-effort: a missing .env file is the normal case.
	_ = godotenv.Load()
	return loadWith(newFileBackend())
}

func loadWith(b Backend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}
