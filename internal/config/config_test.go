package config

import (
	"testing"
)

// memBackend is an in-memory Backend for tests.
type memBackend struct {
	data map[string]any
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]any)}
}

func (b *memBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (b *memBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	return v.(int), true, nil
}

func (b *memBackend) SetString(key, val string) error { b.data[key] = val; return nil }
func (b *memBackend) SetInt(key string, val int) error { b.data[key] = val; return nil }
func (b *memBackend) Delete(key string) error          { delete(b.data, key); return nil }

func TestDefaults(t *testing.T) {
	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Inference.BaseURL != "http://localhost:8000" {
		t.Errorf("inference base url = %q", cfg.Inference.BaseURL)
	}
	if cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("llm model = %q", cfg.LLM.Model)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("max results = %d, want 5", cfg.Search.MaxResults)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestBackendValues(t *testing.T) {
	b := newMemBackend()
	b.SetInt("server.port", 9090)
	b.SetString("inference.base_url", "http://models:8001")
	b.SetString("log.level", "debug")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Inference.BaseURL != "http://models:8001" {
		t.Errorf("inference base url = %q", cfg.Inference.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	b := newMemBackend()
	b.SetInt("server.port", 9090)

	t.Setenv("CHICBOT_SERVER_PORT", "7070")
	t.Setenv("CHICBOT_LLM_MODEL", "llama-3.1-8b-instant")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("llm model = %q, want env override", cfg.LLM.Model)
	}
}

func TestSecretsOnlyFromEnv(t *testing.T) {
	t.Setenv("CHICBOT_LLM_API_KEY", "gsk_test")
	t.Setenv("CHICBOT_API_TOKEN", "tok")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.LLM.APIKey != "gsk_test" {
		t.Errorf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.API.Token != "tok" {
		t.Errorf("api token = %q", cfg.API.Token)
	}
}

func TestInvalidIntEnvIgnored(t *testing.T) {
	t.Setenv("CHICBOT_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(newMemBackend())
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want default on bad env value", cfg.Server.Port)
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	for _, ki := range ShowAll(cfg) {
		if ki.Key == "llm.api_key" || ki.Key == "api.token" {
			t.Errorf("secret key %s exposed in ShowAll", ki.Key)
		}
	}
}

func TestValidKeysExcludeSecrets(t *testing.T) {
	for _, k := range ValidKeys() {
		if k == "llm.api_key" || k == "api.token" {
			t.Errorf("secret key %s listed as settable", k)
		}
	}
}
