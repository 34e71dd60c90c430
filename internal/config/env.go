package config

import "strings"

const (
	EnvLlamaAPIKey  = "LLAMA_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvServiceURL   = "COURTSIDE_SERVICE_URL"
)

// ApplyEnv overlays credentials and the service URL from the environment.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		return cfg
	}
	if v := strings.TrimSpace(getenv(EnvLlamaAPIKey)); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvGeminiAPIKey)); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvServiceURL)); v != "" {
		cfg.Service.URL = v
	}
	return cfg
}
