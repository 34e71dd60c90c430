package config

import "github.com/rbright/courtside/internal/policy"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			URL:            "http://127.0.0.1:5000",
			TimeoutSeconds: 0,
		},
		Form: FormConfig{
			Policy:           policy.NameMediaOptional,
			Quarter:          "Full Game",
			Category:         "High School",
			MaxMediaMiB:      64,
			MaxTranscriptMiB: 4,
		},
		Server: ServerConfig{
			Bind:       "127.0.0.1:5000",
			Engine:     EngineOpenAI,
			MaxBodyMiB: 96,
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.llama.com/compat/v1/chat/completions",
			Model:          "Llama-4-Scout-17B-16E-Instruct-FP8",
			MaxTokens:      512,
			Temperature:    0,
			TimeoutSeconds: 120,
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Output: OutputConfig{
			ClipboardCmd: []string{"wl-copy"},
		},
		Notify: NotifyConfig{
			Enable:         false,
			AppName:        "courtside",
			TimeoutMS:      4000,
			ErrorTimeoutMS: 8000,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
