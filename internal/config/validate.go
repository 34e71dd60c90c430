package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/policy"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validateServiceURL(cfg.Service.URL); err != nil {
		return nil, err
	}
	if cfg.Service.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("service.timeout_seconds must be >= 0")
	}

	if _, err := policy.Lookup(cfg.Form.Policy); err != nil {
		return nil, fmt.Errorf("form.policy: %w", err)
	}
	if _, err := form.ParseQuarter(cfg.Form.Quarter); err != nil {
		return nil, fmt.Errorf("form.quarter: %w", err)
	}
	if _, err := form.ParseCategory(cfg.Form.Category); err != nil {
		return nil, fmt.Errorf("form.category: %w", err)
	}
	if cfg.Form.MaxMediaMiB <= 0 {
		return nil, fmt.Errorf("form.max_media_mib must be > 0")
	}
	if cfg.Form.MaxTranscriptMiB <= 0 {
		return nil, fmt.Errorf("form.max_transcript_mib must be > 0")
	}

	if strings.TrimSpace(cfg.Server.Bind) == "" {
		return nil, fmt.Errorf("server.bind must not be empty")
	}
	engine := strings.ToLower(strings.TrimSpace(cfg.Server.Engine))
	if engine != EngineOpenAI && engine != EngineGemini {
		return nil, fmt.Errorf("server.engine must be one of: %s, %s", EngineOpenAI, EngineGemini)
	}
	if cfg.Server.MaxBodyMiB <= 0 {
		return nil, fmt.Errorf("server.max_body_mib must be > 0")
	}
	// base64 inflates payloads by 4/3.
	if cfg.Server.MaxBodyMiB*3 < cfg.Form.MaxMediaMiB*4 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"server.max_body_mib=%d may reject encoded media up to form.max_media_mib=%d",
			cfg.Server.MaxBodyMiB, cfg.Form.MaxMediaMiB,
		)})
	}

	if cfg.LLM.MaxTokens <= 0 {
		return nil, fmt.Errorf("llm.max_tokens must be > 0")
	}
	if cfg.LLM.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("llm.timeout_seconds must be >= 0")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return nil, fmt.Errorf("llm.temperature must be between 0 and 2")
	}

	switch engine {
	case EngineOpenAI:
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("llm.api_key is empty; set %s before running serve", EnvLlamaAPIKey)})
		}
	case EngineGemini:
		if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("gemini.api_key is empty; set %s before running serve", EnvGeminiAPIKey)})
		}
	}

	for i, arg := range cfg.Output.ClipboardCmd {
		if strings.TrimSpace(arg) == "" {
			return nil, fmt.Errorf("output.clipboard_cmd[%d] must not be empty", i)
		}
	}
	if cfg.Output.CopyResult && len(cfg.Output.ClipboardCmd) == 0 {
		return nil, fmt.Errorf("output.clipboard_cmd must be set when output.copy_result is true")
	}

	if cfg.Notify.TimeoutMS < 0 || cfg.Notify.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("notify timeouts must be >= 0")
	}

	if _, ok := parseLevel(cfg.Logging.Level); !ok {
		return nil, fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}

func validateServiceURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("service.url must not be empty")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("service.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("service.url must use http or https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("service.url must include a host")
	}
	return nil
}
