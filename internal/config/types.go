// Package config resolves, parses, validates, and defaults courtside configuration.
package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the fully materialized runtime configuration used by courtside.
type Config struct {
	Service ServiceConfig `toml:"service"`
	Form    FormConfig    `toml:"form"`
	Server  ServerConfig  `toml:"server"`
	LLM     LLMConfig     `toml:"llm"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Output  OutputConfig  `toml:"output"`
	Notify  NotifyConfig  `toml:"notify"`
	Logging LoggingConfig `toml:"logging"`
}

// ServiceConfig points the client at the analysis service.
type ServiceConfig struct {
	URL string `toml:"url"`
	// TimeoutSeconds of 0 waits until the transport settles.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// FormConfig controls input defaults and the submit policy.
type FormConfig struct {
	Policy           string `toml:"policy"`
	Quarter          string `toml:"quarter"`
	Category         string `toml:"category"`
	MaxMediaMiB      int    `toml:"max_media_mib"`
	MaxTranscriptMiB int    `toml:"max_transcript_mib"`
}

// ServerConfig controls `courtside serve`.
type ServerConfig struct {
	Bind       string `toml:"bind"`
	Engine     string `toml:"engine"`
	MaxBodyMiB int    `toml:"max_body_mib"`
}

// LLMConfig configures the OpenAI-compatible engine.
type LLMConfig struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// GeminiConfig configures the Gemini engine.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// OutputConfig controls result side effects.
type OutputConfig struct {
	// ClipboardCmd receives the insight on stdin.
	ClipboardCmd []string `toml:"clipboard_cmd"`
	// CopyResult copies every successful insight, as if --copy were passed.
	CopyResult bool `toml:"copy_result"`
}

// NotifyConfig controls desktop notifications for submission status.
type NotifyConfig struct {
	Enable         bool   `toml:"enable"`
	AppName        string `toml:"app_name"`
	TimeoutMS      int    `toml:"timeout_ms"`
	ErrorTimeoutMS int    `toml:"error_timeout_ms"`
}

// LoggingConfig controls the JSONL runtime log.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}

const (
	EngineOpenAI = "openai"
	EngineGemini = "gemini"
)

const mib = 1 << 20

// ServiceTimeout returns the client timeout; zero means none.
func (c Config) ServiceTimeout() time.Duration {
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// MaxMediaBytes returns the per-file media limit.
func (c Config) MaxMediaBytes() int64 { return int64(c.Form.MaxMediaMiB) * mib }

// MaxTranscriptBytes returns the transcript file limit.
func (c Config) MaxTranscriptBytes() int64 { return int64(c.Form.MaxTranscriptMiB) * mib }

// MaxBodyBytes returns the server request body limit.
func (c Config) MaxBodyBytes() int64 { return int64(c.Server.MaxBodyMiB) * mib }

// LogLevel maps logging.level to a slog level; unknown values map to info.
func (c Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Logging.Level)
	return level
}

func parseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
