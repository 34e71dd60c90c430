package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.llama.com/compat/v1/chat/completions"
	defaultOpenAIModel   = "Llama-4-Scout-17B-16E-Instruct-FP8"
	defaultMaxTokens     = 512
	defaultOpenAITimeout = 120 * time.Second
)

// OpenAIConfig captures the settings for an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

// OpenAI talks to any OpenAI-compatible chat completions API (Llama compat, OpenRouter, ...).
type OpenAI struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// OpenAIOption customizes the engine.
type OpenAIOption func(*OpenAI)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// NewOpenAI constructs the engine, filling unset fields with defaults.
func NewOpenAI(cfg OpenAIConfig, logger *slog.Logger, opts ...OpenAIOption) *OpenAI {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	timeout := defaultOpenAITimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &OpenAI{cfg: cfg, httpClient: &http.Client{Timeout: timeout}, logger: logger}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

func (o *OpenAI) Name() string { return "openai" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze sends the system prompt, the court image (when present) and the transcript.
func (o *OpenAI) Analyze(ctx context.Context, in Input) (string, error) {
	if o.cfg.APIKey == "" {
		return "", errors.New("openai engine: api key required")
	}
	if in.Video.Present() {
		o.logger.Warn("openai engine ignores video input", "component", "engine", "video_bytes", len(in.Video.Data))
	}

	user := []contentPart{{Type: "text", Text: TranscriptPrompt(in.Transcript, in.Image.Present())}}
	if in.Image.Present() {
		user = append(user, contentPart{Type: "image_url", ImageURL: &imageURL{URL: in.Image.DataURI}})
	}

	payload := chatRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(in.Quarter, in.Category)},
			{Role: "user", Content: user},
		},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("openai engine: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("openai engine: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai engine: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai engine: read body: %w", err)
	}

	var completion chatResponse
	decodeErr := json.Unmarshal(body, &completion)
	if resp.StatusCode >= http.StatusMultipleChoices {
		if decodeErr == nil && completion.Error != nil && completion.Error.Message != "" {
			return "", fmt.Errorf("openai engine: http %d: %s", resp.StatusCode, completion.Error.Message)
		}
		return "", fmt.Errorf("openai engine: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("openai engine: decode response: %w", decodeErr)
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", errors.New("openai engine: empty completion")
}
