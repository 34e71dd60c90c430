package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/courtside/internal/cli"
	"github.com/rbright/courtside/internal/config"
	"github.com/rbright/courtside/internal/engine"
	"github.com/rbright/courtside/internal/server"
)

// Serve runs the analysis service until ctx is cancelled.
func (r Runner) Serve(ctx context.Context, global cli.Global, opts cli.ServeOptions) error {
	env, err := r.prepare(global, "serve")
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	cfg := env.loaded.Config

	if strings.TrimSpace(opts.Bind) != "" {
		cfg.Server.Bind = opts.Bind
	}
	if strings.TrimSpace(opts.Engine) != "" {
		cfg.Server.Engine = opts.Engine
	}

	eng, err := buildEngine(cfg, env.logger)
	if err != nil {
		return &cli.UsageError{Err: err}
	}

	fmt.Fprintf(r.Stderr, "serving %s on %s (engine %s)\n", "/analyze", cfg.Server.Bind, eng.Name())
	handler := server.New(eng, env.logger, cfg.MaxBodyBytes()).Router()
	return server.Run(ctx, cfg.Server.Bind, handler, env.logger)
}

func buildEngine(cfg config.Config, logger *slog.Logger) (engine.Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Server.Engine)) {
	case config.EngineOpenAI:
		return engine.NewOpenAI(engine.OpenAIConfig{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			MaxTokens:      cfg.LLM.MaxTokens,
			Temperature:    cfg.LLM.Temperature,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}, logger), nil
	case config.EngineGemini:
		return engine.NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", cfg.Server.Engine, config.EngineOpenAI, config.EngineGemini)
	}
}
