package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rbright/courtside/internal/cli"
	"github.com/rbright/courtside/internal/config"
	"github.com/rbright/courtside/internal/doctor"
)

// Doctor prints readiness checks and fails when any check fails.
func (r Runner) Doctor(ctx context.Context, global cli.Global) error {
	env, err := r.prepare(global, "doctor")
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	report := doctor.Run(ctx, env.loaded)
	fmt.Fprintln(r.Stdout, report.String())
	if !report.OK() {
		return cli.ErrFailed
	}
	return nil
}

// ConfigInit writes the sample configuration.
func (r Runner) ConfigInit(_ context.Context, global cli.Global, opts cli.ConfigInitOptions) error {
	target := strings.TrimSpace(opts.Path)
	if target == "" {
		resolved, err := config.ResolvePath(global.ConfigPath)
		if err != nil {
			return err
		}
		target = resolved
	}

	if !opts.Overwrite {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("check config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(config.SampleConfig()), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(r.Stdout, "Wrote sample configuration to %s\n", target)
	fmt.Fprintf(r.Stdout, "Export %s (or %s) before running serve.\n", config.EnvLlamaAPIKey, config.EnvGeminiAPIKey)
	return nil
}

// ConfigValidate loads and validates the configuration without side effects.
func (r Runner) ConfigValidate(_ context.Context, global cli.Global) error {
	loaded, err := config.Load(global.ConfigPath)
	if err != nil {
		return err
	}
	for _, w := range loaded.Warnings {
		if w.Line > 0 {
			fmt.Fprintf(r.Stderr, "warning: line %d: %s\n", w.Line, w.Message)
			continue
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
	}
	fmt.Fprintf(r.Stdout, "Configuration valid: %s\n", loaded.Path)
	return nil
}
