// Package app wires configuration, logging, and the session controller behind the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rbright/courtside/internal/analysis"
	"github.com/rbright/courtside/internal/cli"
	"github.com/rbright/courtside/internal/config"
	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/indicator"
	"github.com/rbright/courtside/internal/logging"
	"github.com/rbright/courtside/internal/media"
	"github.com/rbright/courtside/internal/policy"
	"github.com/rbright/courtside/internal/session"
)

// Runner executes courtside commands against explicit IO streams.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Logger replaces the JSONL file logger when set.
	Logger *slog.Logger
}

// Execute runs args and returns the process exit code: 0 ok, 1 runtime failure, 2 usage.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute runs args and returns the process exit code.
func (r Runner) Execute(ctx context.Context, args []string) int {
	root := cli.NewRoot(r)
	root.SetArgs(args)
	root.SetIn(r.stdin())
	root.SetOut(r.Stdout)
	root.SetErr(r.Stderr)
	root.SetContext(ctx)

	cmd, err := root.ExecuteC()
	switch {
	case err == nil:
		return 0
	case cli.IsUsage(err):
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cmd.UsageString())
		return 2
	case errors.Is(err, cli.ErrFailed):
		return 1
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(r.Stderr, "cancelled")
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
}

func (r Runner) stdin() io.Reader {
	if r.Stdin == nil {
		return strings.NewReader("")
	}
	return r.Stdin
}

// runtimeEnv is the loaded config plus the logger for one command.
type runtimeEnv struct {
	loaded  config.Loaded
	logger  *slog.Logger
	logging logging.Runtime
}

func (e runtimeEnv) Close() error { return e.logging.Close() }

// prepare loads config, opens the log, and reports config warnings.
func (r Runner) prepare(global cli.Global, command string) (runtimeEnv, error) {
	loaded, err := config.Load(global.ConfigPath)
	if err != nil {
		return runtimeEnv{}, err
	}

	logRuntime := logging.Runtime{Logger: r.Logger}
	if r.Logger == nil {
		logRuntime, err = logging.New(loaded.Config.LogLevel())
		if err != nil {
			return runtimeEnv{}, fmt.Errorf("setup logging: %w", err)
		}
	}
	logger := logRuntime.Logger

	for _, w := range loaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "component", "app", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"component", "app",
		"command", command,
		"config", loaded.Path,
		"log", logRuntime.Path,
	)
	return runtimeEnv{loaded: loaded, logger: logger, logging: logRuntime}, nil
}

// newController builds a session controller from config, with form defaults applied.
func newController(cfg config.Config, pol policy.Policy, logger *slog.Logger, observer session.Observer) *session.Controller {
	client := analysis.NewClient(cfg.Service.URL, analysis.WithTimeout(cfg.ServiceTimeout()))
	ctrl := session.NewController(
		logger,
		client,
		media.NewEncoder(cfg.MaxMediaBytes()),
		media.NewTranscriptLoader(cfg.MaxTranscriptBytes()),
		pol,
		observer,
	)

	// Validate has already accepted both labels.
	if quarter, err := form.ParseQuarter(cfg.Form.Quarter); err == nil {
		ctrl.Dispatch(form.SetQuarter{Quarter: quarter})
	}
	if category, err := form.ParseCategory(cfg.Form.Category); err == nil {
		ctrl.Dispatch(form.SetCategory{Category: category})
	}
	return ctrl
}

// statusObserver logs every status change and mirrors it to desktop notifications when enabled.
func statusObserver(cfg config.Config, logger *slog.Logger) session.Observer {
	notifier := indicator.NewNotifier(cfg.Notify, logger)
	return session.ObserverFunc(func(ctx context.Context, status session.Status) {
		logger.Debug("submission status changed", "component", "app", "status", status.String())
		notifier.StatusChanged(ctx, status)
	})
}

// writeInsight prints the insight verbatim and terminates the line when the insight does not.
// An empty insight prints nothing.
func writeInsight(w io.Writer, insight string) {
	if insight == "" {
		return
	}
	fmt.Fprint(w, insight)
	if !strings.HasSuffix(insight, "\n") {
		fmt.Fprintln(w)
	}
}
