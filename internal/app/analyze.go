package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rbright/courtside/internal/cli"
	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/output"
	"github.com/rbright/courtside/internal/policy"
	"github.com/rbright/courtside/internal/session"
	"github.com/rbright/courtside/internal/view"
)

// Analyze runs one submission built from flags and config defaults.
func (r Runner) Analyze(ctx context.Context, global cli.Global, opts cli.AnalyzeOptions) error {
	env, err := r.prepare(global, "analyze")
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	cfg := env.loaded.Config

	policyName := cfg.Form.Policy
	if strings.TrimSpace(opts.Policy) != "" {
		policyName = opts.Policy
	}
	pol, err := policy.Lookup(policyName)
	if err != nil {
		return &cli.UsageError{Err: err}
	}

	ctrl := newController(cfg, pol, env.logger, statusObserver(cfg, env.logger))
	if strings.TrimSpace(opts.Quarter) != "" {
		quarter, err := form.ParseQuarter(opts.Quarter)
		if err != nil {
			return &cli.UsageError{Err: err}
		}
		ctrl.Dispatch(form.SetQuarter{Quarter: quarter})
	}
	if strings.TrimSpace(opts.Category) != "" {
		category, err := form.ParseCategory(opts.Category)
		if err != nil {
			return &cli.UsageError{Err: err}
		}
		ctrl.Dispatch(form.SetCategory{Category: category})
	}

	var pending []<-chan session.LoadResult
	switch {
	case opts.ImagePath != "":
		pending = append(pending, ctrl.SelectImage(ctx, opts.ImagePath))
	case opts.VideoPath != "":
		pending = append(pending, ctrl.SelectVideo(ctx, opts.VideoPath))
	}
	if opts.TranscriptFile != "" {
		pending = append(pending, ctrl.LoadTranscript(ctx, opts.TranscriptFile))
	} else if opts.Transcript != "" {
		ctrl.Dispatch(form.SetTranscript{Text: opts.Transcript})
	}
	for _, ch := range pending {
		if res := <-ch; res.Err != nil {
			return res.Err
		}
	}

	fmt.Fprintln(r.Stderr, view.Summary(ctrl.Form()))

	outcome := ctrl.Submit(ctx)
	colorize := view.ShouldColorize(r.Stderr)
	if outcome.Err != nil {
		switch session.Kind(outcome.Err) {
		case session.KindUserInput:
			return &cli.UsageError{Err: outcome.Err}
		case session.KindService:
			fmt.Fprintln(r.Stderr, view.StatusLine(outcome.Status, colorize))
			return cli.ErrFailed
		default:
			return outcome.Err
		}
	}

	fmt.Fprintln(r.Stderr, view.StatusLine(outcome.Status, colorize))
	if insight, ok := view.Result(outcome.Status.State, outcome.Result); ok {
		writeInsight(r.Stdout, insight)
		if opts.Copy || cfg.Output.CopyResult {
			copier := output.NewCopier(cfg.Output.ClipboardCmd, env.logger)
			if err := copier.Copy(ctx, insight); err != nil {
				fmt.Fprintf(r.Stderr, "warning: %v\n", err)
			}
		}
	}
	return nil
}
