package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rbright/courtside/internal/cli"
	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/output"
	"github.com/rbright/courtside/internal/policy"
	"github.com/rbright/courtside/internal/session"
	"github.com/rbright/courtside/internal/view"
)

const maxSessionLine = 1 << 20

const sessionHelp = `commands:
  image PATH | video PATH | clear
  transcript-file PATH | transcript TEXT (\n for newlines)
  quarter Q | category C
  show | submit | status | result | copy | wait | help | quit`

// lockedWriter serializes output from the command loop and async completions.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}

func (l *lockedWriter) insight(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	writeInsight(l.w, text)
}

// replSession is one interactive session bound to a controller.
type replSession struct {
	ctrl     *session.Controller
	copier   *output.Copier
	out      *lockedWriter
	colorize bool

	// pending tracks async reporters: load completions and submissions.
	pending sync.WaitGroup
}

// Session runs the line-oriented interactive session until quit or end of input.
func (r Runner) Session(ctx context.Context, global cli.Global) error {
	env, err := r.prepare(global, "session")
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()
	cfg := env.loaded.Config

	pol, err := policy.Lookup(cfg.Form.Policy)
	if err != nil {
		return err
	}

	s := &replSession{
		ctrl:     newController(cfg, pol, env.logger, statusObserver(cfg, env.logger)),
		copier:   output.NewCopier(cfg.Output.ClipboardCmd, env.logger),
		out:      &lockedWriter{w: r.Stdout},
		colorize: view.ShouldColorize(r.Stdout),
	}
	s.out.printf("courtside session (policy %s: %s). Type 'help' for commands.\n", pol.Name(), pol.Requirement())

	scanner := bufio.NewScanner(r.stdin())
	scanner.Buffer(make([]byte, 0, 64*1024), maxSessionLine)
	for {
		if s.colorize {
			s.out.printf("> ")
		}
		if !scanner.Scan() {
			break
		}
		if quit := s.handle(ctx, scanner.Text()); quit {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	s.wait()
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read session input: %w", err)
	}
	return nil
}

// handle executes one input line and reports whether the session should end.
func (s *replSession) handle(ctx context.Context, raw string) bool {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	// text keeps everything after the single separator so typed whitespace survives.
	_, text, _ := strings.Cut(strings.TrimLeft(raw, " \t"), " ")

	switch strings.ToLower(command) {
	case "quit", "exit":
		return true
	case "help":
		s.out.printf("%s\n", sessionHelp)
	case "image":
		if s.requireArg(command, arg) {
			s.track("image", s.ctrl.SelectImage(ctx, arg))
		}
	case "video":
		if s.requireArg(command, arg) {
			s.track("video", s.ctrl.SelectVideo(ctx, arg))
		}
	case "clear":
		s.ctrl.Dispatch(form.ClearMedia{})
		s.out.printf("media cleared\n")
	case "transcript-file":
		if s.requireArg(command, arg) {
			s.track("transcript", s.ctrl.LoadTranscript(ctx, arg))
		}
	case "transcript":
		s.ctrl.Dispatch(form.SetTranscript{Text: strings.ReplaceAll(text, `\n`, "\n")})
		s.out.printf("transcript set\n")
	case "quarter":
		quarter, err := form.ParseQuarter(arg)
		if err != nil {
			s.out.printf("error: %v\n", err)
			return false
		}
		s.ctrl.Dispatch(form.SetQuarter{Quarter: quarter})
		s.out.printf("quarter: %s\n", quarter)
	case "category":
		category, err := form.ParseCategory(arg)
		if err != nil {
			s.out.printf("error: %v\n", err)
			return false
		}
		s.ctrl.Dispatch(form.SetCategory{Category: category})
		s.out.printf("category: %s\n", category)
	case "show":
		s.out.printf("%s\n", view.Summary(s.ctrl.Form()))
	case "submit":
		s.submit(ctx)
	case "status":
		s.out.printf("%s\n", view.StatusLine(s.ctrl.Status(), s.colorize))
	case "result":
		insight, _ := s.ctrl.Result()
		text, ok := view.Result(s.ctrl.Status().State, insight)
		if !ok {
			s.out.printf("no result\n")
			return false
		}
		s.out.insight(text)
	case "copy":
		insight, _ := s.ctrl.Result()
		text, ok := view.Result(s.ctrl.Status().State, insight)
		if !ok {
			s.out.printf("no result\n")
			return false
		}
		if err := s.copier.Copy(ctx, text); err != nil {
			s.out.printf("error: %v\n", err)
			return false
		}
		s.out.printf("result copied\n")
	case "wait":
		s.wait()
	default:
		s.out.printf("unknown command %q (type 'help')\n", command)
	}
	return false
}

func (s *replSession) requireArg(command, arg string) bool {
	if arg == "" {
		s.out.printf("error: %s requires a path\n", command)
		return false
	}
	return true
}

// track reports an async load when it settles.
func (s *replSession) track(field string, pending <-chan session.LoadResult) {
	s.out.printf("loading %s...\n", field)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		res := <-pending
		switch {
		case res.Err != nil:
			s.out.printf("error: %v\n", res.Err)
		case res.Applied:
			s.out.printf("%s loaded\n", field)
		default:
			s.out.printf("%s load superseded\n", field)
		}
	}()
}

// submit validates synchronously and runs the outbound call in the background.
func (s *replSession) submit(ctx context.Context) {
	if err := s.ctrl.Check(); err != nil {
		s.out.printf("error: %v\n", err)
		return
	}

	s.out.printf("submitted\n")
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		outcome := s.ctrl.Submit(ctx)
		switch session.Kind(outcome.Err) {
		case session.KindNone:
			s.out.printf("%s\n", view.StatusLine(outcome.Status, s.colorize))
			if text, ok := view.Result(outcome.Status.State, outcome.Result); ok {
				s.out.insight(text)
			}
		case session.KindService:
			s.out.printf("%s\n", view.StatusLine(outcome.Status, s.colorize))
		default:
			s.out.printf("error: %v\n", outcome.Err)
		}
	}()
}

func (s *replSession) wait() {
	s.ctrl.Wait()
	s.pending.Wait()
}
