// Package session coordinates analysis input edits, async file loads, and the submit flow.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/courtside/internal/analysis"
	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/fsm"
	"github.com/rbright/courtside/internal/media"
	"github.com/rbright/courtside/internal/policy"
)

// Status is the submission lifecycle snapshot shown to users.
type Status struct {
	State fsm.State
	// Message is the failure text while State is failed.
	Message string
}

func (s Status) String() string {
	if s.State == fsm.StateFailed && s.Message != "" {
		return string(s.State) + ": " + s.Message
	}
	return string(s.State)
}

// Outcome is the complete output of one Submit invocation.
type Outcome struct {
	RequestID  string
	Status     Status
	Result     string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// LoadResult reports how one async file load settled.
type LoadResult struct {
	// Applied is false when a newer load or edit superseded this one.
	Applied bool
	Err     error
}

// Controller owns one analysis session: the form, the submission status, and the last result.
type Controller struct {
	logger   *slog.Logger
	analyzer Analyzer
	encoder  Encoder
	loader   TextLoader
	policy   policy.Policy
	observer Observer
	newID    func() string

	mu      sync.RWMutex
	form    form.State
	state   fsm.State
	failure string
	result  *string

	loads sync.WaitGroup
}

// NewController constructs a session controller with safe default fallbacks.
//
// A nil policy is kept as-is and makes every Submit fail with ErrPolicyUnset.
func NewController(
	logger *slog.Logger,
	analyzer Analyzer,
	encoder Encoder,
	loader TextLoader,
	pol policy.Policy,
	observer Observer,
) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if analyzer == nil {
		analyzer = unavailableAnalyzer{}
	}
	if encoder == nil {
		encoder = media.NewEncoder(0)
	}
	if loader == nil {
		loader = media.NewTranscriptLoader(0)
	}
	if observer == nil {
		observer = noopObserver{}
	}

	return &Controller{
		logger:   logger,
		analyzer: analyzer,
		encoder:  encoder,
		loader:   loader,
		policy:   pol,
		observer: observer,
		newID:    uuid.NewString,
		form:     form.New(),
		state:    fsm.StateIdle,
	}
}

// Dispatch applies one form action and returns the resulting state.
func (c *Controller) Dispatch(action form.Action) form.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form.Reduce(c.form, action)
	return c.form
}

// Form returns the current input state snapshot.
func (c *Controller) Form() form.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.form
}

// Status returns the current submission status snapshot.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	status := Status{State: c.state}
	if c.state == fsm.StateFailed {
		status.Message = c.failure
	}
	return status
}

// Result returns the insight from the last successful submission.
func (c *Controller) Result() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return "", false
	}
	return *c.result, true
}

// Policy returns the active validation policy, or nil when none is wired.
func (c *Controller) Policy() policy.Policy { return c.policy }

// SelectImage starts encoding path as the court image.
func (c *Controller) SelectImage(ctx context.Context, path string) <-chan LoadResult {
	return c.loadMedia(ctx, path, form.MediaImage)
}

// SelectVideo starts encoding path as the game video.
func (c *Controller) SelectVideo(ctx context.Context, path string) <-chan LoadResult {
	return c.loadMedia(ctx, path, form.MediaVideo)
}

// LoadTranscript starts reading path into the transcript field.
func (c *Controller) LoadTranscript(ctx context.Context, path string) <-chan LoadResult {
	gen := c.Dispatch(form.BeginTranscriptLoad{}).TranscriptGen
	pending := media.Go(ctx, func(ctx context.Context) (string, error) {
		return c.loader.LoadText(ctx, path)
	})
	return c.settle(pending, "transcript", path, func(value string) bool {
		applied := false
		c.mu.Lock()
		if c.form.CurrentTranscript(gen) {
			c.form = form.Reduce(c.form, form.TranscriptLoaded{Gen: gen, Text: value})
			applied = true
		}
		c.mu.Unlock()
		return applied
	})
}

func (c *Controller) loadMedia(ctx context.Context, path string, kind form.MediaKind) <-chan LoadResult {
	gen := c.Dispatch(form.BeginMediaLoad{}).MediaGen
	pending := media.Go(ctx, func(ctx context.Context) (string, error) {
		return c.encoder.Encode(ctx, path, kind.Accept())
	})
	return c.settle(pending, kind.String(), path, func(value string) bool {
		applied := false
		c.mu.Lock()
		if c.form.CurrentMedia(gen) {
			c.form = form.Reduce(c.form, form.MediaLoaded{Kind: kind, Gen: gen, Encoded: value})
			applied = true
		}
		c.mu.Unlock()
		return applied
	})
}

// settle waits for one pending read and applies it through apply when it succeeded.
func (c *Controller) settle(
	pending <-chan media.Result,
	field string,
	path string,
	apply func(string) bool,
) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	c.loads.Add(1)
	go func() {
		defer c.loads.Done()
		defer close(out)

		res := <-pending
		if res.Err != nil {
			c.logger.Warn("file load failed",
				"component", "session",
				"field", field,
				"path", path,
				"error", res.Err.Error(),
			)
			out <- LoadResult{Err: res.Err}
			return
		}

		applied := apply(res.Value)
		c.logger.Debug("file load settled",
			"component", "session",
			"field", field,
			"path", path,
			"applied", applied,
			"bytes", len(res.Value),
		)
		out <- LoadResult{Applied: applied}
	}()
	return out
}

// Wait blocks until every started file load has settled.
func (c *Controller) Wait() {
	c.loads.Wait()
}

// Submit validates the current form and, when the policy allows it, performs exactly one
// analysis call. Rejected submissions leave the status untouched.
func (c *Controller) Submit(ctx context.Context) Outcome {
	outcome := Outcome{StartedAt: time.Now()}

	c.mu.Lock()
	if err := c.checkLocked(); err != nil {
		outcome.Status = c.statusLocked()
		c.mu.Unlock()
		outcome.Err = err
		outcome.FinishedAt = time.Now()
		return outcome
	}

	next, err := fsm.Transition(c.state, fsm.EventSubmit)
	if err != nil {
		outcome.Status = c.statusLocked()
		c.mu.Unlock()
		outcome.Err = err
		outcome.FinishedAt = time.Now()
		return outcome
	}
	c.state = next
	c.failure = ""
	c.result = nil
	snapshot := c.form
	inFlight := c.statusLocked()
	c.mu.Unlock()

	c.observer.StatusChanged(ctx, inFlight)

	outcome.RequestID = c.newID()
	req := analysis.NewRequest(snapshot)
	result, callErr := c.analyzer.Analyze(ctx, req, outcome.RequestID)

	c.mu.Lock()
	if callErr != nil {
		c.state, _ = fsm.Transition(c.state, fsm.EventFail)
		c.failure = analysis.Message(callErr)
	} else {
		c.state, _ = fsm.Transition(c.state, fsm.EventSucceed)
		c.result = &result
	}
	outcome.Status = c.statusLocked()
	c.mu.Unlock()

	outcome.Result = result
	outcome.Err = callErr
	outcome.FinishedAt = time.Now()
	c.observer.StatusChanged(ctx, outcome.Status)
	c.logSubmission(snapshot, outcome)
	return outcome
}

// Check reports the error Submit would return right now without making a call.
func (c *Controller) Check() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checkLocked()
}

func (c *Controller) checkLocked() error {
	if c.state == fsm.StateInFlight {
		return ErrSubmissionInFlight
	}
	if c.policy == nil {
		return ErrPolicyUnset
	}
	if !c.policy.Satisfied(c.form) {
		return &UserInputError{Policy: c.policy.Name(), Requirement: c.policy.Requirement()}
	}
	return nil
}

func (c *Controller) logSubmission(snapshot form.State, outcome Outcome) {
	attrs := []any{
		"component", "session",
		"request_id", outcome.RequestID,
		"status", string(outcome.Status.State),
		"policy", c.policy.Name(),
		"media", snapshot.Media.Kind.String(),
		"quarter", snapshot.Quarter.String(),
		"category", snapshot.Category.String(),
		"transcript_length", len(strings.TrimSpace(snapshot.Transcript)),
		"duration_ms", outcome.FinishedAt.Sub(outcome.StartedAt).Milliseconds(),
	}
	if outcome.Err != nil {
		attrs = append(attrs, "error", outcome.Status.Message)
		c.logger.Error("analysis submission failed", attrs...)
		return
	}
	attrs = append(attrs, "result_length", len(outcome.Result))
	c.logger.Info("analysis submission complete", attrs...)
}
