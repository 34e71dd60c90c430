package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/courtside/internal/analysis"
	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/fsm"
	"github.com/rbright/courtside/internal/media"
	"github.com/rbright/courtside/internal/policy"
)

type fakeAnalyzer struct {
	calls    atomic.Int32
	mu       sync.Mutex
	requests []analysis.Request
	ids      []string
	result   string
	err      error
	block    chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req analysis.Request, requestID string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.ids = append(f.ids, requestID)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.result, f.err
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []Status
}

func (o *recordingObserver) StatusChanged(_ context.Context, status Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) states() []fsm.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]fsm.State, 0, len(o.statuses))
	for _, s := range o.statuses {
		out = append(out, s.State)
	}
	return out
}

// gatedEncoder holds each Encode call until its path is released.
type gatedEncoder struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedEncoder(paths ...string) *gatedEncoder {
	g := &gatedEncoder{gates: map[string]chan struct{}{}}
	for _, p := range paths {
		g.gates[p] = make(chan struct{})
	}
	return g
}

func (g *gatedEncoder) release(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.gates[path])
}

func (g *gatedEncoder) Encode(ctx context.Context, path string, accept string) (string, error) {
	g.mu.Lock()
	gate := g.gates[path]
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return "data:" + accept + "x;base64," + path, nil
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func settled(t *testing.T, ch <-chan LoadResult) LoadResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("load did not settle")
		return LoadResult{}
	}
}

func TestSubmitRejectedByPolicyMakesNoCall(t *testing.T) {
	for _, pol := range []policy.Policy{policy.Strict, policy.MediaOptional, policy.ImageRequired} {
		t.Run(pol.Name(), func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: "unused"}
			observer := &recordingObserver{}
			ctrl := NewController(nil, analyzer, nil, nil, pol, observer)
			ctrl.Dispatch(form.SetTranscript{Text: "   \n\t"})

			outcome := ctrl.Submit(context.Background())

			require.ErrorIs(t, outcome.Err, ErrUserInput)
			var inputErr *UserInputError
			require.ErrorAs(t, outcome.Err, &inputErr)
			require.Equal(t, pol.Name(), inputErr.Policy)
			require.Contains(t, inputErr.Error(), pol.Requirement())
			require.Equal(t, int32(0), analyzer.calls.Load())
			require.Equal(t, fsm.StateIdle, ctrl.Status().State)
			require.Empty(t, observer.states())
			require.Empty(t, outcome.RequestID)
		})
	}
}

func TestSubmitCollegeQ2Scenario(t *testing.T) {
	var body map[string]any
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, analysis.Path, r.URL.Path)
		require.NotEmpty(t, r.Header.Get(analysis.RequestIDHeader))
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		_, _ = w.Write([]byte(`{"result":"Best shift: 3PT at 5:00 Q2"}`))
	}))
	defer server.Close()

	observer := &recordingObserver{}
	ctrl := NewController(nil, analysis.NewClient(server.URL), nil, nil, policy.MediaOptional, observer)
	ctrl.Dispatch(form.SetCategory{Category: form.CategoryCollege})
	ctrl.Dispatch(form.SetQuarter{Quarter: form.QuarterQ2})
	ctrl.Dispatch(form.SetTranscript{Text: "Q2 5:00 Player A makes 3PT"})

	outcome := ctrl.Submit(context.Background())

	require.NoError(t, outcome.Err)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, map[string]any{
		"court_b64":  "",
		"video_b64":  "",
		"transcript": "Q2 5:00 Player A makes 3PT",
		"quarter":    "Q2",
		"category":   "College",
	}, body)
	require.Equal(t, fsm.StateSucceeded, outcome.Status.State)
	require.Equal(t, "Best shift: 3PT at 5:00 Q2", outcome.Result)

	result, ok := ctrl.Result()
	require.True(t, ok)
	require.Equal(t, "Best shift: 3PT at 5:00 Q2", result)
	require.Equal(t, []fsm.State{fsm.StateInFlight, fsm.StateSucceeded}, observer.states())
}

func TestSubmitTransportFailureBecomesFailedStatus(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctrl := NewController(nil, analysis.NewClient("http://"+addr), nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q1 10:00 tip"})

	outcome := ctrl.Submit(context.Background())

	require.ErrorIs(t, outcome.Err, analysis.ErrService)
	require.Equal(t, KindService, Kind(outcome.Err))
	status := ctrl.Status()
	require.Equal(t, fsm.StateFailed, status.State)
	require.NotEmpty(t, status.Message)
	_, ok := ctrl.Result()
	require.False(t, ok)
}

func TestSubmitServiceErrorMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &analysis.ServiceError{StatusCode: 400, Message: "Missing transcript."}}
	ctrl := NewController(nil, analyzer, nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q1 x"})

	outcome := ctrl.Submit(context.Background())
	require.Equal(t, Status{State: fsm.StateFailed, Message: "Missing transcript."}, outcome.Status)
	require.Equal(t, "failed: Missing transcript.", outcome.Status.String())
}

func TestResubmitAfterFailureClearsMessageAndResult(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("boom")}
	ctrl := NewController(nil, analyzer, nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q3 1:00 three"})

	first := ctrl.Submit(context.Background())
	require.Equal(t, fsm.StateFailed, first.Status.State)
	require.Equal(t, "boom", first.Status.Message)

	analyzer.err = nil
	analyzer.result = "Wing three\nQ3 1:00"
	second := ctrl.Submit(context.Background())
	require.NoError(t, second.Err)
	require.Equal(t, Status{State: fsm.StateSucceeded}, second.Status)

	result, ok := ctrl.Result()
	require.True(t, ok)
	require.Equal(t, "Wing three\nQ3 1:00", result)
	require.Equal(t, int32(2), analyzer.calls.Load())
	require.NotEqual(t, analyzer.ids[0], analyzer.ids[1])
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	analyzer := &fakeAnalyzer{result: "ok", block: make(chan struct{})}
	ctrl := NewController(nil, analyzer, nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q1 x"})

	done := make(chan Outcome, 1)
	go func() { done <- ctrl.Submit(context.Background()) }()

	require.Eventually(t, func() bool {
		return ctrl.Status().State == fsm.StateInFlight
	}, 2*time.Second, 5*time.Millisecond)

	second := ctrl.Submit(context.Background())
	require.ErrorIs(t, second.Err, ErrSubmissionInFlight)
	require.Equal(t, KindInFlight, Kind(second.Err))
	require.Equal(t, fsm.StateInFlight, second.Status.State)

	// Edits stay allowed while the snapshot is in flight.
	ctrl.Dispatch(form.SetQuarter{Quarter: form.QuarterQ4})

	close(analyzer.block)
	first := <-done
	require.NoError(t, first.Err)
	require.Equal(t, int32(1), analyzer.calls.Load())
	require.Equal(t, "Full Game", analyzer.requests[0].Quarter)
}

func TestSubmitWithoutPolicy(t *testing.T) {
	ctrl := NewController(nil, &fakeAnalyzer{}, nil, nil, nil, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q1 x"})
	outcome := ctrl.Submit(context.Background())
	require.ErrorIs(t, outcome.Err, ErrPolicyUnset)
	require.Equal(t, fsm.StateIdle, ctrl.Status().State)
}

func TestSubmitWithoutAnalyzerFails(t *testing.T) {
	ctrl := NewController(nil, nil, nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q1 x"})
	outcome := ctrl.Submit(context.Background())
	require.ErrorIs(t, outcome.Err, ErrAnalyzerUnavailable)
	require.Equal(t, fsm.StateFailed, outcome.Status.State)
	require.Equal(t, ErrAnalyzerUnavailable.Error(), outcome.Status.Message)
}

func TestOutcomeTimestamps(t *testing.T) {
	ctrl := NewController(nil, &fakeAnalyzer{result: "ok"}, nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "Q1 x"})
	outcome := ctrl.Submit(context.Background())
	require.False(t, outcome.StartedAt.IsZero())
	require.False(t, outcome.FinishedAt.Before(outcome.StartedAt))
	require.NotEmpty(t, outcome.RequestID)
}

func TestSelectImageThenVideoClearsImage(t *testing.T) {
	img := writeFile(t, "court.png", []byte("\x89PNG\r\n\x1a\nbody"))
	vid := writeFile(t, "game.mp4", []byte("video"))

	ctrl := NewController(nil, nil, nil, nil, policy.Strict, nil)

	require.True(t, settled(t, ctrl.SelectImage(context.Background(), img)).Applied)
	require.True(t, ctrl.Form().HasImage())

	require.True(t, settled(t, ctrl.SelectVideo(context.Background(), vid)).Applied)
	state := ctrl.Form()
	require.False(t, state.HasImage())
	require.True(t, state.HasVideo())
	require.Contains(t, state.Video(), "data:video/mp4;base64,")

	require.True(t, settled(t, ctrl.SelectImage(context.Background(), img)).Applied)
	state = ctrl.Form()
	require.True(t, state.HasImage())
	require.False(t, state.HasVideo())
}

func TestLatestStartedMediaLoadWins(t *testing.T) {
	enc := newGatedEncoder("slow.png", "fast.mp4")
	ctrl := NewController(nil, nil, enc, nil, policy.Strict, nil)

	imageLoad := ctrl.SelectImage(context.Background(), "slow.png")
	videoLoad := ctrl.SelectVideo(context.Background(), "fast.mp4")

	enc.release("fast.mp4")
	require.True(t, settled(t, videoLoad).Applied)
	enc.release("slow.png")
	require.False(t, settled(t, imageLoad).Applied)

	ctrl.Wait()
	state := ctrl.Form()
	require.True(t, state.HasVideo())
	require.False(t, state.HasImage())
}

func TestClearMediaSupersedesPendingLoad(t *testing.T) {
	enc := newGatedEncoder("court.png")
	ctrl := NewController(nil, nil, enc, nil, policy.Strict, nil)

	load := ctrl.SelectImage(context.Background(), "court.png")
	ctrl.Dispatch(form.ClearMedia{})
	enc.release("court.png")

	require.False(t, settled(t, load).Applied)
	require.Equal(t, form.MediaNone, ctrl.Form().Media.Kind)
}

func TestTypedTranscriptBeatsSlowFileLoad(t *testing.T) {
	gate := make(chan struct{})
	loader := textLoaderFunc(func(context.Context, string) (string, error) {
		<-gate
		return "Q1 from file", nil
	})
	ctrl := NewController(nil, nil, nil, loader, policy.MediaOptional, nil)

	load := ctrl.LoadTranscript(context.Background(), "pbp.txt")
	ctrl.Dispatch(form.SetTranscript{Text: "Q2 typed"})
	close(gate)

	require.False(t, settled(t, load).Applied)
	require.Equal(t, "Q2 typed", ctrl.Form().Transcript)
}

func TestLoadTranscriptOverwrites(t *testing.T) {
	path := writeFile(t, "pbp.txt", []byte("Q1 10:00 tip\r\nQ1 9:40 three\r\n"))
	ctrl := NewController(nil, nil, nil, nil, policy.MediaOptional, nil)
	ctrl.Dispatch(form.SetTranscript{Text: "old"})

	require.True(t, settled(t, ctrl.LoadTranscript(context.Background(), path)).Applied)
	require.Equal(t, "Q1 10:00 tip\r\nQ1 9:40 three\r\n", ctrl.Form().Transcript)
}

func TestLoadFailureKeepsPreviousValue(t *testing.T) {
	img := writeFile(t, "court.png", []byte("\x89PNG\r\n\x1a\nbody"))
	ctrl := NewController(nil, nil, nil, nil, policy.Strict, nil)
	require.True(t, settled(t, ctrl.SelectImage(context.Background(), img)).Applied)
	before := ctrl.Form().Image()

	res := settled(t, ctrl.SelectImage(context.Background(), filepath.Join(t.TempDir(), "missing.png")))
	require.ErrorIs(t, res.Err, media.ErrRead)
	require.Equal(t, KindRead, Kind(res.Err))
	require.False(t, res.Applied)
	require.Equal(t, before, ctrl.Form().Image())
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{err: nil, want: KindNone},
		{err: &UserInputError{Requirement: "x"}, want: KindUserInput},
		{err: &media.ReadError{Path: "a", Reason: "missing"}, want: KindRead},
		{err: &analysis.ServiceError{Message: "down"}, want: KindService},
		{err: ErrSubmissionInFlight, want: KindInFlight},
		{err: context.Canceled, want: KindCancelled},
		{err: errors.New("other"), want: KindInternal},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Kind(tc.err))
	}
}

func TestAnalyzeFuncAndObserverFuncDelegate(t *testing.T) {
	fn := AnalyzeFunc(func(_ context.Context, req analysis.Request, id string) (string, error) {
		return req.Quarter + ":" + id, nil
	})
	out, err := fn.Analyze(context.Background(), analysis.Request{Quarter: "Q1"}, "abc")
	require.NoError(t, err)
	require.Equal(t, "Q1:abc", out)

	var got Status
	ObserverFunc(func(_ context.Context, s Status) { got = s }).StatusChanged(context.Background(), Status{State: fsm.StateIdle})
	require.Equal(t, fsm.StateIdle, got.State)
}

type textLoaderFunc func(context.Context, string) (string, error)

func (f textLoaderFunc) LoadText(ctx context.Context, path string) (string, error) { return f(ctx, path) }
