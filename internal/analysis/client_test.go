package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/rbright/courtside/internal/form"
)

func TestNewRequestMapsFields(t *testing.T) {
	s := form.New()
	s = form.Reduce(s, form.SetCategory{Category: form.CategoryCollege})
	s = form.Reduce(s, form.SetQuarter{Quarter: form.QuarterQ2})
	s = form.Reduce(s, form.SetTranscript{Text: " Q2 5:00 Player A makes 3PT \n"})
	s = form.Reduce(s, form.BeginMediaLoad{})
	s = form.Reduce(s, form.MediaLoaded{Kind: form.MediaVideo, Gen: s.MediaGen, Encoded: "data:video/mp4;base64,AA=="})

	req := NewRequest(s)
	require.Equal(t, Request{
		CourtB64:   "",
		VideoB64:   "data:video/mp4;base64,AA==",
		Transcript: " Q2 5:00 Player A makes 3PT \n",
		Quarter:    "Q2",
		Category:   "College",
	}, req)
}

func TestAnalyzePostsExactlyFiveFields(t *testing.T) {
	var calls int
	var body map[string]any
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		requestID = r.Header.Get(RequestIDHeader)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		_ = json.NewEncoder(w).Encode(Response{Result: "Best shift: 3PT at 5:00 Q2"})
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	result, err := client.Analyze(context.Background(), Request{
		Transcript: "Q2 5:00 Player A makes 3PT",
		Quarter:    "Q2",
		Category:   "College",
	}, "req-123")
	require.NoError(t, err)
	require.Equal(t, "Best shift: 3PT at 5:00 Q2", result)
	require.Equal(t, 1, calls)
	require.Equal(t, "req-123", requestID)
	require.Equal(t, map[string]any{
		"court_b64":  "",
		"video_b64":  "",
		"transcript": "Q2 5:00 Player A makes 3PT",
		"quarter":    "Q2",
		"category":   "College",
	}, body)
}

func TestAnalyzeResultIsVerbatim(t *testing.T) {
	insight := "Line one\n\n  indented line two\t\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(Response{Result: insight})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).Analyze(context.Background(), Request{}, "")
	require.NoError(t, err)
	require.Equal(t, insight, result)
}

func TestAnalyzeMissingResultDefaultsToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL).Analyze(context.Background(), Request{}, "")
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantStatus  int
	}{
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"Missing transcript."}`, wantMessage: "Missing transcript.", wantStatus: 400},
		{name: "plain text failure", status: http.StatusBadGateway, body: "upstream down", wantMessage: "upstream down", wantStatus: 502},
		{name: "empty failure body", status: http.StatusInternalServerError, body: "", wantMessage: "Internal Server Error", wantStatus: 500},
		{name: "blank error field", status: http.StatusInternalServerError, body: `{"error":"  "}`, wantMessage: `{"error":" "}`, wantStatus: 500},
		{name: "unparseable success body", status: http.StatusOK, body: "<html>", wantMessage: "decode response", wantStatus: 200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Analyze(context.Background(), Request{}, "")
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrService))

			var svc *ServiceError
			require.ErrorAs(t, err, &svc)
			require.Equal(t, tc.wantStatus, svc.StatusCode)
			require.Contains(t, svc.Message, tc.wantMessage)
			require.Contains(t, Message(err), tc.wantMessage)
		})
	}
}

func TestAnalyzeTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Analyze(context.Background(), Request{}, "")
	require.ErrorIs(t, err, ErrService)
	require.NotEmpty(t, Message(err))
	require.Contains(t, Message(err), "connect")
}

func TestAnalyzeTimeoutOption(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := NewClient(server.URL, WithTimeout(50*time.Millisecond)).Analyze(context.Background(), Request{}, "")
	require.ErrorIs(t, err, ErrService)
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			_, _ = w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	require.NoError(t, NewClient(server.URL).Health(context.Background()))
	require.Error(t, NewClient(server.URL+"/nested").Health(context.Background()))
}

func TestMessageFallbacks(t *testing.T) {
	require.Empty(t, Message(nil))
	require.Equal(t, "boom", Message(errors.New("boom")))
	require.Equal(t, "bad input", Message(&ServiceError{StatusCode: 400, Message: "bad input"}))
}

func TestSnippetTruncatesOnRuneBoundary(t *testing.T) {
	require.Equal(t, "short body", snippet([]byte("  short\n body ")))

	// 199 ASCII bytes followed by a 3-byte rune straddling the limit.
	body := strings.Repeat("a", 199) + "…tail"
	got := snippet([]byte(body))
	require.True(t, utf8.ValidString(got))
	require.Equal(t, strings.Repeat("a", 199)+"...", got)
}
