// Package server serves the /analyze endpoint in front of a model engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rbright/courtside/internal/analysis"
	"github.com/rbright/courtside/internal/engine"
	"github.com/rbright/courtside/internal/form"
	"github.com/rbright/courtside/internal/media"
)

// DefaultMaxBodyBytes bounds one /analyze request body.
const DefaultMaxBodyBytes int64 = 96 << 20

// Server validates analysis requests and forwards them to an engine.
type Server struct {
	engine       engine.Engine
	logger       *slog.Logger
	maxBodyBytes int64
}

// New constructs a server; a nil logger discards output and non-positive limits use defaults.
func New(eng engine.Engine, logger *slog.Logger, maxBodyBytes int64) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{engine: eng, logger: logger, maxBodyBytes: maxBodyBytes}
}

// Router returns the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post(analysis.Path, s.handleAnalyze)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Request body must be a JSON object.")
		return
	}

	in, status, msg := s.buildInput(req)
	if status != http.StatusOK {
		writeError(w, status, msg)
		return
	}

	started := time.Now()
	result, err := s.engine.Analyze(r.Context(), in)
	if err != nil {
		s.logger.Error("analysis failed",
			"component", "server",
			"request_id", requestID(r),
			"engine", s.engine.Name(),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("analysis complete",
		"component", "server",
		"request_id", requestID(r),
		"engine", s.engine.Name(),
		"quarter", in.Quarter,
		"category", in.Category,
		"duration_ms", time.Since(started).Milliseconds(),
		"result_length", len(result),
	)
	writeJSON(w, http.StatusOK, analysis.Response{Result: result})
}

// buildInput validates req and decodes its media. A non-200 status carries the error message.
func (s *Server) buildInput(req analysis.Request) (engine.Input, int, string) {
	if strings.TrimSpace(req.Transcript) == "" {
		return engine.Input{}, http.StatusBadRequest, "Missing transcript."
	}

	quarter := form.QuarterFullGame
	if strings.TrimSpace(req.Quarter) != "" {
		q, err := form.ParseQuarter(req.Quarter)
		if err != nil {
			return engine.Input{}, http.StatusBadRequest, err.Error()
		}
		quarter = q
	}
	category := form.CategoryHighSchool
	if strings.TrimSpace(req.Category) != "" {
		c, err := form.ParseCategory(req.Category)
		if err != nil {
			return engine.Input{}, http.StatusBadRequest, err.Error()
		}
		category = c
	}
	if req.CourtB64 != "" && req.VideoB64 != "" {
		return engine.Input{}, http.StatusBadRequest, "Send either 'court_b64' or 'video_b64', not both."
	}

	filtered := analysis.FilterQuarter(strings.TrimSpace(req.Transcript), quarter)
	if strings.TrimSpace(filtered) == "" {
		return engine.Input{}, http.StatusBadRequest, fmt.Sprintf("No play-by-play lines found for %s.", quarter)
	}

	in := engine.Input{Quarter: quarter, Category: category, Transcript: filtered}
	if req.CourtB64 != "" {
		att, err := decodeAttachment(req.CourtB64, "image/")
		if err != nil {
			return engine.Input{}, http.StatusBadRequest, "Invalid 'court_b64': " + err.Error()
		}
		in.Image = att
	}
	if req.VideoB64 != "" {
		att, err := decodeAttachment(req.VideoB64, "video/")
		if err != nil {
			return engine.Input{}, http.StatusBadRequest, "Invalid 'video_b64': " + err.Error()
		}
		in.Video = att
	}
	return in, http.StatusOK, ""
}

func decodeAttachment(encoded, accept string) (engine.Attachment, error) {
	data, mimeType, err := media.DecodeDataURI(encoded)
	if err != nil {
		return engine.Attachment{}, err
	}
	if len(data) == 0 {
		return engine.Attachment{}, errors.New("empty payload")
	}
	if !strings.HasPrefix(mimeType, accept) {
		return engine.Attachment{}, fmt.Errorf("unsupported type %s", mimeType)
	}
	uri := encoded
	if !strings.HasPrefix(uri, "data:") {
		uri = media.MakeDataURI(mimeType, data)
	}
	return engine.Attachment{MIMEType: mimeType, Data: data, DataURI: uri}, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"component", "server",
			"request_id", requestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

// requestID prefers the caller's X-Request-ID and falls back to chi's generated id.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(analysis.RequestIDHeader)); id != "" {
		return id
	}
	return middleware.GetReqID(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, analysis.ErrorResponse{Error: message})
}

// Run serves handler on bind until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, bind string, handler http.Handler, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", bind, err)
	}
	return Serve(ctx, listener, handler, logger)
}

// Serve is Run over an existing listener. A nil logger discards output.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("analysis server listening", "component", "server", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}
