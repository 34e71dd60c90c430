package session

import (
	"context"

	"github.com/rbright/courtside/internal/analysis"
)

// Analyzer performs the outbound analysis call for one request snapshot.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request, requestID string) (string, error)
}

// AnalyzeFunc adapts a function to the Analyzer interface.
type AnalyzeFunc func(context.Context, analysis.Request, string) (string, error)

func (f AnalyzeFunc) Analyze(ctx context.Context, req analysis.Request, requestID string) (string, error) {
	return f(ctx, req, requestID)
}

// unavailableAnalyzer keeps the controller usable when no service is wired.
type unavailableAnalyzer struct{}

func (unavailableAnalyzer) Analyze(context.Context, analysis.Request, string) (string, error) {
	return "", &analysis.ServiceError{Message: ErrAnalyzerUnavailable.Error(), Err: ErrAnalyzerUnavailable}
}

// Encoder converts a selected media file into a data URI.
type Encoder interface {
	Encode(ctx context.Context, path string, accept string) (string, error)
}

// TextLoader reads a transcript file.
type TextLoader interface {
	LoadText(ctx context.Context, path string) (string, error)
}

// Observer is notified after every submission status change.
type Observer interface {
	StatusChanged(context.Context, Status)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(context.Context, Status)

func (f ObserverFunc) StatusChanged(ctx context.Context, status Status) { f(ctx, status) }

type noopObserver struct{}

func (noopObserver) StatusChanged(context.Context, Status) {}
