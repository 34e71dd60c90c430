package session

import (
	"context"
	"errors"

	"github.com/rbright/courtside/internal/analysis"
	"github.com/rbright/courtside/internal/media"
)

var (
	// ErrUserInput marks submissions rejected before any network call.
	ErrUserInput = errors.New("incomplete analysis input")
	// ErrSubmissionInFlight rejects a submit while another one is still waiting on the service.
	ErrSubmissionInFlight = errors.New("analysis already in progress")
	// ErrPolicyUnset indicates no validation policy was wired into the controller.
	ErrPolicyUnset = errors.New("no validation policy configured")
	// ErrAnalyzerUnavailable indicates no analysis service was wired into the controller.
	ErrAnalyzerUnavailable = errors.New("analysis service not configured")
)

// UserInputError reports which policy blocked a submission and what it needs.
type UserInputError struct {
	Policy      string
	Requirement string
}

func (e *UserInputError) Error() string {
	if e.Requirement == "" {
		return "please complete the analysis inputs"
	}
	return "please " + e.Requirement
}

func (e *UserInputError) Is(target error) bool { return target == ErrUserInput }

// ErrorKind classifies session errors for presentation and exit codes.
type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindUserInput ErrorKind = "user_input"
	KindRead      ErrorKind = "read"
	KindService   ErrorKind = "service"
	KindInFlight  ErrorKind = "in_flight"
	KindCancelled ErrorKind = "cancelled"
	KindInternal  ErrorKind = "internal"
)

// Kind classifies err into one of the session error kinds.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUserInput):
		return KindUserInput
	case errors.Is(err, media.ErrRead):
		return KindRead
	case errors.Is(err, ErrSubmissionInFlight):
		return KindInFlight
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, analysis.ErrService):
		return KindService
	default:
		return KindInternal
	}
}
