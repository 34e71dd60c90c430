package analysis

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrService marks failures of the outbound analysis call. Re-submitting recovers.
var ErrService = errors.New("analysis service error")

// ServiceError carries the user-facing failure message for one analysis call.
//
// Message comes from the response error field when the service sent one, otherwise from the
// transport or status description. It is never empty.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("analysis service: http %d: %s", e.StatusCode, e.Message)
	}
	return "analysis service: " + e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrService) match any ServiceError.
func (e *ServiceError) Is(target error) bool { return target == ErrService }

// Message returns the display message for err: the ServiceError message when present,
// otherwise err's own text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var svc *ServiceError
	if errors.As(err, &svc) && strings.TrimSpace(svc.Message) != "" {
		return svc.Message
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "analysis request failed"
}

func snippet(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	const limit = 200
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
