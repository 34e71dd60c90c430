// Package media reads user-selected files into transmittable text: data URIs for binary
// media and decoded strings for transcripts.
package media

import (
	"errors"
	"fmt"
)

// ErrRead marks failures to read or decode a selected file. Re-selecting the file recovers.
var ErrRead = errors.New("read error")

// ReadError describes one file that could not be read or decoded.
type ReadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ReadError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("read %s: %s: %v", e.Path, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("read %s: %v", e.Path, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("read %s: %s", e.Path, e.Reason)
	default:
		return fmt.Sprintf("read %s: failed", e.Path)
	}
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrRead) match any ReadError.
func (e *ReadError) Is(target error) bool { return target == ErrRead }
