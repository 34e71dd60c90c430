package media

import (
	"bytes"
	"context"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TranscriptLoader reads a play-by-play text file into a string.
type TranscriptLoader struct {
	maxBytes int64
}

// NewTranscriptLoader constructs a loader; non-positive limits fall back to DefaultMaxTranscriptBytes.
func NewTranscriptLoader(maxBytes int64) *TranscriptLoader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxTranscriptBytes
	}
	return &TranscriptLoader{maxBytes: maxBytes}
}

// LoadText returns the file content as UTF-8. A UTF-8 BOM is dropped and UTF-16 files with a
// BOM are transcoded; anything else must already be valid UTF-8. Content is otherwise untouched.
func (l *TranscriptLoader) LoadText(ctx context.Context, path string) (string, error) {
	raw, err := readLimited(ctx, path, l.maxBytes)
	if err != nil {
		return "", err
	}
	if !hasUTF16BOM(raw) && !utf8.Valid(raw) {
		return "", &ReadError{Path: path, Reason: "transcript is not valid UTF-8"}
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", &ReadError{Path: path, Reason: "decode transcript", Err: err}
	}
	return string(decoded), nil
}

func hasUTF16BOM(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0xFF, 0xFE}) || bytes.HasPrefix(b, []byte{0xFE, 0xFF})
}
