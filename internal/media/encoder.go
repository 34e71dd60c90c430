package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultMaxMediaBytes bounds one encoded image or video.
	DefaultMaxMediaBytes int64 = 64 << 20
	// DefaultMaxTranscriptBytes bounds one transcript file.
	DefaultMaxTranscriptBytes int64 = 4 << 20
)

// Encoder turns a binary file into a data URI suitable for a JSON request body.
type Encoder struct {
	maxBytes int64
}

// NewEncoder constructs an encoder; non-positive limits fall back to DefaultMaxMediaBytes.
func NewEncoder(maxBytes int64) *Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxMediaBytes
	}
	return &Encoder{maxBytes: maxBytes}
}

// Encode reads path and returns `data:<mime>;base64,<payload>`.
//
// accept is a MIME prefix such as "image/"; an empty accept allows any type.
func (e *Encoder) Encode(ctx context.Context, path string, accept string) (string, error) {
	data, err := readLimited(ctx, path, e.maxBytes)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", &ReadError{Path: path, Reason: "file is empty"}
	}

	mimeType := DetectType(path, data)
	if accept != "" && !strings.HasPrefix(mimeType, accept) {
		return "", &ReadError{Path: path, Reason: fmt.Sprintf("unsupported type %s (want %s*)", mimeType, accept)}
	}
	return MakeDataURI(mimeType, data), nil
}

// readLimited reads at most limit bytes from path, honoring ctx before and after the read.
func readLimited(ctx context.Context, path string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &ReadError{Path: path, Reason: "is a directory"}
	}
	if info.Size() > limit {
		return nil, tooLarge(path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if int64(len(data)) > limit {
		return nil, tooLarge(path, int64(len(data)), limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}

func tooLarge(path string, size, limit int64) error {
	return &ReadError{
		Path:   path,
		Reason: fmt.Sprintf("file is %s, limit is %s", humanize.IBytes(uint64(size)), humanize.IBytes(uint64(limit))),
	}
}
