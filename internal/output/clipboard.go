// Package output applies insight side effects outside the terminal.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNoClipboard is returned when no clipboard command is configured.
var ErrNoClipboard = errors.New("no clipboard command configured")

const copyTimeout = 2 * time.Second

// Copier pipes insight text to a clipboard command such as wl-copy.
type Copier struct {
	argv   []string
	logger *slog.Logger
}

// NewCopier constructs a copier for argv; a nil logger discards output.
func NewCopier(argv []string, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Copier{argv: append([]string(nil), argv...), logger: logger}
}

// Copy writes text to the clipboard command's stdin. Blank text is a no-op.
func (c *Copier) Copy(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(c.argv) == 0 {
		return ErrNoClipboard
	}

	copyCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()
	if err := runCommandWithInput(copyCtx, c.argv, text); err != nil {
		c.logger.Error("clipboard copy failed", "component", "output", "command", c.argv[0], "error", err.Error())
		return fmt.Errorf("set clipboard: %w", err)
	}
	c.logger.Debug("insight copied", "component", "output", "command", c.argv[0], "bytes", len(text))
	return nil
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	var writeErr error
	if input != "" {
		_, writeErr = stdin.Write([]byte(input))
	}
	_ = stdin.Close()

	// A command that exits before reading stdin breaks the pipe; its exit status and stderr
	// describe the failure better than the write error.
	if err := cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("wait for %s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	if writeErr != nil {
		return fmt.Errorf("write stdin for %s: %w", argv[0], writeErr)
	}
	return nil
}
