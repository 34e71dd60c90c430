// Package indicator mirrors submission status into freedesktop notifications.
package indicator

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rbright/courtside/internal/config"
	"github.com/rbright/courtside/internal/fsm"
	"github.com/rbright/courtside/internal/session"
)

const (
	dispatchTimeout  = 400 * time.Millisecond
	inFlightTimeout  = 300000
	defaultTimeoutMS = 4000
)

// Notifier is a session.Observer that keeps one replaceable desktop notification per session.
type Notifier struct {
	cfg      config.NotifyConfig
	logger   *slog.Logger
	messages messages

	mu             sync.Mutex
	notificationID uint32
}

var _ session.Observer = (*Notifier)(nil)

// NewNotifier creates a notifier from config, with messages localized from $LANG.
func NewNotifier(cfg config.NotifyConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: messagesFor(resolveLocale(os.Getenv("LANG"))),
	}
}

// StatusChanged shows, replaces, or dismisses the notification for status.
func (n *Notifier) StatusChanged(ctx context.Context, status session.Status) {
	if !n.cfg.Enable {
		return
	}

	switch status.State {
	case fsm.StateInFlight:
		n.run(ctx, func(ctx context.Context) error {
			return n.show(ctx, n.messages.analyzing, "", inFlightTimeout)
		})
	case fsm.StateSucceeded:
		n.run(ctx, func(ctx context.Context) error {
			return n.show(ctx, n.messages.complete, "", timeoutOr(n.cfg.TimeoutMS, defaultTimeoutMS))
		})
	case fsm.StateFailed:
		n.run(ctx, func(ctx context.Context) error {
			return n.show(ctx, n.messages.failed, status.Message, timeoutOr(n.cfg.ErrorTimeoutMS, 2*defaultTimeoutMS))
		})
	default:
		n.run(ctx, n.dismiss)
	}
}

// show sends a notification that replaces the previous one, and stores its ID.
func (n *Notifier) show(ctx context.Context, summary, body string, timeoutMS int) error {
	n.mu.Lock()
	replaceID := n.notificationID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.AppName)
	if appName == "" {
		appName = "courtside"
	}

	id, err := desktopNotify(ctx, appName, replaceID, summary, body, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.notificationID = id
	n.mu.Unlock()
	return nil
}

// dismiss closes the current notification when one is showing.
func (n *Notifier) dismiss(ctx context.Context) error {
	n.mu.Lock()
	id := n.notificationID
	n.notificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes a notification call with a bounded timeout. Failures are logged, never returned.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.logger.Debug("notification dispatch failed", "component", "indicator", "error", err.Error())
	}
}

func timeoutOr(ms, fallback int) int {
	if ms <= 0 {
		return fallback
	}
	return ms
}
