package goCourt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Notice is an interruptive message for the person at the keyboard.
type Notice struct {
	Message   string    `json:"message"`
	Email     string    `json:"email,omitempty"`
	ExpiredAt time.Time `json:"expired_at"`
}

// Notifier delivers a [Notice] to the user. The manager calls it when the
// expiry timer fires, before logging out; Notify may block until the notice
// has been acknowledged.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(ctx context.Context, notice Notice)

func (f NotifierFunc) Notify(ctx context.Context, notice Notice) { f(ctx, notice) }

// WriterNotifier prints notices to a terminal-like writer, ringing the bell.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(_ context.Context, notice Notice) {
	if n == nil || n.w == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "\a%s\n", notice.Message)
}

// LogNotifier records notices as warnings. It suits headless processes
// where nobody watches a terminal.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, notice Notice) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, notice.Message,
		"email", notice.Email,
		"expired_at", notice.ExpiredAt,
	)
}
