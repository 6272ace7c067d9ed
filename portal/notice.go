package portal

import (
	"context"
	"log/slog"
	"sync"

	goCourt "github.com/MrEthical07/goCourt"
)

// NoticeBoard is a goCourt.Notifier that keeps the most recent notice for
// the next page the user loads. Pass it to the manager's builder and to [New].
type NoticeBoard struct {
	logger *slog.Logger

	mu   sync.Mutex
	last *goCourt.Notice
}

func NewNoticeBoard(logger *slog.Logger) *NoticeBoard {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeBoard{logger: logger}
}

func (b *NoticeBoard) Notify(ctx context.Context, notice goCourt.Notice) {
	goCourt.LogNotifier{Logger: b.logger}.Notify(ctx, notice)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = &notice
}

// Last returns the most recent notice without consuming it.
func (b *NoticeBoard) Last() *goCourt.Notice {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return nil
	}
	n := *b.last
	return &n
}

// Take returns and clears the most recent notice.
func (b *NoticeBoard) Take() *goCourt.Notice {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.last
	b.last = nil
	return n
}
