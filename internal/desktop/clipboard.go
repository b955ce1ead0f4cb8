package desktop

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/deskrun/internal/platform"
)

type clipboardState struct {
	mu        sync.Mutex
	clipboard platform.Clipboard
}

func (s *clipboardState) handle(op ClipboardOp, log *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch o := op.(type) {
	case ClipboardWriteText:
		if s.clipboard == nil {
			answer(log, o.Reply, platform.ErrNotSupported)
			return
		}
		answer(log, o.Reply, s.clipboard.WriteText(o.Text))
	case ClipboardReadText:
		if s.clipboard == nil {
			answer(log, o.Reply, Result[string]{Err: platform.ErrNotSupported})
			return
		}
		text, err := s.clipboard.ReadText()
		answer(log, o.Reply, Result[string]{Value: text, Err: err})
	}
}

// ClipboardManager reads and writes clipboard text from any goroutine.
type ClipboardManager struct {
	ctx *Context
}

func (m *ClipboardManager) WriteText(text string) error {
	return replyErr(request(m.ctx, func(r *Reply[error]) Message {
		return ClipboardMessage{Op: ClipboardWriteText{Text: text, Reply: r}}
	}))
}

func (m *ClipboardManager) ReadText() (string, error) {
	res, err := request(m.ctx, func(r *Reply[Result[string]]) Message {
		return ClipboardMessage{Op: ClipboardReadText{Reply: r}}
	})
	if err != nil {
		return "", err
	}
	return res.Value, res.Err
}
