package cli

import (
	"bufio"
	"os"
	"sync"
	"time"

	"arbor/internal/editor"
	"arbor/internal/format"
	"arbor/internal/notify"

	"go.uber.org/zap"
)

// changeSink appends published changes to a file as JSON lines.
type changeSink struct {
	mu          sync.Mutex
	f           *os.File
	w           *bufio.Writer
	log         *zap.Logger
	unsubscribe func()
}

// openSink subscribes a file sink when --changes is set. A positive window
// coalesces bursts to the newest change; otherwise every change is written.
func openSink(app *App, ed *editor.Editor, window time.Duration) (*changeSink, error) {
	s := &changeSink{log: app.log}
	if app.Changes == "" {
		return s, nil
	}
	f, err := os.OpenFile(app.Changes, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	s.f, s.w = f, bufio.NewWriter(f)
	s.unsubscribe = ed.Notifier().Subscribe(notify.Coalesce(window, s.write))
	return s, nil
}

func (s *changeSink) write(c notify.Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return
	}
	if err := format.WriteJSON(s.w, c, false); err != nil {
		s.log.Warn("change sink write failed", zap.Error(err))
		return
	}
	if err := s.w.Flush(); err != nil {
		s.log.Warn("change sink flush failed", zap.Error(err))
	}
}

func (s *changeSink) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.w.Flush()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	s.w, s.f = nil, nil
	return err
}
