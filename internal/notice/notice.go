// Package notice carries short user-facing messages out of the stores.
package notice

import (
	"context"
	"log/slog"
	"sync"
)

type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Sink interface {
	Notify(n Notice)
}

type SinkFunc func(n Notice)

func (f SinkFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Sink = SinkFunc(func(Notice) {})

// Log writes notices to logger; errors at warn, everything else at debug.
func Log(logger *slog.Logger) Sink {
	return SinkFunc(func(n Notice) {
		level := slog.LevelDebug
		if n.Level == Error {
			level = slog.LevelWarn
		}
		logger.Log(context.Background(), level, "notice", slog.String("level", string(n.Level)), slog.String("message", n.Message))
	})
}

func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(n Notice) {
		for _, s := range sinks {
			s.Notify(n)
		}
	})
}

// Recorder buffers notices until drained.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Drain returns buffered notices in order and resets the buffer.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
