// Package notify provides implementations of the notification port.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Notifier receives user-facing messages. Delivery is fire-and-forget.
type Notifier interface {
	Notify(message string)
}

// Log writes each message to a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger.With("component", "notify")}
}

func (l *Log) Notify(message string) {
	l.logger.Info("notification", "message", message)
}

// Writer prints each message on its own line, for terminal sessions.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer notifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Notify(message string) {
	fmt.Fprintf(n.w, "» %s\n", message)
}

// Recorder buffers messages until drained.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Drain returns the buffered messages and clears the buffer.
func (r *Recorder) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	if out == nil {
		out = []string{}
	}
	return out
}

// Multi delivers every message to each notifier in order.
type Multi []Notifier

func (m Multi) Notify(message string) {
	for _, n := range m {
		n.Notify(message)
	}
}
