// Package capture provides the diagnostics sink handed to a strategy for
// the duration of one tick.
package capture

import (
	"bytes"
	"strings"
	"sync"
	"unicode"
)

// Sink buffers everything a strategy writes during one invocation. It is
// deliberately tolerant of misuse: writing after Close still collects text,
// Close is idempotent, and nothing a strategy does to the sink can reach the
// engine's own console output.
type Sink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Write implements io.Writer. Writes are accepted even after Close.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// Close implements io.Closer. Closing never discards collected text.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether the strategy closed the sink.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// String returns the captured text with trailing whitespace trimmed.
func (s *Sink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimRightFunc(s.buf.String(), unicode.IsSpace)
}
