package serial

import (
	"log/slog"
	"strings"
)

// LogSink is a serial device that logs outgoing bytes as text and never
// answers. Handy for test ROMs that report results over serial.
type LogSink struct {
	logger *slog.Logger
	output strings.Builder

	// line buffers the current text line for readable logs
	line []byte
}

type LogSinkOption func(*LogSink)

// WithLogger sends completed lines to logger instead of slog.Default.
func WithLogger(logger *slog.Logger) LogSinkOption {
	return func(s *LogSink) { s.logger = logger }
}

func NewLogSink(opts ...LogSinkOption) *LogSink {
	s := &LogSink{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogSink) Send(b byte) {
	s.output.WriteByte(b)

	if b == 0 || b == '\n' || b == '\r' {
		s.Flush()
		return
	}
	s.line = append(s.line, b)
}

// Receive never yields a byte: there is nothing on the other end.
func (s *LogSink) Receive() (byte, bool) { return 0, false }

// Flush logs a pending partial line.
func (s *LogSink) Flush() {
	if len(s.line) == 0 {
		return
	}
	s.logger.Info("serial", "line", string(s.line))
	s.line = s.line[:0]
}

// Output returns everything sent so far as text.
func (s *LogSink) Output() string {
	return s.output.String()
}

func (s *LogSink) Reset() {
	s.output.Reset()
	s.line = s.line[:0]
}
