package report

import (
	"fmt"
	"io"
	"os"
)

// Sink receives every report line. Lines are written to all of its writers, typically the
// results file and the console. The first write error is kept and returned by Err and Close;
// later lines are dropped.
type Sink struct {
	w      io.Writer
	closer io.Closer
	err    error
}

// Returns a sink writing to all of writers
func NewSink(writers ...io.Writer) *Sink {
	return &Sink{w: io.MultiWriter(writers...)}
}

// Truncates (or creates) the file at path and returns a sink writing to it and to console
func OpenFile(path string, console io.Writer) (*Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	s := NewSink(f, console)
	s.closer = f
	return s, nil
}

// Writes one line
func (s *Sink) Log(msg string) {
	if s.err != nil {
		return
	}
	if _, err := io.WriteString(s.w, msg+"\n"); err != nil {
		s.err = fmt.Errorf("write report line: %w", err)
	}
}

// Formats and writes one line
func (s *Sink) Logf(format string, args ...any) {
	s.Log(fmt.Sprintf(format, args...))
}

// Returns the first write error, if any
func (s *Sink) Err() error {
	return s.err
}

// Closes the underlying file, if the sink owns one
func (s *Sink) Close() error {
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && s.err == nil {
			s.err = fmt.Errorf("close results file: %w", err)
		}
		s.closer = nil
	}
	return s.err
}
