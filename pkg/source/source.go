// Package source provides pull-based line sources for the analyzer. A
// Source yields lines strictly in order, one at a time, from a file, an
// in-memory buffer, a journald unit, or a docker container, so the
// correlation pass is fed the same way regardless of where the log lives.
package source

import (
	"bufio"
	"io"
	"strings"
)

// Source is a pull-based line iterator in the bufio.Scanner idiom:
//
//	for src.Next() {
//		use(src.Line())
//	}
//	if err := src.Err(); err != nil { ... }
//
// Sources are not restartable; re-reading means opening a new Source.
type Source interface {
	// Next advances to the next line. It returns false at end of stream or
	// on error; Err distinguishes the two.
	Next() bool

	// Line returns the current line without its trailing newline. Only
	// valid after Next returned true.
	Line() string

	// Err returns the first error encountered, or nil on clean EOF.
	Err() error

	// Close releases the underlying stream.
	Close() error
}

// debug.log lines routinely exceed bufio's default 64K token limit when a
// single message dumps a long inventory, so every reader-backed source
// shares this cap.
const maxLineBytes = 4 * 1024 * 1024

// readerSource adapts any io.Reader into a Source.
type readerSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	err     error
}

func newReaderSource(r io.Reader, c io.Closer) *readerSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &readerSource{scanner: sc, closer: c}
}

func (s *readerSource) Next() bool {
	if s.err != nil {
		return false
	}
	if s.scanner.Scan() {
		return true
	}
	s.err = s.scanner.Err()
	return false
}

func (s *readerSource) Line() string { return s.scanner.Text() }

func (s *readerSource) Err() error { return s.err }

func (s *readerSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// FromReader wraps an arbitrary reader as a Source. Close is a no-op.
func FromReader(r io.Reader) Source {
	return newReaderSource(r, nil)
}

// FromString returns a Source over in-memory text, for tests and fixtures.
func FromString(text string) Source {
	return newReaderSource(strings.NewReader(text), nil)
}
