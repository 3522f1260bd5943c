// Package source provides the line sources splice reads from.
package source

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/Veraticus/splice/pkg/interfaces"
	"github.com/Veraticus/splice/pkg/types"
)

// StdinName is the display name and path alias for standard input.
const StdinName = "-"

var errIsDirectory = errors.New("is a directory")

// ReaderSource reads lines from any io.Reader
type ReaderSource struct {
	name   string
	reader *bufio.Reader
	closer io.Closer
}

// Ensure ReaderSource implements LineSource
var _ interfaces.LineSource = (*ReaderSource)(nil)

// NewReader wraps r as a line source
func NewReader(name string, r io.Reader) *ReaderSource {
	s := &ReaderSource{
		name:   name,
		reader: bufio.NewReader(r),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Open returns a source for path. An empty path or "-" selects stdin.
func Open(path string) (*ReaderSource, error) {
	if path == "" || path == StdinName {
		return NewReader("stdin", io.NopCloser(os.Stdin)), nil
	}

	// #nosec G304 - reading the user's chosen input is the whole point
	fh, err := os.Open(path)
	if err != nil {
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: err}
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: err}
	}
	if info.IsDir() {
		_ = fh.Close()
		return nil, &types.Error{Kind: types.KindInput, Subject: path, Err: errIsDirectory}
	}
	return NewReader(path, fh), nil
}

// ReadLine returns the next line including its terminator. A trailing
// line with no newline is returned as-is before io.EOF.
func (s *ReaderSource) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err == nil {
		return line, nil
	}
	if err == io.EOF {
		if line != "" {
			return line, nil
		}
		return "", io.EOF
	}
	// Partial data before a failed read is dropped.
	return "", &types.Error{Kind: types.KindRead, Subject: s.name, Err: err}
}

// Name returns the display name of the source
func (s *ReaderSource) Name() string {
	return s.name
}

// Close releases the underlying reader if it owns one
func (s *ReaderSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
