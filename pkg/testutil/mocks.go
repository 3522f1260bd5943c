package testutil

import (
	"bytes"
	"io"
	"sync"
)

// MockLineSource is a scripted implementation of interfaces.LineSource for testing
type MockLineSource struct {
	mu        sync.Mutex
	name      string
	lines     []string
	failAt    int
	failErr   error
	readCount int
	closed    bool
}

// NewMockLineSource creates a source that yields lines in order, then io.EOF
func NewMockLineSource(lines ...string) *MockLineSource {
	return &MockLineSource{
		name:   "mock",
		lines:  lines,
		failAt: -1,
	}
}

// SetError makes the read at index (zero based) fail with err
func (m *MockLineSource) SetError(index int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt = index
	m.failErr = err
}

// ReadLine implements the LineSource interface
func (m *MockLineSource) ReadLine() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.readCount
	m.readCount++

	if index == m.failAt {
		return "", m.failErr
	}
	if index >= len(m.lines) {
		return "", io.EOF
	}
	return m.lines[index], nil
}

// Name implements the LineSource interface
func (m *MockLineSource) Name() string {
	return m.name
}

// Close marks the source closed
func (m *MockLineSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GetReadCount returns how many times ReadLine was called
func (m *MockLineSource) GetReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCount
}

// IsClosed reports whether Close was called
func (m *MockLineSource) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockWriter records writes and can be told to fail
type MockWriter struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	writes   int
	failFrom int
	err      error
}

// NewMockWriter creates a writer that accepts everything
func NewMockWriter() *MockWriter {
	return &MockWriter{failFrom: -1}
}

// SetError makes every write from the given write index onwards fail with err
func (m *MockWriter) SetError(from int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFrom = from
	m.err = err
}

// Write implements io.Writer
func (m *MockWriter) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.writes
	m.writes++
	if m.failFrom >= 0 && index >= m.failFrom {
		return 0, m.err
	}
	return m.buf.Write(p)
}

// String returns everything written so far
func (m *MockWriter) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

// GetWriteCount returns the number of Write calls
func (m *MockWriter) GetWriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// RegionEvent is one call observed by MockObserver
type RegionEvent struct {
	Opened bool
	LineNo int
}

// MockObserver records region events
type MockObserver struct {
	mu     sync.Mutex
	events []RegionEvent
}

// RegionOpened implements interfaces.RegionObserver
func (m *MockObserver) RegionOpened(lineNo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, RegionEvent{Opened: true, LineNo: lineNo})
}

// RegionClosed implements interfaces.RegionObserver
func (m *MockObserver) RegionClosed(lineNo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, RegionEvent{Opened: false, LineNo: lineNo})
}

// GetEvents returns a copy of the recorded events
func (m *MockObserver) GetEvents() []RegionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]RegionEvent, len(m.events))
	copy(result, m.events)
	return result
}
