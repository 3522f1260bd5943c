package testutil

import (
	"fmt"
	"os"
	"sync"
)

// MockPTYManager is a mock implementation of process.PTY for testing. The
// "terminal" is a pipe: tests write child output with WriteOutput and end it
// with CloseOutput.
type MockPTYManager struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	waited   bool
	command  string
	args     []string
	exitCode int
	startErr error
	waitErr  error
	signals  []os.Signal
	reader   *os.File
	writer   *os.File
	onSignal func(os.Signal)
	exited   chan struct{}
	exitOnce sync.Once
}

// NewMockPTYManager creates a new mock PTY manager
func NewMockPTYManager() *MockPTYManager {
	return &MockPTYManager{}
}

// Start implements the PTY interface
func (m *MockPTYManager) Start(command string, args []string, env []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}
	if m.started {
		return fmt.Errorf("process already started")
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	m.reader, m.writer = r, w
	m.command, m.args = command, args
	m.started = true
	return nil
}

// GetPTY implements the PTY interface
func (m *MockPTYManager) GetPTY() *os.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reader
}

// Signal implements the PTY interface
func (m *MockPTYManager) Signal(sig os.Signal) error {
	m.mu.Lock()
	m.signals = append(m.signals, sig)
	hook := m.onSignal
	m.mu.Unlock()

	if hook != nil {
		hook(sig)
	}
	return nil
}

// Wait implements the PTY interface. After SetWaitBlocks it returns only
// once Exit is called.
func (m *MockPTYManager) Wait() error {
	m.mu.Lock()
	m.waited = true
	exited := m.exited
	m.mu.Unlock()

	if exited != nil {
		<-exited
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waitErr
}

// SetWaitBlocks makes Wait block until Exit is called, like a child that
// keeps running
func (m *MockPTYManager) SetWaitBlocks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exited = make(chan struct{})
}

// Exit lets a blocked Wait return
func (m *MockPTYManager) Exit() {
	m.mu.Lock()
	exited := m.exited
	m.mu.Unlock()

	if exited != nil {
		m.exitOnce.Do(func() { close(exited) })
	}
}

// ExitCode implements the PTY interface
func (m *MockPTYManager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// Stop implements the PTY interface
func (m *MockPTYManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	if m.reader != nil {
		_ = m.reader.Close()
	}
	if m.writer != nil {
		_ = m.writer.Close()
	}
	return nil
}

// WriteOutput writes data as if the child had printed it
func (m *MockPTYManager) WriteOutput(data string) error {
	m.mu.Lock()
	w := m.writer
	m.mu.Unlock()

	if w == nil {
		return fmt.Errorf("not started")
	}
	_, err := w.WriteString(data)
	return err
}

// CloseOutput ends the child's output
func (m *MockPTYManager) CloseOutput() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writer == nil {
		return nil
	}
	err := m.writer.Close()
	m.writer = nil
	return err
}

// SetStartError sets the error to return from Start
func (m *MockPTYManager) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetWaitError sets the error to return from Wait
func (m *MockPTYManager) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// SetExitCode sets the exit code
func (m *MockPTYManager) SetExitCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exitCode = code
}

// SetSignalHook registers a function run on every Signal call
func (m *MockPTYManager) SetSignalHook(fn func(os.Signal)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSignal = fn
}

// GetSignals returns the signals delivered so far
func (m *MockPTYManager) GetSignals() []os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]os.Signal, len(m.signals))
	copy(result, m.signals)
	return result
}

// GetCommand returns the command and arguments passed to Start
func (m *MockPTYManager) GetCommand() (string, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.command, m.args
}

// IsStarted returns whether Start was called
func (m *MockPTYManager) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// IsWaited returns whether Wait was called
func (m *MockPTYManager) IsWaited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waited
}

// IsStopped returns whether Stop was called
func (m *MockPTYManager) IsStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}
