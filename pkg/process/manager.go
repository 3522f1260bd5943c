// Package process runs a command under a pseudo-terminal and exposes its
// output as a line source.
package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Veraticus/splice/pkg/config"
	"github.com/Veraticus/splice/pkg/interfaces"
	"github.com/Veraticus/splice/pkg/types"
)

// DefaultKillGrace is how long a stopped command gets to exit before it is
// killed
const DefaultKillGrace = 2 * time.Second

// Manager manages the command whose output is being spliced
type Manager struct {
	ptyManager PTY
	reader     *bufio.Reader
	name       string
	killGrace  time.Duration

	mu         sync.Mutex
	exitCode   int
	finished   bool
	terminated bool
	closed     bool

	sigChan chan os.Signal
	done    chan struct{}
}

// Ensure Manager implements LineSource
var _ interfaces.LineSource = (*Manager)(nil)

// NewManager creates a new process manager backed by a real PTY
func NewManager() *Manager {
	return NewManagerWithPTY(NewPTYManager())
}

// NewManagerWithPTY creates a process manager around the given PTY
func NewManagerWithPTY(p PTY) *Manager {
	return &Manager{
		ptyManager: p,
		killGrace:  DefaultKillGrace,
		done:       make(chan struct{}),
	}
}

// SetKillGrace sets how long Close waits after SIGTERM before sending SIGKILL
func (m *Manager) SetKillGrace(d time.Duration) {
	m.killGrace = d
}

// Start starts the command
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ptyManager.Start(command, args, os.Environ()); err != nil {
		return &types.Error{Kind: types.KindInput, Subject: command, Err: err}
	}

	m.name = command
	m.reader = bufio.NewReader(m.ptyManager.GetPTY())

	if config.Debug() {
		fmt.Fprintf(os.Stderr, "splice: started %s %v\n", command, args)
	}

	// Setup signal forwarding
	m.setupSignalForwarding()

	return nil
}

// ReadLine returns the next line of command output
func (m *Manager) ReadLine() (string, error) {
	if m.reader == nil {
		return "", &types.Error{Kind: types.KindRead, Subject: m.name, Err: fmt.Errorf("process not started")}
	}

	line, err := m.reader.ReadString('\n')
	if err == nil {
		return line, nil
	}
	if err == io.EOF || isPTYClosed(err) {
		m.mu.Lock()
		m.finished = true
		m.mu.Unlock()
		if line != "" {
			return line, nil
		}
		return "", io.EOF
	}
	return "", &types.Error{Kind: types.KindRead, Subject: m.name, Err: err}
}

// isPTYClosed reports the error a PTY master returns once every slave
// descriptor is gone.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

// Name returns the command name
func (m *Manager) Name() string {
	return m.name
}

// Close waits for the command to exit. A command whose output was not read
// to the end is sent SIGTERM and its terminal is hung up; if it is still
// running after the kill grace period it is sent SIGKILL.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed || m.reader == nil {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	if !m.finished {
		m.terminated = true
	}
	terminated := m.terminated
	m.mu.Unlock()

	if terminated {
		if config.Debug() {
			fmt.Fprintf(os.Stderr, "splice: stopping %s\n", m.name)
		}
		if err := m.ptyManager.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
			fmt.Fprintf(os.Stderr, "splice: failed to stop %s: %v\n", m.name, err)
		}
		// Closing the master sends SIGHUP to the child's session
		_ = m.ptyManager.Stop()
	}

	err := m.wait(terminated)

	m.mu.Lock()
	m.exitCode = m.ptyManager.ExitCode()
	m.mu.Unlock()

	_ = m.ptyManager.Stop()

	// Signal that we're done
	close(m.done)
	m.cleanupSignals()

	if config.Debug() {
		fmt.Fprintf(os.Stderr, "splice: %s exited with status %d\n", m.name, m.ExitCode())
	}

	var exitErr *exec.ExitError
	if terminated || errors.As(err, &exitErr) {
		// Reported through ExitCode
		return nil
	}
	return err
}

// wait waits for the command, killing a terminated one that outlives the
// grace period
func (m *Manager) wait(terminated bool) error {
	if !terminated {
		return m.ptyManager.Wait()
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- m.ptyManager.Wait()
	}()

	timer := time.NewTimer(m.killGrace)
	defer timer.Stop()

	select {
	case err := <-waitErr:
		return err
	case <-timer.C:
	}

	if config.Debug() {
		fmt.Fprintf(os.Stderr, "splice: %s ignored SIGTERM, killing it\n", m.name)
	}
	if err := m.ptyManager.Signal(syscall.SIGKILL); err != nil && !errors.Is(err, os.ErrProcessDone) {
		fmt.Fprintf(os.Stderr, "splice: failed to kill %s: %v\n", m.name, err)
	}
	return <-waitErr
}

// ExitCode returns the exit code of the command. A command stopped because
// the region closed counts as success.
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terminated {
		return 0
	}
	if m.exitCode < 0 {
		// Killed by a signal
		return 1
	}
	return m.exitCode
}

// setupSignalForwarding sets up signal forwarding to the child process
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
	)

	go m.forwardSignals()
}

// forwardSignals forwards signals to the child process
func (m *Manager) forwardSignals() {
	for {
		select {
		case sig := <-m.sigChan:
			if err := m.ptyManager.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
				fmt.Fprintf(os.Stderr, "splice: signal forward error: %v\n", err)
			}
		case <-m.done:
			return
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}
