package process

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/Veraticus/splice/pkg/config"
)

// PTYManager handles PTY-based process execution
type PTYManager struct {
	cmd      *exec.Cmd
	pty      *os.File
	mu       sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager() *PTYManager {
	return &PTYManager{
		stopChan: make(chan struct{}),
	}
}

// Start starts a process with its stdout and stderr on a PTY
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	// Create the command
	p.cmd = exec.Command(command, args...)
	p.cmd.Env = env

	// Start the command with a PTY
	var err error
	p.pty, err = pty.Start(p.cmd)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	// Copy terminal size so the child formats for the real screen
	if err := p.copyTerminalSize(); err != nil && config.Debug() {
		fmt.Fprintf(os.Stderr, "splice: failed to copy terminal size: %v\n", err)
	}

	// Start monitoring for terminal size changes
	p.wg.Add(1)
	go p.monitorTerminalSize()

	return nil
}

// GetPTY returns the PTY file descriptor
func (p *PTYManager) GetPTY() *os.File {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty
}

// Signal delivers sig to the child
func (p *PTYManager) Signal(sig os.Signal) error {
	if p.cmd == nil || p.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	return p.cmd.Process.Signal(sig)
}

// Wait waits for the process to complete
func (p *PTYManager) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := p.cmd.Wait()

	// Signal stop to goroutines
	p.stopOnce.Do(func() { close(p.stopChan) })

	// Wait for goroutines
	p.wg.Wait()

	return err
}

// ExitCode returns the exit status of a finished process, or -1
func (p *PTYManager) ExitCode() int {
	if p.cmd == nil || p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// Stop closes the PTY
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pty == nil {
		return nil
	}
	err := p.pty.Close()
	p.pty = nil
	return err
}

// copyTerminalSize copies the terminal size from stdin to the PTY
func (p *PTYManager) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}

	return pty.Setsize(p.pty, size)
}

// monitorTerminalSize monitors for terminal size changes
func (p *PTYManager) monitorTerminalSize() {
	defer p.wg.Done()

	// Create a channel for SIGWINCH signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				if err := p.copyTerminalSize(); err != nil && config.Debug() {
					fmt.Fprintf(os.Stderr, "splice: failed to resize PTY: %v\n", err)
				}
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}
