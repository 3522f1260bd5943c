package process

import (
	"os"
)

// PTY defines the interface for PTY operations
type PTY interface {
	Start(command string, args []string, env []string) error
	GetPTY() *os.File
	Signal(sig os.Signal) error
	Wait() error
	ExitCode() int
	Stop() error
}
