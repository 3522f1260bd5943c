package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/Veraticus/splice/pkg/config"
	"github.com/Veraticus/splice/pkg/interfaces"
	"github.com/Veraticus/splice/pkg/process"
	"github.com/Veraticus/splice/pkg/source"
	"github.com/Veraticus/splice/pkg/splice"
	"github.com/Veraticus/splice/pkg/status"
	"github.com/Veraticus/splice/pkg/types"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config         *config.Config
	Source         interfaces.LineSource
	Engine         *splice.Engine
	StatusReporter *status.Reporter
	ProcessManager *process.Manager
	closer         io.Closer
	stderr         io.Writer
}

// NewDependencies opens the line source and builds the engine
func NewDependencies(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		stderr: stderr,
	}

	switch {
	case len(cfg.Command) > 0:
		pm := process.NewManager()
		if err := pm.Start(cfg.Command[0], cfg.Command[1:]); err != nil {
			return nil, err
		}
		deps.ProcessManager = pm
		deps.Source = pm
		deps.closer = pm
	case cfg.Follow:
		f, err := source.Follow(ctx, cfg.Input)
		if err != nil {
			return nil, err
		}
		deps.Source = f
		deps.closer = f
	default:
		s, err := source.Open(cfg.Input)
		if err != nil {
			return nil, err
		}
		deps.Source = s
		deps.closer = s
	}

	if config.Debug() {
		fmt.Fprintf(stderr, "splice: reading from %s\n", deps.Source.Name())
	}

	deps.StatusReporter = status.NewReporter(stderr, cfg.Stats, config.Debug())
	deps.Engine = splice.New(cfg.StartPattern(), cfg.StopPattern(), cfg.Repeated, stdout)
	deps.Engine.SetObserver(deps.StatusReporter)

	return deps, nil
}

// Close releases the line source. Safe to call more than once.
func (d *Dependencies) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

// Application represents the main application
type Application struct {
	deps     *Dependencies
	exitCode int
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run splices the source to the output
func (a *Application) Run() error {
	stats, err := a.deps.Engine.Run(a.deps.Source)

	// Closing first lets a command source report its exit status
	closeErr := a.deps.Close()
	a.deps.StatusReporter.Report(stats)

	if err != nil {
		if types.KindOf(err) == types.KindWrite && isBrokenPipe(err) {
			// The reader went away; there is nobody left to write for
			if config.Debug() {
				fmt.Fprintf(a.deps.stderr, "splice: output closed, stopping\n")
			}
			return nil
		}
		a.exitCode = exitRuntime
		return err
	}

	if closeErr != nil {
		a.exitCode = exitRuntime
		return closeErr
	}

	if a.deps.ProcessManager != nil {
		a.exitCode = a.deps.ProcessManager.ExitCode()
	}
	return nil
}

// ExitCode returns the process exit code for the finished run
func (a *Application) ExitCode() int {
	return a.exitCode
}

// isBrokenPipe reports whether an error is a broken pipe / closed pipe,
// as when output is piped into head.
func isBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
