// Package splice implements the region filter: lines between a start match
// and its balancing stop match are copied to the output, everything else is
// dropped.
package splice

import (
	"errors"
	"io"

	"github.com/Veraticus/splice/pkg/interfaces"
	"github.com/Veraticus/splice/pkg/types"
)

// Stats summarizes one run of the engine
type Stats struct {
	LinesRead    int
	LinesEmitted int
	Regions      int
	MaxDepth     int
	// Depth is the nesting level when the run ended. Non-zero means the
	// input ended inside a region.
	Depth int
}

// Engine copies the regions of a line source to an output writer
type Engine struct {
	start    interfaces.Matcher
	stop     interfaces.Matcher
	repeated bool
	out      io.Writer
	observer interfaces.RegionObserver
}

// New creates an engine. In single-shot mode (repeated false) the engine
// stops reading as soon as the first region closes.
func New(start, stop interfaces.Matcher, repeated bool, out io.Writer) *Engine {
	return &Engine{
		start:    start,
		stop:     stop,
		repeated: repeated,
		out:      out,
	}
}

// SetObserver registers a handler for region open and close events
func (e *Engine) SetObserver(o interfaces.RegionObserver) {
	e.observer = o
}

// Run pulls lines from src until it is exhausted or, in single-shot mode,
// until the first region closes. Patterns see the line exactly as read,
// terminator included. Each line is handled in this order: a start match
// deepens the region, the line is written if inside a region, then a stop
// match inside a region makes it shallower.
func (e *Engine) Run(src interfaces.LineSource) (Stats, error) {
	var stats Stats
	depth := 0

	for {
		line, err := src.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Depth = depth
			return stats, readError(src, err)
		}
		stats.LinesRead++

		if e.start.MatchString(line) {
			depth++
			if depth == 1 {
				stats.Regions++
				if e.observer != nil {
					e.observer.RegionOpened(stats.LinesRead)
				}
			}
			if depth > stats.MaxDepth {
				stats.MaxDepth = depth
			}
		}

		if depth > 0 {
			if _, err := io.WriteString(e.out, line); err != nil {
				stats.Depth = depth
				return stats, &types.Error{Kind: types.KindWrite, Err: err}
			}
			stats.LinesEmitted++
		}

		if depth > 0 && e.stop.MatchString(line) {
			depth--
			if depth == 0 {
				if e.observer != nil {
					e.observer.RegionClosed(stats.LinesRead)
				}
				if !e.repeated {
					break
				}
			}
		}
	}

	stats.Depth = depth
	return stats, nil
}

func readError(src interfaces.LineSource, err error) error {
	var serr *types.Error
	if errors.As(err, &serr) {
		return err
	}
	return &types.Error{Kind: types.KindRead, Subject: src.Name(), Err: err}
}
