// Package status reports what a splice run did on the diagnostic stream.
package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/splice/pkg/interfaces"
	"github.com/Veraticus/splice/pkg/splice"
)

// Reporter writes the run summary and, when tracing, region events
type Reporter struct {
	writer  io.Writer
	enabled bool
	trace   bool
}

// NewReporter creates a new status reporter. enabled turns on the summary,
// trace turns on per-region events.
func NewReporter(writer io.Writer, enabled, trace bool) *Reporter {
	return &Reporter{
		writer:  writer,
		enabled: enabled,
		trace:   trace,
	}
}

// Ensure Reporter implements RegionObserver
var _ interfaces.RegionObserver = (*Reporter)(nil)

// RegionOpened implements interfaces.RegionObserver
func (r *Reporter) RegionOpened(lineNo int) {
	if r.trace {
		fmt.Fprintf(r.writer, "splice: region opened at line %d\n", lineNo)
	}
}

// RegionClosed implements interfaces.RegionObserver
func (r *Reporter) RegionClosed(lineNo int) {
	if r.trace {
		fmt.Fprintf(r.writer, "splice: region closed at line %d\n", lineNo)
	}
}

// Report prints the summary of a finished run
func (r *Reporter) Report(stats splice.Stats) {
	if !r.enabled {
		return
	}
	fmt.Fprintln(r.writer, Summary(stats))
}

// Summary renders stats as a single line
func Summary(stats splice.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "splice: %d of %d %s emitted, %d %s",
		stats.LinesEmitted, stats.LinesRead, plural(stats.LinesRead, "line", "lines"),
		stats.Regions, plural(stats.Regions, "region", "regions"))
	if stats.MaxDepth > 1 {
		fmt.Fprintf(&b, ", max depth %d", stats.MaxDepth)
	}
	if stats.Depth > 0 {
		fmt.Fprintf(&b, ", input ended inside a region (depth %d)", stats.Depth)
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
