// Package interfaces defines the core interfaces used throughout the application.
package interfaces

// Matcher tests a single line against a pattern.
type Matcher interface {
	MatchString(line string) bool
}

// LineSource produces input lines in order. Each line keeps its terminator.
// ReadLine returns io.EOF once the source is exhausted.
type LineSource interface {
	ReadLine() (string, error)
	Name() string
}

// RegionObserver is told when the engine enters and leaves a region.
type RegionObserver interface {
	RegionOpened(lineNo int)
	RegionClosed(lineNo int)
}
