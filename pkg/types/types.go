// Package types contains shared data structures used across the application.
package types

import (
	"regexp"
)

// Pattern is one of the two region delimiters
type Pattern struct {
	Name     string
	Regex    string
	compiled *regexp.Regexp
}

// CompilePattern compiles expr into a named pattern. When ignoreCase is set
// the expression is matched case-insensitively.
func CompilePattern(name, expr string, ignoreCase bool) (*Pattern, error) {
	source := expr
	if ignoreCase {
		source = "(?i)" + expr
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &Error{Kind: KindPattern, Subject: name, Err: err}
	}
	return &Pattern{Name: name, Regex: expr, compiled: re}, nil
}

// CompiledRegex returns the compiled regular expression
func (p *Pattern) CompiledRegex() *regexp.Regexp {
	return p.compiled
}

// MatchString reports whether the line contains a match of the pattern.
func (p *Pattern) MatchString(line string) bool {
	if p == nil || p.compiled == nil {
		return false
	}
	return p.compiled.MatchString(line)
}

// String returns the source expression
func (p *Pattern) String() string {
	return p.Regex
}
