package report

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which source files are left out of a job.
type Filter struct {
	patterns []string
}

// NewFilter creates a Filter from doublestar glob patterns.
// Returns an error if any pattern is malformed.
func NewFilter(patterns []string) (*Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return &Filter{patterns: patterns}, nil
}

// ShouldExclude returns true if the given name matches any exclusion pattern.
// Patterns without a slash are also matched against the base name.
func (f *Filter) ShouldExclude(name string) bool {
	if f == nil {
		return false
	}
	name = filepath.ToSlash(name)
	base := path.Base(name)

	for _, pattern := range f.patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, base); ok {
				return true
			}
		}
	}
	return false
}

// Patterns returns the configured patterns.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return f.patterns
}
