// Package prune deletes compilation units that depend on banned packages.
package prune

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
)

// ErrEmptyPattern is returned by New for a blank package pattern.
var ErrEmptyPattern = errors.New("prune: empty package pattern")

// Rule deletes a file when the package of any of its imports fully matches
// a pattern.
type Rule struct {
	pattern *regexp.Regexp
	source  string
}

// New compiles pattern. The pattern is anchored: it must match the whole
// package name.
func New(pattern string) (*Rule, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("prune: compile %q: %w", pattern, err)
	}

	return &Rule{pattern: re, source: pattern}, nil
}

// Pattern returns the pattern as given.
func (r *Rule) Pattern() string {
	return r.source
}

// Match returns the first import, static ones included, whose package
// matches.
func (r *Rule) Match(file *javasrc.File) (javasrc.Import, bool) {
	for _, imp := range file.Imports {
		if r.pattern.MatchString(imp.Package()) {
			return imp, true
		}
	}

	return javasrc.Import{}, false
}
