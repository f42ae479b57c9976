package runner

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Patterns matches slash-separated relative paths against include and
// exclude globs. `*` and `?` stay within one segment; `**` spans segments and
// `**/` also matches zero directories.
type Patterns struct {
	include []string
	exclude []string
}

// NewPatterns validates include and exclude globs. With no include globs every
// path is included.
func NewPatterns(include, exclude []string) (*Patterns, error) {
	for _, g := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("invalid glob %q: %w", g, doublestar.ErrBadPattern)
		}
	}

	return &Patterns{include: include, exclude: exclude}, nil
}

// Included reports whether the file at rel is selected.
func (p *Patterns) Included(rel string) bool {
	if p.Excluded(rel) {
		return false
	}

	if len(p.include) == 0 {
		return true
	}

	return matchAny(p.include, rel)
}

// Excluded reports whether rel, a file or a directory ending in "/", is excluded.
func (p *Patterns) Excluded(rel string) bool {
	if dir, ok := strings.CutSuffix(rel, "/"); ok && matchAny(p.exclude, dir) {
		return true
	}

	return matchAny(p.exclude, rel)
}

func matchAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}

	return false
}
