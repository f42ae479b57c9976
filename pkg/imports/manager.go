// Package imports decides how synthesized type references are written into a
// Java file and finds import declarations the file no longer needs.
package imports

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
)

// Mode selects how references are written.
type Mode string

// Reference modes.
const (
	// ModeQualify writes every reference fully-qualified and never adds imports.
	ModeQualify Mode = "qualify"
	// ModeImport adds single-type imports and writes simple names unless the
	// simple name is already taken by another type.
	ModeImport Mode = "import"
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown import mode")

// ParseMode parses a mode name; the empty string selects ModeQualify.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeQualify:
		return ModeQualify, nil
	case ModeImport:
		return ModeImport, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Manager tracks the names visible in one file. It is not safe for concurrent
// use; create one per file.
type Manager struct {
	file  *javasrc.File
	taken map[string]string
	mode  Mode
	added []string
}

// NewManager returns a manager for file.
func NewManager(file *javasrc.File, mode Mode) *Manager {
	m := &Manager{
		file:  file,
		mode:  mode,
		taken: make(map[string]string, len(file.Imports)),
	}

	for _, imp := range file.Imports {
		if imp.Static || imp.Wildcard {
			continue
		}

		if _, ok := m.taken[imp.SimpleName()]; !ok {
			m.taken[imp.SimpleName()] = imp.Path
		}
	}

	return m
}

// Reference returns the name to write for fqn, registering an import when the
// mode allows it.
func (m *Manager) Reference(fqn string) string {
	if m.mode != ModeImport {
		return fqn
	}

	idx := strings.LastIndexByte(fqn, '.')
	if idx < 0 {
		return fqn
	}

	pkg, simple := fqn[:idx], fqn[idx+1:]

	if owner, ok := m.taken[simple]; ok {
		if owner == fqn {
			return simple
		}

		return fqn
	}

	if m.file.Declares(simple) {
		return fqn
	}

	if pkg == "java.lang" || pkg == m.file.Package || m.hasWildcard(pkg) {
		m.taken[simple] = fqn

		return simple
	}

	m.taken[simple] = fqn
	m.added = append(m.added, fqn)

	return simple
}

// Added returns the imports registered so far, sorted.
func (m *Manager) Added() []string {
	out := slices.Clone(m.added)
	slices.Sort(out)

	return out
}

// Apply queues the added import declarations on ed.
func (m *Manager) Apply(ed *javasrc.Edits) {
	added := m.Added()
	if len(added) == 0 {
		return
	}

	var sb strings.Builder

	for _, fqn := range added {
		sb.WriteString((javasrc.Import{Path: fqn}).String())
		sb.WriteByte('\n')
	}

	block := sb.String()

	switch {
	case len(m.file.Imports) > 0:
		ed.Insert(m.file.ImportsEnd(), "\n"+strings.TrimSuffix(block, "\n"))
	case m.file.PackageSpan.End > 0:
		ed.Insert(m.file.PackageSpan.End, "\n\n"+strings.TrimSuffix(block, "\n"))
	default:
		ed.Insert(0, block+"\n")
	}
}

func (m *Manager) hasWildcard(pkg string) bool {
	for _, imp := range m.file.Imports {
		if imp.Wildcard && !imp.Static && imp.Path == pkg {
			return true
		}
	}

	return false
}

var _ rewrite.References = (*Manager)(nil)
