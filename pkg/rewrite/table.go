package rewrite

import (
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
)

// Table is a name-indexed, order-preserving view over an argument list.
// Every operation returns a new Table; the underlying list is never written.
type Table struct {
	args []annotation.Argument
}

// NewTable wraps args. The slice is not copied and must not be modified afterwards.
func NewTable(args []annotation.Argument) Table {
	return Table{args: args}
}

// Find returns the first argument whose name equals name case-insensitively.
func (t Table) Find(name string) (annotation.Argument, bool) {
	for _, arg := range t.args {
		if strings.EqualFold(arg.Key(), name) {
			return arg, true
		}
	}

	return annotation.Argument{}, false
}

// WithoutEntries drops every argument whose name matches one of names.
func (t Table) WithoutEntries(names ...string) Table {
	out := make([]annotation.Argument, 0, len(t.args))

	for _, arg := range t.args {
		if !containsFold(names, arg.Key()) {
			out = append(out, arg)
		}
	}

	return Table{args: out}
}

// Prepend returns a table whose first entry is arg.
func (t Table) Prepend(arg annotation.Argument) Table {
	out := make([]annotation.Argument, 0, len(t.args)+1)
	out = append(out, arg)
	out = append(out, t.args...)

	return Table{args: out}
}

// Args returns a copy of the argument list.
func (t Table) Args() []annotation.Argument {
	return slices.Clone(t.args)
}

// Len returns the number of arguments.
func (t Table) Len() int {
	return len(t.args)
}

// Duplicates returns names (lower-cased) that occur more than once.
func (t Table) Duplicates() []string {
	seen := make(map[string]int, len(t.args))

	var dups []string

	for _, arg := range t.args {
		key := strings.ToLower(arg.Key())
		seen[key]++

		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}

	return dups
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}

	return false
}
