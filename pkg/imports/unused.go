package imports

import (
	"regexp"
	"unicode"

	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
)

// Known reports whether a fully-qualified type name is on the classpath.
type Known func(fqn string) bool

// Unused returns the import declarations of file that nothing in the file
// body refers to. When filter is non-nil only imports whose path it matches
// are considered.
//
// A single-type import is unused when its simple name never occurs. An
// on-demand import is unused when no occurrence resolves to a known type of
// its package and every type-like name in the file is otherwise accounted for.
// Static on-demand imports are always kept.
func Unused(file *javasrc.File, known Known, filter *regexp.Regexp) []javasrc.Import {
	var out []javasrc.Import

	var unaccounted *bool

	for _, imp := range file.Imports {
		if filter != nil && !filter.MatchString(imp.Path) {
			continue
		}

		switch {
		case imp.Wildcard && imp.Static:
			continue
		case imp.Wildcard:
			if unaccounted == nil {
				v := hasUnaccountedTypes(file, known)
				unaccounted = &v
			}

			if !*unaccounted && !usesKnownFrom(file, known, imp.Path) {
				out = append(out, imp)
			}
		default:
			if !file.Uses(imp.SimpleName()) {
				out = append(out, imp)
			}
		}
	}

	return out
}

// Remove queues deleting imps from the file behind ed.
func Remove(ed *javasrc.Edits, imps []javasrc.Import) {
	for _, imp := range imps {
		ed.DeleteLine(imp.Span)
	}
}

func usesKnownFrom(file *javasrc.File, known Known, pkg string) bool {
	if known == nil {
		return false
	}

	for name := range file.Identifiers {
		if known(pkg + "." + name) {
			return true
		}
	}

	return false
}

// hasUnaccountedTypes reports a capitalised identifier that is neither
// declared in the file, imported by name, in java.lang nor a known type of
// some on-demand import.
func hasUnaccountedTypes(file *javasrc.File, known Known) bool {
	explicit := make(map[string]bool, len(file.Imports))

	var wildcards []string

	for _, imp := range file.Imports {
		switch {
		case imp.Wildcard:
			wildcards = append(wildcards, imp.Path)
		default:
			explicit[imp.SimpleName()] = true
		}
	}

	for name := range file.Identifiers {
		if !startsUpper(name) || explicit[name] || file.Declares(name) || javasrc.IsJavaLang(name) {
			continue
		}

		if known != nil && knownInAny(known, wildcards, name) {
			continue
		}

		return true
	}

	return false
}

func knownInAny(known Known, pkgs []string, name string) bool {
	for _, pkg := range pkgs {
		if known(pkg + "." + name) {
			return true
		}
	}

	return false
}

func startsUpper(name string) bool {
	for _, c := range name {
		return unicode.IsUpper(c)
	}

	return false
}
