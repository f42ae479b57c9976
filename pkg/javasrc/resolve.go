package javasrc

import (
	"strings"
	"unicode"
)

var javaLang = map[string]bool{
	"Boolean": true, "Byte": true, "Character": true, "Class": true, "Deprecated": true,
	"Double": true, "Enum": true, "Exception": true, "Float": true, "FunctionalInterface": true,
	"Integer": true, "Iterable": true, "Long": true, "Number": true, "Object": true,
	"Override": true, "Record": true, "RuntimeException": true, "SafeVarargs": true,
	"Short": true, "String": true, "SuppressWarnings": true, "Throwable": true, "Void": true,
}

var primitives = map[string]bool{
	"boolean": true, "byte": true, "char": true, "double": true,
	"float": true, "int": true, "long": true, "short": true, "void": true,
}

// Resolver maps type names as written in a file to fully-qualified names
// using only what the file itself declares plus a set of known types.
//
// Lookup order: qualified names as written, member types declared in the
// file, single-type imports, top-level types declared in the file, known
// types reachable through on-demand imports, java.lang, then the file's own
// package. The last step only applies when the file has no on-demand imports,
// since otherwise the type may come from any of them.
type Resolver struct {
	explicit  map[string]string
	declared  map[string]bool
	nested    map[string]string
	known     map[string]bool
	pkg       string
	wildcards []string
}

// NewResolver builds a resolver for file. known lists fully-qualified type
// names available on the (virtual) classpath.
func NewResolver(file *File, known map[string]bool) *Resolver {
	r := &Resolver{
		explicit: make(map[string]string, len(file.Imports)),
		declared: make(map[string]bool, len(file.Declarations)),
		nested:   make(map[string]string),
		known:    known,
		pkg:      file.Package,
	}

	for _, imp := range file.Imports {
		switch {
		case imp.Static:
			continue
		case imp.Wildcard:
			r.wildcards = append(r.wildcards, imp.Path)
		default:
			if _, dup := r.explicit[imp.SimpleName()]; !dup {
				r.explicit[imp.SimpleName()] = imp.Path
			}
		}
	}

	for _, decl := range file.Declarations {
		if decl.TopLevel {
			r.declared[decl.Name] = true

			continue
		}

		// Two member types sharing a simple name make it ambiguous.
		if _, dup := r.nested[decl.Name]; dup {
			r.nested[decl.Name] = ""

			continue
		}

		r.nested[decl.Name] = decl.Path()
	}

	return r
}

// Resolve returns the fully-qualified form of name, or name as written when
// it cannot be determined.
func (r *Resolver) Resolve(name string) string {
	if fqn, ok := r.Lookup(name); ok {
		return fqn
	}

	return compact(name)
}

// Lookup returns the fully-qualified form of name and whether the file
// determines it unambiguously.
func (r *Resolver) Lookup(name string) (string, bool) {
	name = compact(name)
	if name == "" {
		return "", false
	}

	head, rest, dotted := strings.Cut(name, ".")
	if dotted {
		if isPackageSegment(head) {
			return name, true
		}

		fqn, ok := r.Lookup(head)
		if !ok {
			return "", false
		}

		return fqn + "." + rest, true
	}

	if path, ok := r.nested[name]; ok {
		if path == "" {
			return "", false
		}

		return r.qualify(path), true
	}

	if fqn, ok := r.explicit[name]; ok {
		return fqn, true
	}

	if r.declared[name] {
		return r.qualify(name), true
	}

	for _, pkg := range r.wildcards {
		if candidate := pkg + "." + name; r.known[candidate] {
			return candidate, true
		}
	}

	if javaLang[name] {
		return "java.lang." + name, true
	}

	if primitives[name] {
		return name, true
	}

	if len(r.wildcards) > 0 {
		return "", false
	}

	return r.qualify(name), true
}

// IsJavaLang reports whether name is a java.lang type usable without import.
func IsJavaLang(name string) bool {
	return javaLang[name]
}

func (r *Resolver) qualify(name string) string {
	if r.pkg == "" {
		return name
	}

	return r.pkg + "." + name
}

func isPackageSegment(segment string) bool {
	for _, c := range segment {
		return unicode.IsLower(c)
	}

	return false
}

func compact(name string) string {
	if !strings.ContainsFunc(name, unicode.IsSpace) {
		return name
	}

	return strings.Join(strings.Fields(name), "")
}
