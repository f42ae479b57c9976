package javasrc

import (
	"bytes"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
)

// Span is a half-open byte range [Start, End) into a file's source.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Import is one import declaration.
type Import struct {
	// Path is the imported name without the trailing ".*".
	Path     string
	Static   bool
	Wildcard bool
	// Span covers the declaration including its terminating semicolon.
	Span Span
}

// Package returns the package the import draws from: the leading segments
// of Path that start with a lower-case letter. Type and member segments are
// dropped, so "java.util.Map.Entry" and the static
// "java.util.Collections.emptyList" both yield "java.util". The last segment
// of a single-type or static import never counts as package.
func (imp Import) Package() string {
	segments := strings.Split(imp.Path, ".")
	if !imp.Wildcard {
		segments = segments[:len(segments)-1]
	}

	n := 0
	for n < len(segments) && isPackageSegment(segments[n]) {
		n++
	}

	return strings.Join(segments[:n], ".")
}

// SimpleName returns the last segment of a single-type import, "" for
// on-demand imports.
func (imp Import) SimpleName() string {
	if imp.Wildcard {
		return ""
	}

	return annotation.SimpleName(imp.Path)
}

// String renders the import declaration.
func (imp Import) String() string {
	var sb strings.Builder

	sb.WriteString("import ")

	if imp.Static {
		sb.WriteString("static ")
	}

	sb.WriteString(imp.Path)

	if imp.Wildcard {
		sb.WriteString(".*")
	}

	sb.WriteByte(';')

	return sb.String()
}

// Located is an outermost annotation and the bytes it occupies.
type Located struct {
	Node *annotation.Annotation
	Span Span
}

// NodeSpan locates an annotation and its type name.
type NodeSpan struct {
	Span Span
	Name Span
}

// Declaration is a type declaration (class, interface, enum, record or
// annotation type).
type Declaration struct {
	Kind string
	Name string
	// Enclosing is the dotted path of the types declared around this one,
	// empty for top-level declarations.
	Enclosing string
	Span      Span
	TopLevel  bool
}

// Path returns the declaration's name qualified by its enclosing types.
func (d Declaration) Path() string {
	if d.Enclosing == "" {
		return d.Name
	}

	return d.Enclosing + "." + d.Name
}

// File is the parsed view of one Java compilation unit.
type File struct {
	Name    string
	Source  []byte
	Package string
	// PackageSpan covers the package declaration; zero when absent.
	PackageSpan  Span
	Imports      []Import
	Annotations  []Located
	Declarations []Declaration
	// Nodes maps every parsed annotation, nested ones included, to its spans.
	Nodes map[*annotation.Annotation]NodeSpan
	// Identifiers counts identifier and type identifier occurrences outside
	// package and import declarations.
	Identifiers map[string]int
	HasErrors   bool
}

// Uses reports whether name occurs as an identifier in the file body.
func (f *File) Uses(name string) bool {
	return f.Identifiers[name] > 0
}

// Declares reports whether the file declares a type called name.
func (f *File) Declares(name string) bool {
	for _, decl := range f.Declarations {
		if decl.Name == name {
			return true
		}
	}

	return false
}

// ImportsEnd returns the offset right after the last import declaration, or
// after the package declaration when there are no imports, or 0.
func (f *File) ImportsEnd() int {
	if n := len(f.Imports); n > 0 {
		return f.Imports[n-1].Span.End
	}

	return f.PackageSpan.End
}

// Line returns the 1-based line number of offset.
func (f *File) Line(offset int) int {
	if offset > len(f.Source) {
		offset = len(f.Source)
	}

	return bytes.Count(f.Source[:offset], []byte{'\n'}) + 1
}
