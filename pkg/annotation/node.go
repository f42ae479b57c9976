// Package annotation provides an immutable syntax model for annotation-like
// call nodes: a type reference followed by an ordered list of named or
// positional arguments whose values may nest further annotations.
//
// Nodes are values in a tree, never a DAG. Every transformation returns a new
// node and leaves the receiver untouched, so a subtree may be shared by any
// number of holders.
package annotation

import "strings"

// DefaultArgumentName is the implicit name of a bare (positional) argument.
const DefaultArgumentName = "value"

// Value is an argument value. The set of implementations is closed:
// Literal, ClassLiteral, Array and *Annotation.
type Value interface {
	// Render returns the source form of the value.
	Render() string

	isValue()
}

// Literal is any value kept as opaque source text: string, number, boolean,
// enum constant or other expression.
type Literal struct {
	Text string
}

// ClassLiteral is a `T.class` expression. Type is the type name as written,
// Resolved the fully-qualified name when the parser could resolve it.
type ClassLiteral struct {
	Type     string
	Resolved string
}

// Array is an element-value array initializer: `{a, b}`.
type Array struct {
	Elems []Value
}

// Argument is one entry of an annotation's argument list.
type Argument struct {
	Value    Value
	Name     string
	Implicit bool
}

// Annotation is an annotation-like call node.
type Annotation struct {
	// Name is the type name exactly as written after '@'.
	Name string
	// Type is the fully-qualified type name. Parsers set it; it falls back to Name.
	Type string
	// Args is the ordered argument list.
	Args []Argument
	// Source is the original text of the node. It is used for rendering as long
	// as the node is unmodified and is cleared by every With* method.
	Source string
	// Marker is true for annotations written without an argument list.
	Marker bool
}

func (Literal) isValue()      {}
func (ClassLiteral) isValue() {}
func (Array) isValue()        {}
func (*Annotation) isValue()  {}

// Render implements Value.
func (l Literal) Render() string {
	return l.Text
}

// Render implements Value.
func (c ClassLiteral) Render() string {
	return c.Type + ".class"
}

// Qualified renders the class literal with its fully-qualified type name when known.
func (c ClassLiteral) Qualified() string {
	if c.Resolved != "" {
		return c.Resolved + ".class"
	}

	return c.Render()
}

// Render implements Value.
func (a Array) Render() string {
	parts := make([]string, len(a.Elems))
	for i, elem := range a.Elems {
		parts[i] = elem.Render()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// Key returns the argument name used for matching: the written name, or
// DefaultArgumentName for an implicit argument.
func (arg Argument) Key() string {
	if arg.Implicit || arg.Name == "" {
		return DefaultArgumentName
	}

	return arg.Name
}

// Render returns the argument's source form.
func (arg Argument) Render() string {
	if arg.Implicit {
		return arg.Value.Render()
	}

	return arg.Name + " = " + arg.Value.Render()
}

// Named builds an explicit `name = value` argument.
func Named(name string, value Value) Argument {
	return Argument{Name: name, Value: value}
}

// Positional builds an implicit argument.
func Positional(value Value) Argument {
	return Argument{Value: value, Implicit: true}
}

// New builds an annotation with no original source.
func New(name, fqn string, args ...Argument) *Annotation {
	if fqn == "" {
		fqn = name
	}

	return &Annotation{Name: name, Type: fqn, Args: args, Marker: len(args) == 0}
}

// TypeName returns the fully-qualified type name.
func (a *Annotation) TypeName() string {
	if a.Type == "" {
		return a.Name
	}

	return a.Type
}

// Arguments returns the argument list. Callers must not modify it.
func (a *Annotation) Arguments() []Argument {
	return a.Args
}

// WithArguments returns a copy of a carrying args.
func (a *Annotation) WithArguments(args []Argument) *Annotation {
	out := *a
	out.Args = args
	out.Source = ""
	out.Marker = false

	return &out
}

// WithName returns a copy of a written as name.
func (a *Annotation) WithName(name string) *Annotation {
	out := *a
	out.Name = name
	out.Source = ""

	return &out
}

// WithType returns a copy of a resolved to fqn.
func (a *Annotation) WithType(fqn string) *Annotation {
	out := *a
	out.Type = fqn
	out.Source = ""

	return &out
}

// Render implements Value.
func (a *Annotation) Render() string {
	if a.Source != "" {
		return a.Source
	}

	var sb strings.Builder

	sb.WriteByte('@')
	sb.WriteString(a.Name)

	if a.Marker && len(a.Args) == 0 {
		return sb.String()
	}

	sb.WriteByte('(')

	for i, arg := range a.Args {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(arg.Render())
	}

	sb.WriteByte(')')

	return sb.String()
}

// String implements fmt.Stringer.
func (a *Annotation) String() string {
	return a.Render()
}

// SimpleName returns the last dot-separated segment of a qualified name.
func SimpleName(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		return name[idx+1:]
	}

	return name
}
