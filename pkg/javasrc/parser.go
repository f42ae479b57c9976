// Package javasrc parses Java compilation units with tree-sitter into the
// pieces the rewrite engine works on: package, imports, outermost annotations
// with their byte spans, type declarations and identifier usage. It also
// parses template fragments and applies span-based edits.
package javasrc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/alexaandru/go-sitter-forest/java"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
	"github.com/Sumatoshi-tech/annorewrite/pkg/safeconv"
)

// Tree-sitter node types.
const (
	nodeProgram            = "program"
	nodePackage            = "package_declaration"
	nodeImport             = "import_declaration"
	nodeAnnotation         = "annotation"
	nodeMarkerAnnotation   = "marker_annotation"
	nodeElementValuePair   = "element_value_pair"
	nodeArrayInitializer   = "element_value_array_initializer"
	nodeClassLiteral       = "class_literal"
	nodeIdentifier         = "identifier"
	nodeTypeIdentifier     = "type_identifier"
	nodeScopedTypeIdent    = "scoped_type_identifier"
	nodeAsterisk           = "asterisk"
	nodeLineComment        = "line_comment"
	nodeBlockComment       = "block_comment"
	nodeError              = "ERROR"
	tokenStatic            = "static"
	fragmentName           = "<fragment>"
	fragmentPrefix         = "@Fragment("
	fragmentSuffix         = ")\nclass Fragment {}\n"
	identifierMapCapacity  = 64
	annotationListCapacity = 8
)

var declarationKinds = map[string]string{
	"class_declaration":           "class",
	"interface_declaration":       "interface",
	"enum_declaration":            "enum",
	"record_declaration":          "record",
	"annotation_type_declaration": "@interface",
}

// Parser parses Java source. It is safe for concurrent use.
type Parser struct {
	language *sitter.Language
	known    map[string]bool
	pool     sync.Pool
}

// Option configures a Parser.
type Option func(*Parser)

// WithKnownTypes registers fully-qualified type names that on-demand imports
// may resolve to.
func WithKnownTypes(types ...string) Option {
	return func(p *Parser) {
		for _, t := range types {
			if t != "" {
				p.known[t] = true
			}
		}
	}
}

// NewParser loads the Java grammar and returns a parser.
func NewParser(opts ...Option) (*Parser, error) {
	lang := loadLanguage()
	if lang == nil {
		return nil, ErrLanguageNotAvailable
	}

	p := &Parser{
		language: lang,
		known:    make(map[string]bool),
	}

	p.pool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(lang)

			return tsParser
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func loadLanguage() (lang *sitter.Language) {
	defer func() {
		_ = recover() //nolint:errcheck // recover() returns any, not error
	}()

	return sitter.NewLanguage(java.GetLanguage())
}

// Known reports whether fqn was registered as a known type.
func (p *Parser) Known(fqn string) bool {
	return p.known[fqn]
}

// Parse parses src. Syntax errors do not fail the parse; they are reported
// through File.HasErrors.
func (p *Parser) Parse(ctx context.Context, name string, src []byte) (*File, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("java parser: %s: %w", name, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	file := &File{
		Name:        name,
		Source:      src,
		Identifiers: make(map[string]int, identifierMapCapacity),
	}

	col := &collector{src: src, file: file, annotations: make([]sitter.Node, 0, annotationListCapacity)}
	col.walk(root, false, false)

	file.HasErrors = hasSyntaxError(root, true)

	file.Nodes = make(map[*annotation.Annotation]NodeSpan, len(col.annotations))

	conv := &converter{src: src, resolver: NewResolver(file, p.known), nodes: file.Nodes}
	for _, n := range col.annotations {
		file.Annotations = append(file.Annotations, Located{Node: conv.annotation(n), Span: spanOf(n)})
	}

	return file, nil
}

// ParseArgument parses `name = value` (or a bare value) as a single
// annotation argument. Type names inside the fragment are kept as written.
func (p *Parser) ParseArgument(src string) (annotation.Argument, error) {
	file, err := p.Parse(context.Background(), fragmentName, []byte(fragmentPrefix+src+fragmentSuffix))
	if err != nil {
		return annotation.Argument{}, err
	}

	if file.HasErrors {
		return annotation.Argument{}, fmt.Errorf("%w: %w: %q", ErrFragment, ErrSyntax, src)
	}

	if len(file.Annotations) != 1 || len(file.Annotations[0].Node.Args) != 1 {
		return annotation.Argument{}, fmt.Errorf("%w: %q", ErrFragment, src)
	}

	return file.Annotations[0].Node.Args[0], nil
}

type collector struct {
	file        *File
	src         []byte
	annotations []sitter.Node
	enclosing   []string
}

func (c *collector) walk(n sitter.Node, topLevel, inAnnotation bool) {
	switch n.Type() {
	case nodePackage:
		c.file.PackageSpan = spanOf(n)
		c.file.Package = compact(c.text(lastNamedChild(n)))

		return
	case nodeImport:
		c.file.Imports = append(c.file.Imports, c.importOf(n))

		return
	case nodeAnnotation, nodeMarkerAnnotation:
		if !inAnnotation {
			c.annotations = append(c.annotations, n)
		}

		inAnnotation = true
	case nodeIdentifier, nodeTypeIdentifier:
		c.file.Identifiers[c.text(n)]++

		return
	}

	kind, declares := declarationKinds[n.Type()]
	if declares {
		decl := Declaration{
			Kind:      kind,
			Name:      c.text(n.ChildByFieldName("name")),
			Enclosing: strings.Join(c.enclosing, "."),
			Span:      spanOf(n),
			TopLevel:  topLevel,
		}
		c.file.Declarations = append(c.file.Declarations, decl)

		c.enclosing = append(c.enclosing, decl.Name)
		defer func() { c.enclosing = c.enclosing[:len(c.enclosing)-1] }()
	}

	childTop := n.Type() == nodeProgram

	for idx := range n.NamedChildCount() {
		c.walk(n.NamedChild(idx), childTop, inAnnotation)
	}
}

func (c *collector) importOf(n sitter.Node) Import {
	imp := Import{Span: spanOf(n)}

	for idx := range n.ChildCount() {
		child := n.Child(idx)

		switch child.Type() {
		case tokenStatic:
			imp.Static = true
		case nodeAsterisk:
			imp.Wildcard = true
		case nodeIdentifier, "scoped_identifier":
			imp.Path = compact(c.text(child))
		}
	}

	return imp
}

func (c *collector) text(n sitter.Node) string {
	return nodeText(c.src, n)
}

type converter struct {
	resolver *Resolver
	nodes    map[*annotation.Annotation]NodeSpan
	src      []byte
}

func (c *converter) annotation(n sitter.Node) *annotation.Annotation {
	nameNode := n.ChildByFieldName("name")
	name := compact(c.text(nameNode))

	ann := &annotation.Annotation{
		Name:   name,
		Type:   c.resolver.Resolve(name),
		Source: c.text(n),
		Marker: n.Type() == nodeMarkerAnnotation,
	}

	c.nodes[ann] = NodeSpan{Span: spanOf(n), Name: spanOf(nameNode)}

	args := n.ChildByFieldName("arguments")
	if args.IsNull() {
		return ann
	}

	for idx := range args.NamedChildCount() {
		child := args.NamedChild(idx)

		switch child.Type() {
		case nodeLineComment, nodeBlockComment:
			continue
		case nodeElementValuePair:
			key := c.text(child.ChildByFieldName("key"))
			ann.Args = append(ann.Args, annotation.Named(key, c.value(child.ChildByFieldName("value"))))
		default:
			ann.Args = append(ann.Args, annotation.Positional(c.value(child)))
		}
	}

	return ann
}

func (c *converter) value(n sitter.Node) annotation.Value {
	switch n.Type() {
	case nodeAnnotation, nodeMarkerAnnotation:
		return c.annotation(n)
	case nodeArrayInitializer:
		arr := annotation.Array{}

		for idx := range n.NamedChildCount() {
			child := n.NamedChild(idx)
			if isComment(child) {
				continue
			}

			arr.Elems = append(arr.Elems, c.value(child))
		}

		return arr
	case nodeClassLiteral:
		return c.classLiteral(n)
	default:
		return annotation.Literal{Text: c.text(n)}
	}
}

func (c *converter) classLiteral(n sitter.Node) annotation.Value {
	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if isComment(child) {
			continue
		}

		typ := compact(c.text(child))
		lit := annotation.ClassLiteral{Type: typ}

		switch child.Type() {
		case nodeTypeIdentifier, nodeScopedTypeIdent:
			if fqn, ok := c.resolver.Lookup(typ); ok {
				lit.Resolved = fqn
			}
		}

		return lit
	}

	return annotation.Literal{Text: c.text(n)}
}

func (c *converter) text(n sitter.Node) string {
	return nodeText(c.src, n)
}

func nodeText(src []byte, n sitter.Node) string {
	if n.IsNull() {
		return ""
	}

	return string(src[safeconv.MustUintToInt(n.StartByte()):safeconv.MustUintToInt(n.EndByte())])
}

func isComment(n sitter.Node) bool {
	return n.Type() == nodeLineComment || n.Type() == nodeBlockComment
}

func lastNamedChild(n sitter.Node) sitter.Node {
	var last sitter.Node

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if !isComment(child) {
			last = child
		}
	}

	return last
}

func spanOf(n sitter.Node) Span {
	return Span{Start: safeconv.MustUintToInt(n.StartByte()), End: safeconv.MustUintToInt(n.EndByte())}
}

// hasSyntaxError reports ERROR nodes and zero-width leaves, which is how
// tree-sitter represents tokens it had to invent.
func hasSyntaxError(n sitter.Node, root bool) bool {
	if n.Type() == nodeError {
		return true
	}

	count := n.ChildCount()
	if count == 0 {
		return !root && n.StartByte() == n.EndByte()
	}

	for idx := range count {
		if hasSyntaxError(n.Child(idx), false) {
			return true
		}
	}

	return false
}
