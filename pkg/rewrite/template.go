package rewrite

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
)

// SlotMarker is the positional substitution slot in template sources.
const SlotMarker = "#{}"

// FragmentParser turns `name = value` source text into a structured argument.
type FragmentParser interface {
	ParseArgument(src string) (annotation.Argument, error)
}

// Template is a compiled template: its literal text split around slots.
// Templates are immutable and safe for concurrent use.
type Template struct {
	source   string
	segments []string
}

// CompileTemplate splits src once into literal segments.
func CompileTemplate(src string) (*Template, error) {
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmptyTemplate
	}

	return &Template{
		source:   src,
		segments: strings.Split(src, SlotMarker),
	}, nil
}

// Source returns the template text.
func (t *Template) Source() string {
	return t.source
}

// Slots returns the number of substitution slots.
func (t *Template) Slots() int {
	return len(t.segments) - 1
}

// Fill substitutes bindings into the slots, left to right, verbatim.
func (t *Template) Fill(bindings []string) (string, error) {
	if len(bindings) != t.Slots() {
		return "", fmt.Errorf("%w: %d slots, %d bindings", errSlotCount, t.Slots(), len(bindings))
	}

	var sb strings.Builder

	for i, seg := range t.segments {
		sb.WriteString(seg)

		if i < len(bindings) {
			sb.WriteString(bindings[i])
		}
	}

	return sb.String(), nil
}

// Synthesize fills the template and parses the result into an argument.
// Any failure is returned as a *TemplateSynthesisError.
func (t *Template) Synthesize(parser FragmentParser, bindings []string) (annotation.Argument, error) {
	text, err := t.Fill(bindings)
	if err != nil {
		return annotation.Argument{}, &TemplateSynthesisError{Template: t.source, Bindings: bindings, Err: err}
	}

	arg, err := parser.ParseArgument(text)
	if err != nil {
		return annotation.Argument{}, &TemplateSynthesisError{Template: t.source, Bindings: bindings, Err: err}
	}

	return arg, nil
}
