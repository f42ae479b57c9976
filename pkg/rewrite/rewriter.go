package rewrite

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
)

// State is the terminal (or last reached) state of a node rewrite.
type State int

// Node rewrite states.
const (
	StateSkipped State = iota
	StateMatched
	StateSynthesized
	StateSpliced
	StateSynthesisFailed
)

func (s State) String() string {
	switch s {
	case StateSkipped:
		return "skipped"
	case StateMatched:
		return "matched"
	case StateSynthesized:
		return "synthesized"
	case StateSpliced:
		return "spliced"
	case StateSynthesisFailed:
		return "synthesis-failed"
	default:
		return "unknown"
	}
}

// Variant is one template alternative. It applies when every binding names an
// argument present on the node; slot i receives the rendered value of Bindings[i].
type Variant struct {
	Template string
	Bindings []string
}

// Rule is the immutable configuration of one rewrite.
type Rule struct {
	Name  string
	Match MatchRule
	// Output is the name of the synthesized argument; its presence marks a
	// node as already rewritten.
	Output string
	// Remove lists the legacy arguments dropped on splice.
	Remove []string
	// Variants are tried in order; the first applicable one wins.
	Variants []Variant
}

// References registers type names used by synthesized code and returns the
// name to write for each. Implementations decide between fully-qualified
// names and imports.
type References interface {
	Reference(fqn string) string
}

// Result describes what happened to a single node.
type Result struct {
	Err     error
	Before  *annotation.Annotation
	After   *annotation.Annotation
	Rule    string
	State   State
	Reason  SkipReason
	Variant int
}

// Changed reports whether the node was replaced.
func (r Result) Changed() bool {
	return r.State == StateSpliced
}

type compiledVariant struct {
	template *Template
	bindings []string
}

// Rewriter applies one Rule. It holds no per-node state and is safe for
// concurrent use across different trees.
type Rewriter struct {
	parser   FragmentParser
	logger   *slog.Logger
	rule     Rule
	variants []compiledVariant
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger used for per-node diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rewriter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New validates rule and compiles its templates.
func New(rule Rule, parser FragmentParser, opts ...Option) (*Rewriter, error) {
	if parser == nil {
		return nil, fmt.Errorf("%w: %s: no fragment parser", ErrInvalidRule, rule.Name)
	}

	if rule.Match.TargetType == "" {
		return nil, fmt.Errorf("%w: %s: empty target type", ErrInvalidRule, rule.Name)
	}

	if rule.Output == "" {
		return nil, fmt.Errorf("%w: %s: empty output argument", ErrInvalidRule, rule.Name)
	}

	if len(rule.Variants) == 0 {
		return nil, fmt.Errorf("%w: %s: no template variants", ErrInvalidRule, rule.Name)
	}

	rw := &Rewriter{
		parser: parser,
		logger: slog.Default(),
		rule:   rule,
	}

	for i, v := range rule.Variants {
		tmpl, err := CompileTemplate(v.Template)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: variant %d: %w", ErrInvalidRule, rule.Name, i, err)
		}

		if tmpl.Slots() != len(v.Bindings) {
			return nil, fmt.Errorf("%w: %s: variant %d: %d slots, %d bindings",
				ErrInvalidRule, rule.Name, i, tmpl.Slots(), len(v.Bindings))
		}

		rw.variants = append(rw.variants, compiledVariant{template: tmpl, bindings: v.Bindings})
	}

	for _, opt := range opts {
		opt(rw)
	}

	return rw, nil
}

// Rule returns the rule the rewriter was built from.
func (r *Rewriter) Rule() Rule {
	return r.rule
}

// Apply evaluates node. The returned Result always carries a usable After:
// the rewritten node on success, node itself otherwise.
func (r *Rewriter) Apply(node *annotation.Annotation, refs References) Result {
	res := Result{Rule: r.rule.Name, Before: node, After: node, State: StateSkipped, Variant: -1}

	if node.TypeName() != r.rule.Match.TargetType {
		res.Reason = ReasonWrongType

		return res
	}

	if AlreadyApplied(node, r.rule.Output) {
		res.Reason = ReasonAlreadyApplied

		return res
	}

	if reason := Explain(node, r.rule.Match); reason != ReasonNone {
		res.Reason = reason

		return res
	}

	res.State = StateMatched
	table := NewTable(node.Args)

	if dups := table.Duplicates(); len(dups) > 0 {
		r.logger.Debug("ambiguous arguments, first occurrence wins",
			"rule", r.rule.Name, "annotation", node.Name, "names", dups)
	}

	idx, bindings, ok := r.selectVariant(table)
	if !ok {
		res.State = StateSkipped
		res.Reason = ReasonMissingArgument

		return res
	}

	res.Variant = idx

	synthesized, err := r.variants[idx].template.Synthesize(r.parser, bindings)
	if err == nil && !strings.EqualFold(synthesized.Key(), r.rule.Output) {
		err = &TemplateSynthesisError{
			Template: r.variants[idx].template.Source(),
			Bindings: bindings,
			Err:      fmt.Errorf("%w: %q, want %q", errOutputName, synthesized.Key(), r.rule.Output),
		}
	}

	if err != nil {
		res.State = StateSynthesisFailed
		res.Err = err

		r.logger.Warn("annotation rewrite failed, node left unchanged",
			"rule", r.rule.Name, "annotation", node.Name, "error", err)

		return res
	}

	res.State = StateSynthesized

	if refs != nil {
		synthesized.Value = annotation.RenameTypes(synthesized.Value, refs.Reference)
	}

	args := table.WithoutEntries(r.rule.Remove...).Prepend(synthesized).Args()
	res.After = node.WithArguments(args)
	res.State = StateSpliced

	r.logger.Debug("annotation rewritten", "rule", r.rule.Name, "annotation", node.Name, "variant", idx)

	return res
}

// Walk applies the rule to root and every nested annotation, bottom-up.
// A failure on one node never affects its siblings or ancestors. The returned
// results cover every node whose type matched the rule's target.
func (r *Rewriter) Walk(root *annotation.Annotation, refs References) (*annotation.Annotation, []Result) {
	var results []Result

	out := annotation.Transform(root, func(node *annotation.Annotation) *annotation.Annotation {
		res := r.Apply(node, refs)
		if res.Reason != ReasonWrongType {
			results = append(results, res)
		}

		return res.After
	})

	return out, results
}

func (r *Rewriter) selectVariant(table Table) (int, []string, bool) {
	for i, v := range r.variants {
		values := make([]string, 0, len(v.bindings))

		for _, name := range v.bindings {
			arg, ok := table.Find(name)
			if !ok {
				break
			}

			values = append(values, renderBinding(arg.Value))
		}

		if len(values) == len(v.bindings) {
			return i, values, true
		}
	}

	return 0, nil, false
}

// renderBinding renders a bound value for substitution; type references are
// written fully-qualified.
func renderBinding(value annotation.Value) string {
	if cl, ok := value.(annotation.ClassLiteral); ok {
		return cl.Qualified()
	}

	return value.Render()
}

// IsSynthesisFailure reports whether err came from template synthesis.
func IsSynthesisFailure(err error) bool {
	return errors.Is(err, ErrTemplateSynthesis)
}
