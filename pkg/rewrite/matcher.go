// Package rewrite implements the structural annotation-rewrite engine: a node
// matcher, an order-preserving argument table, a template synthesizer and the
// per-node orchestrator that splices synthesized arguments into a node.
package rewrite

import (
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
)

// Call is the narrow view of a node the engine needs: a fully-qualified type
// name and an ordered argument list.
type Call interface {
	TypeName() string
	Arguments() []annotation.Argument
}

// Constraint requires an argument by name and optionally pins its rendered value.
type Constraint struct {
	Name       string
	Literal    string
	HasLiteral bool
}

// Require returns a presence-only constraint.
func Require(name string) Constraint {
	return Constraint{Name: name}
}

// RequireLiteral returns a constraint on both presence and rendered value.
func RequireLiteral(name, literal string) Constraint {
	return Constraint{Name: name, Literal: literal, HasLiteral: true}
}

// MatchRule describes a legacy shape.
type MatchRule struct {
	TargetType string
	Required   []Constraint
	// Optional names only influence which template variant applies.
	Optional []string
}

// SkipReason explains why a node was not rewritten.
type SkipReason int

// Skip reasons.
const (
	ReasonNone SkipReason = iota
	ReasonAlreadyApplied
	ReasonWrongType
	ReasonMissingArgument
	ReasonLiteralMismatch
)

func (r SkipReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAlreadyApplied:
		return "already-applied"
	case ReasonWrongType:
		return "wrong-type"
	case ReasonMissingArgument:
		return "missing-argument"
	case ReasonLiteralMismatch:
		return "literal-mismatch"
	default:
		return "unknown"
	}
}

// Matches reports whether node has the legacy shape described by rule.
func Matches(node Call, rule MatchRule) bool {
	return Explain(node, rule) == ReasonNone
}

// Explain returns ReasonNone for a matching node, otherwise the first failed check.
func Explain(node Call, rule MatchRule) SkipReason {
	if node.TypeName() != rule.TargetType {
		return ReasonWrongType
	}

	table := NewTable(node.Arguments())

	for _, c := range rule.Required {
		arg, ok := table.Find(c.Name)
		if !ok {
			return ReasonMissingArgument
		}

		if c.HasLiteral && arg.Value.Render() != c.Literal {
			return ReasonLiteralMismatch
		}
	}

	return ReasonNone
}

// AlreadyApplied reports whether node already carries an argument named output.
func AlreadyApplied(node Call, output string) bool {
	for _, arg := range node.Arguments() {
		if strings.EqualFold(arg.Key(), output) {
			return true
		}
	}

	return false
}
