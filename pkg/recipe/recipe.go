// Package recipe turns declarative recipe files into ordered rewrite steps
// and runs them over Java sources.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
	"github.com/Sumatoshi-tech/annorewrite/pkg/prune"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
)

// Sentinel errors for recipe compilation.
var (
	ErrUnknownRecipe = errors.New("unknown recipe")
	ErrDuplicate     = errors.New("duplicate recipe name")
	ErrStep          = errors.New("invalid recipe step")
)

// Recipe is a compiled, immutable recipe. It is safe for concurrent use.
type Recipe struct {
	Name        string
	Description string
	KnownTypes  []string
	Steps       []Step
}

// CompileOptions adjusts compilation.
type CompileOptions struct {
	// Logger receives per-node rewrite diagnostics; nil uses slog.Default.
	Logger *slog.Logger
	// Strict forces strict matching on every convert_container step.
	Strict bool
}

// Parse validates and compiles every recipe in a YAML document.
func Parse(data []byte, parser rewrite.FragmentParser, opts CompileOptions) ([]*Recipe, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var doc Document

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	out := make([]*Recipe, 0, len(doc.Recipes))

	for _, spec := range doc.Recipes {
		r, err := Compile(spec, parser, opts)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}

// LoadFile reads and compiles a recipe file.
func LoadFile(path string, parser rewrite.FragmentParser, opts CompileOptions) ([]*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe file: %w", err)
	}

	recipes, err := Parse(data, parser, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return recipes, nil
}

// Compile turns one Spec into a Recipe.
func Compile(spec Spec, parser rewrite.FragmentParser, opts CompileOptions) (*Recipe, error) {
	r := &Recipe{
		Name:        spec.Name,
		Description: spec.Description,
		KnownTypes:  slices.Clone(spec.KnownTypes),
	}

	for i, s := range spec.Steps {
		step, err := compileStep(s, parser, opts)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: step %d: %w", spec.Name, i, err)
		}

		r.Steps = append(r.Steps, step)
	}

	return r, nil
}

func compileStep(s StepSpec, parser rewrite.FragmentParser, opts CompileOptions) (Step, error) {
	var set int

	for _, present := range []bool{
		s.ChangeType != nil, s.ConvertContainer != nil, s.RemoveUnusedImports != nil, s.PruneDeclarations != nil,
	} {
		if present {
			set++
		}
	}

	if set != 1 {
		return nil, fmt.Errorf("%w: want exactly one step kind, got %d", ErrStep, set)
	}

	switch {
	case s.ChangeType != nil:
		if s.ChangeType.From == "" || s.ChangeType.To == "" {
			return nil, fmt.Errorf("%w: change_type needs from and to", ErrStep)
		}

		return &changeTypeStep{from: s.ChangeType.From, to: s.ChangeType.To}, nil
	case s.ConvertContainer != nil:
		return compileConvert(*s.ConvertContainer, parser, opts)
	case s.RemoveUnusedImports != nil:
		step := &removeUnusedImportsStep{}

		if s.RemoveUnusedImports.Pattern != "" {
			re, err := regexp.Compile(s.RemoveUnusedImports.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: remove_unused_imports: %w", ErrStep, err)
			}

			step.filter = re
		}

		return step, nil
	default:
		rule, err := prune.New(s.PruneDeclarations.TypePackage)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStep, err)
		}

		return &pruneStep{rule: rule}, nil
	}
}

func compileConvert(spec ConvertContainerSpec, parser rewrite.FragmentParser, opts CompileOptions) (Step, error) {
	rule := rewrite.Rule{
		Name:   spec.Name,
		Output: spec.Output,
		Remove: slices.Clone(spec.Remove),
		Match:  rewrite.MatchRule{TargetType: spec.Target},
	}

	if rule.Name == "" {
		rule.Name = "convert " + annotation.SimpleName(spec.Target) + "." + spec.Output
	}

	for _, c := range spec.Require {
		if c.Literal != nil {
			rule.Match.Required = append(rule.Match.Required, rewrite.RequireLiteral(c.Name, *c.Literal))
		} else {
			rule.Match.Required = append(rule.Match.Required, rewrite.Require(c.Name))
		}
	}

	for _, v := range spec.Variants {
		rule.Variants = append(rule.Variants, rewrite.Variant{Template: v.Template, Bindings: slices.Clone(v.Bindings)})

		for _, b := range v.Bindings {
			if !slices.Contains(rule.Match.Optional, b) {
				rule.Match.Optional = append(rule.Match.Optional, b)
			}
		}
	}

	if (spec.Strict || opts.Strict) && len(spec.Variants) > 0 {
		for _, b := range spec.Variants[0].Bindings {
			rule.Match.Required = append(rule.Match.Required, rewrite.Require(b))
		}
	}

	rw, err := rewrite.New(rule, parser, rewrite.WithLogger(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStep, err)
	}

	return &convertStep{rewriter: rw}, nil
}
