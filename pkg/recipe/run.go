package recipe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/annorewrite/pkg/imports"
	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
)

// ErrBrokenOutput is returned when a step produces source that no longer parses.
var ErrBrokenOutput = errors.New("rewrite produced invalid source")

// Env carries the collaborators a run needs.
type Env struct {
	Parser  *javasrc.Parser
	Logger  *slog.Logger
	Imports imports.Mode
}

func (e *Env) known() imports.Known {
	if e.Parser == nil {
		return nil
	}

	return e.Parser.Known
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}

	return e.Logger
}

// Result is the outcome of running a recipe over one file.
type Result struct {
	Name     string
	Original []byte
	// Output is nil when the file is deleted.
	Output  []byte
	Events  []Event
	Deleted bool
	// Skipped is set when the input had syntax errors and was left alone.
	Skipped bool
}

// Changed reports whether the file differs from its original.
func (r *Result) Changed() bool {
	return r.Deleted || !bytes.Equal(r.Original, r.Output)
}

// Count returns how many events reached state.
func (r *Result) Count(state rewrite.State) int {
	var n int

	for _, ev := range r.Events {
		if ev.State == state {
			n++
		}
	}

	return n
}

// Failures returns the events whose synthesis failed.
func (r *Result) Failures() []Event {
	var out []Event

	for _, ev := range r.Events {
		if ev.State == rewrite.StateSynthesisFailed {
			out = append(out, ev)
		}
	}

	return out
}

// Run applies the recipe steps to src in order. Each step sees the re-parsed
// output of the previous one. Inputs with syntax errors are returned
// unchanged with Skipped set.
func (r *Recipe) Run(ctx context.Context, env *Env, name string, src []byte) (*Result, error) {
	if env == nil || env.Parser == nil {
		return nil, fmt.Errorf("%s: %w", name, errNoParser)
	}

	res := &Result{Name: name, Original: src, Output: src}

	file, err := env.Parser.Parse(ctx, name, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if file.HasErrors {
		env.logger().Warn("skipping file with syntax errors", "file", name, "recipe", r.Name)

		res.Skipped = true

		return res, nil
	}

	for _, step := range r.Steps {
		out, err := step.Apply(env, file)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", name, step.Name(), err)
		}

		res.Events = append(res.Events, out.Events...)

		if out.Delete {
			env.logger().Debug("file deleted", "file", name, "step", step.Name())

			res.Deleted = true
			res.Output = nil

			return res, nil
		}

		if out.Source == nil {
			continue
		}

		next, err := env.Parser.Parse(ctx, name, out.Source)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", name, step.Name(), err)
		}

		if next.HasErrors {
			return nil, fmt.Errorf("%w: %s after %s", ErrBrokenOutput, name, step.Name())
		}

		env.logger().Debug("step applied", "file", name, "step", step.Name(), "events", len(out.Events))

		file = next
		res.Output = out.Source
	}

	return res, nil
}

var errNoParser = errors.New("recipe run needs a parser")

// NewEnv builds an Env whose parser knows every type the recipes declare.
func NewEnv(mode imports.Mode, logger *slog.Logger, recipes ...*Recipe) (*Env, error) {
	var known []string

	for _, r := range recipes {
		known = append(known, r.KnownTypes...)
	}

	parser, err := javasrc.NewParser(javasrc.WithKnownTypes(known...))
	if err != nil {
		return nil, err
	}

	return &Env{Parser: parser, Logger: logger, Imports: mode}, nil
}
