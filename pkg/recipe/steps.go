package recipe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/annotation"
	"github.com/Sumatoshi-tech/annorewrite/pkg/imports"
	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
	"github.com/Sumatoshi-tech/annorewrite/pkg/prune"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
)

// Step is one transformation of a parsed file.
type Step interface {
	Name() string
	Apply(env *Env, file *javasrc.File) (Outcome, error)
}

// Event records one observed or applied change.
type Event struct {
	Err     error
	Step    string
	Rule    string
	Before  string
	After   string
	Line    int
	State   rewrite.State
	Reason  rewrite.SkipReason
	Changed bool
}

// Outcome is the effect of one step on one file.
type Outcome struct {
	// Source is the new text; nil when the step changed nothing.
	Source []byte
	Events []Event
	Delete bool
}

func finish(ed *javasrc.Edits, events []Event) (Outcome, error) {
	if ed.Len() == 0 {
		return Outcome{Events: events}, nil
	}

	out, err := ed.Bytes()
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Source: out, Events: events}, nil
}

func lineOf(file *javasrc.File, node *annotation.Annotation, fallback javasrc.Span) int {
	if loc, ok := file.Nodes[node]; ok {
		return file.Line(loc.Span.Start)
	}

	return file.Line(fallback.Start)
}

type changeTypeStep struct {
	from string
	to   string
}

func (s *changeTypeStep) Name() string {
	return fmt.Sprintf("change_type(%s -> %s)", s.from, s.to)
}

func (s *changeTypeStep) Apply(_ *Env, file *javasrc.File) (Outcome, error) {
	ed := javasrc.NewEdits(file.Source)

	var events []Event

	targetImported, explicit := false, false

	for _, imp := range file.Imports {
		if !imp.Static && !imp.Wildcard && imp.Path == s.to {
			targetImported = true
		}
	}

	for _, imp := range file.Imports {
		if imp.Static || imp.Wildcard || imp.Path != s.from {
			continue
		}

		explicit = true

		if targetImported {
			ed.DeleteLine(imp.Span)
		} else {
			ed.Replace(imp.Span.Start, imp.Span.End, javasrc.Import{Path: s.to}.String())
			targetImported = true
		}

		events = append(events, Event{
			Step: s.Name(), Line: file.Line(imp.Span.Start), Before: imp.String(),
			After: javasrc.Import{Path: s.to}.String(), Changed: true, State: rewrite.StateSpliced,
		})
	}

	rename := func(n *annotation.Annotation) string {
		if strings.Contains(n.Name, ".") || !explicit {
			return s.to
		}

		return annotation.SimpleName(s.to)
	}

	for _, loc := range file.Annotations {
		annotation.Inspect(loc.Node, func(n *annotation.Annotation) bool {
			if n.TypeName() == s.from && rename(n) != n.Name {
				events = append(events, Event{
					Step: s.Name(), Line: lineOf(file, n, loc.Span), Before: "@" + n.Name,
					After: "@" + rename(n), Changed: true, State: rewrite.StateSpliced,
				})
			}

			return true
		})

		updated := annotation.Transform(loc.Node, func(n *annotation.Annotation) *annotation.Annotation {
			if n.TypeName() != s.from {
				return n
			}

			if name := rename(n); name != n.Name {
				return n.WithName(name).WithType(s.to)
			}

			return n
		})

		file.Reprint(ed, loc.Node, updated)
	}

	return finish(ed, events)
}

type convertStep struct {
	rewriter *rewrite.Rewriter
}

func (s *convertStep) Name() string {
	return s.rewriter.Rule().Name
}

func (s *convertStep) Apply(env *Env, file *javasrc.File) (Outcome, error) {
	ed := javasrc.NewEdits(file.Source)
	mgr := imports.NewManager(file, env.Imports)

	var events []Event

	for _, loc := range file.Annotations {
		updated, results := s.rewriter.Walk(loc.Node, mgr)

		for _, res := range results {
			ev := Event{
				Step:    s.Name(),
				Rule:    res.Rule,
				Line:    lineOf(file, res.Before, loc.Span),
				State:   res.State,
				Reason:  res.Reason,
				Err:     res.Err,
				Changed: res.Changed(),
			}

			if res.Changed() {
				ev.Before, ev.After = res.Before.Render(), res.After.Render()
			}

			events = append(events, ev)
		}

		file.Reprint(ed, loc.Node, updated)
	}

	mgr.Apply(ed)

	return finish(ed, events)
}

type removeUnusedImportsStep struct {
	filter *regexp.Regexp
}

func (s *removeUnusedImportsStep) Name() string {
	if s.filter == nil {
		return "remove_unused_imports"
	}

	return fmt.Sprintf("remove_unused_imports(%s)", s.filter)
}

func (s *removeUnusedImportsStep) Apply(env *Env, file *javasrc.File) (Outcome, error) {
	unused := imports.Unused(file, env.known(), s.filter)
	if len(unused) == 0 {
		return Outcome{}, nil
	}

	ed := javasrc.NewEdits(file.Source)
	imports.Remove(ed, unused)

	events := make([]Event, 0, len(unused))
	for _, imp := range unused {
		events = append(events, Event{
			Step: s.Name(), Line: file.Line(imp.Span.Start), Before: imp.String(),
			Changed: true, State: rewrite.StateSpliced,
		})
	}

	return finish(ed, events)
}

type pruneStep struct {
	rule *prune.Rule
}

func (s *pruneStep) Name() string {
	return fmt.Sprintf("prune_declarations(%s)", s.rule.Pattern())
}

func (s *pruneStep) Apply(_ *Env, file *javasrc.File) (Outcome, error) {
	imp, ok := s.rule.Match(file)
	if !ok {
		return Outcome{}, nil
	}

	return Outcome{
		Delete: true,
		Events: []Event{{
			Step: s.Name(), Line: file.Line(imp.Span.Start), Before: imp.String(),
			Changed: true, State: rewrite.StateSpliced,
		}},
	}, nil
}
