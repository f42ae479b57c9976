package runner

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
)

// Report aggregates the file reports of one run, in input order.
type Report struct {
	Recipe string
	Files  []FileReport
}

// Count returns the number of files with status.
func (r *Report) Count(status observability.FileStatus) int {
	var n int

	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}

	return n
}

// Pending returns the number of files that were, or would be, modified.
func (r *Report) Pending() int {
	return r.Count(observability.FileChanged) + r.Count(observability.FileDeleted)
}

// Nodes counts rewrite events by final state.
func (r *Report) Nodes() map[rewrite.State]int {
	out := make(map[rewrite.State]int)

	for _, f := range r.Files {
		for _, ev := range f.Events {
			if ev.Rule != "" {
				out[ev.State]++
			}
		}
	}

	return out
}

// SynthesisFailures returns every node whose template could not be synthesized.
func (r *Report) SynthesisFailures() []Failure {
	var out []Failure

	for _, f := range r.Files {
		for _, ev := range f.Events {
			if ev.State == rewrite.StateSynthesisFailed {
				out = append(out, Failure{Path: f.Path, Event: ev})
			}
		}
	}

	return out
}

// Failure locates a failed node.
type Failure struct {
	Path  string
	Event recipe.Event
}

// Err joins the errors of failed files, or returns nil.
func (r *Report) Err() error {
	var errs []error

	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}

	return errors.Join(errs...)
}
