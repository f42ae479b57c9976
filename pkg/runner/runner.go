// Package runner applies a recipe to a set of Java files with a bounded
// worker pool, producing per-file reports, diffs and metrics.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
	"github.com/Sumatoshi-tech/annorewrite/pkg/textutil"
)

// Skip reasons reported for files that were not rewritten.
const (
	SkipTooLarge     = "exceeds max file size"
	SkipBinary       = "binary content"
	SkipSyntaxErrors = "syntax errors"
)

// Options configures a Runner.
type Options struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *observability.RewriteMetrics
	// MaxFileSize skips larger files; zero disables the limit.
	MaxFileSize uint64
	// Workers bounds concurrency; zero means one per CPU.
	Workers int
	// Write stores results on disk; otherwise the run is a dry run.
	Write bool
	// Diff renders a unified diff for every changed file.
	Diff bool
}

// FileReport describes what happened to one file.
type FileReport struct {
	Err     error
	Path    string
	Diff    string
	Reason  string
	Status  observability.FileStatus
	Events  []recipe.Event
	Size    int
	Lines   int
	// Added and Removed count changed lines; a deletion removes every line.
	Added   int
	Removed int
}

// Runner rewrites files with one recipe. It is safe for concurrent use.
type Runner struct {
	recipe *recipe.Recipe
	env    *recipe.Env
	opts   Options
}

// New returns a Runner.
func New(rc *recipe.Recipe, env *recipe.Env, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("annorewrite")
	}

	return &Runner{recipe: rc, env: env, opts: opts}
}

// Recipe returns the recipe the runner applies.
func (r *Runner) Recipe() *recipe.Recipe {
	return r.recipe
}

// Run processes paths concurrently. Cancellation is observed between files:
// files already started finish, the rest are left out of the report and the
// context error is returned with the partial report.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	ctx, span := r.opts.Tracer.Start(ctx, "runner.run", trace.WithAttributes(
		attribute.String("recipe.name", r.recipe.Name),
		attribute.Int("runner.files", len(paths)),
	))
	defer span.End()

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	workers = max(min(workers, len(paths)), 1)

	results := make([]*FileReport, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range jobs {
				rep := r.File(ctx, paths[idx])
				results[idx] = &rep
			}
		}()
	}

feed:
	for idx := range paths {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}

	close(jobs)
	wg.Wait()

	report := &Report{Recipe: r.recipe.Name}

	for _, rep := range results {
		if rep != nil {
			report.Files = append(report.Files, *rep)
		}
	}

	span.SetAttributes(
		attribute.Int("runner.changed", report.Count(observability.FileChanged)),
		attribute.Int("runner.failed", report.Count(observability.FileFailed)),
	)

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return report, fmt.Errorf("run interrupted: %w", err)
	}

	return report, nil
}

// File processes a single file.
func (r *Runner) File(ctx context.Context, path string) FileReport {
	start := time.Now()

	ctx, span := r.opts.Tracer.Start(ctx, "runner.file", trace.WithAttributes(
		attribute.String("file.path", path),
		attribute.String("recipe.name", r.recipe.Name),
	))
	defer span.End()

	rep := r.process(ctx, path)

	span.SetAttributes(
		attribute.String("runner.status", string(rep.Status)),
		attribute.Int("rewrite.events", len(rep.Events)),
	)

	if rep.Err != nil {
		span.RecordError(rep.Err)
		span.SetStatus(codes.Error, rep.Err.Error())
		r.opts.Logger.ErrorContext(ctx, "rewrite failed", "file", path, "error", rep.Err)
	} else {
		r.opts.Logger.DebugContext(ctx, "file processed", "file", path, "status", rep.Status, "reason", rep.Reason)
	}

	for _, ev := range rep.Events {
		if ev.State == rewrite.StateSynthesisFailed {
			r.opts.Logger.WarnContext(ctx, "template synthesis failed",
				"file", path, "line", ev.Line, "rule", ev.Rule, "error", ev.Err)
		}
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordFile(ctx, r.recipe.Name, rep.Status, time.Since(start))
		r.opts.Metrics.RecordNodes(ctx, r.recipe.Name, nodeStates(rep.Events))
	}

	return rep
}

func (r *Runner) process(ctx context.Context, path string) FileReport {
	rep := FileReport{Path: path, Status: observability.FileFailed}

	info, err := os.Stat(path)
	if err != nil {
		rep.Err = fmt.Errorf("stat: %w", err)

		return rep
	}

	if r.opts.MaxFileSize > 0 && uint64(info.Size()) > r.opts.MaxFileSize {
		rep.Status = observability.FileSkipped
		rep.Reason = fmt.Sprintf("%s (%s > %s)", SkipTooLarge,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(r.opts.MaxFileSize))

		return rep
	}

	data, err := os.ReadFile(path)
	if err != nil {
		rep.Err = fmt.Errorf("read: %w", err)

		return rep
	}

	rep.Size = len(data)
	rep.Lines = textutil.CountLines(data)

	if textutil.IsBinary(data) {
		rep.Status = observability.FileSkipped
		rep.Reason = SkipBinary

		return rep
	}

	res, err := r.recipe.Run(ctx, r.env, path, data)
	if err != nil {
		rep.Err = err

		return rep
	}

	rep.Events = res.Events

	switch {
	case res.Skipped:
		rep.Status = observability.FileSkipped
		rep.Reason = SkipSyntaxErrors

		return rep
	case !res.Changed():
		rep.Status = observability.FileUnchanged

		return rep
	}

	rep.Added, rep.Removed = LineStat(data, res.Output)

	if r.opts.Diff {
		rep.Diff = UnifiedDiff(filepath.ToSlash(path), data, res.Output)
	}

	rep.Status = observability.FileChanged
	if res.Deleted {
		rep.Status = observability.FileDeleted
	}

	if !r.opts.Write {
		return rep
	}

	if res.Deleted {
		err = os.Remove(path)
	} else {
		err = writeFile(path, res.Output, info.Mode().Perm())
	}

	if err != nil {
		rep.Status = observability.FileFailed
		rep.Err = err

		return rep
	}

	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordWrite(ctx, len(res.Output))
	}

	return rep
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".annorewrite-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func(cause error) error {
		return errors.Join(cause, os.Remove(tmp.Name()))
	}

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return cleanup(fmt.Errorf("write %s: %w", path, err))
	}

	if err = tmp.Chmod(perm); err != nil {
		_ = tmp.Close()

		return cleanup(fmt.Errorf("chmod %s: %w", path, err))
	}

	if err = tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("close %s: %w", path, err))
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return cleanup(fmt.Errorf("replace %s: %w", path, err))
	}

	return nil
}

func nodeStates(events []recipe.Event) map[string]int {
	out := make(map[string]int)

	for _, ev := range events {
		if ev.Rule != "" {
			out[ev.State.String()]++
		}
	}

	return out
}
