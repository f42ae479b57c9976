// Package watch re-applies a recipe to Java files as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/annorewrite/pkg/runner"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoRoots is returned when nothing is given to watch.
var ErrNoRoots = errors.New("no paths to watch")

// Handler receives a batch of changed files once the tree has been quiet
// for the debounce period. Paths are absolute and sorted.
type Handler func(ctx context.Context, paths []string)

// ErrorHandler is called for watcher errors.
type ErrorHandler func(error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithErrorHandler sets the error callback.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// root is a watched argument: a directory tree or a single file.
type root struct {
	path string
	dir  bool
}

// Watcher watches directory trees and single files for Java changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	patterns *runner.Patterns
	handle   Handler
	onError  ErrorHandler
	logger   *slog.Logger
	pending  map[string]struct{}
	roots    []root
	debounce time.Duration
}

// New registers watches for every root. Directory roots are watched
// recursively, minus vendored, hidden and excluded directories.
func New(paths []string, patterns *runner.Patterns, handle Handler, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoRoots
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		fs:       fsw,
		patterns: patterns,
		handle:   handle,
		logger:   slog.Default(),
		pending:  make(map[string]struct{}),
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		opt(w)
	}

	for _, p := range paths {
		if err = w.addRoot(p); err != nil {
			return nil, errors.Join(err, fsw.Close())
		}
	}

	return w, nil
}

func (w *Watcher) addRoot(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		w.roots = append(w.roots, root{path: abs})

		if err = w.fs.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		return nil
	}

	w.roots = append(w.roots, root{path: abs, dir: true})

	return w.addTree(abs, false)
}

// addTree watches dir and its subdirectories. With enqueue set, Java files
// already present are queued, covering files created before the watch.
func (w *Watcher) addTree(dir string, enqueue bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			if enqueue && w.selected(path) {
				w.pending[path] = struct{}{}
			}

			return nil
		}

		if path != dir && w.skipDir(path) {
			return filepath.SkipDir
		}

		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}

		w.logger.Debug("watching directory", "dir", path)

		return nil
	})
}

func (w *Watcher) rel(path string) (string, root, bool) {
	for _, r := range w.roots {
		if !r.dir {
			if path == r.path {
				return filepath.Base(path), r, true
			}

			continue
		}

		rel, err := filepath.Rel(r.path, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		return filepath.ToSlash(rel), r, true
	}

	return "", root{}, false
}

func (w *Watcher) skipDir(path string) bool {
	rel, _, ok := w.rel(path)
	if !ok {
		return true
	}

	return enry.IsVendor(rel+"/") || enry.IsDotFile(rel) || w.patterns.Excluded(rel+"/")
}

func (w *Watcher) selected(path string) bool {
	rel, r, ok := w.rel(path)
	if !ok {
		return false
	}

	if !r.dir {
		return true
	}

	return runner.IsJava(path) && w.patterns.Included(rel)
}

// Run delivers batches until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var (
		timer    *time.Timer
		debounce <-chan time.Time
	)

	arm := func() {
		if timer != nil {
			timer.Stop()
		}

		timer = time.NewTimer(w.debounce)
		debounce = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			w.logger.Info("watcher stopped")

			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			if w.handleEvent(event) {
				arm()
			}

		case <-debounce:
			debounce = nil
			w.flush(ctx)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}

			w.logger.Error("watcher error", "error", err)

			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// handleEvent queues the event's file and reports whether anything was queued.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.skipDir(path) {
				return false
			}

			before := len(w.pending)

			if err := w.addTree(path, true); err != nil {
				w.logger.Warn("cannot watch new directory", "dir", path, "error", err)
			}

			return len(w.pending) > before
		}
	}

	if !w.selected(path) {
		return false
	}

	w.logger.Debug("file changed", "file", path, "op", event.Op.String())
	w.pending[path] = struct{}{}

	return true
}

func (w *Watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}

	paths := make([]string, 0, len(w.pending))

	for p := range w.pending {
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}

	clear(w.pending)

	if len(paths) == 0 {
		return
	}

	slices.Sort(paths)

	w.logger.Info("rewriting changed files", "files", len(paths))

	if w.handle != nil {
		w.handle(ctx, paths)
	}
}
