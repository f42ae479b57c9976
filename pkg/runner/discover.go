package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/src-d/enry/v2"
)

const languageJava = "Java"

// ErrNoSources is returned when no path argument exists.
var ErrNoSources = errors.New("no source paths")

// IsJava reports whether name looks like a Java source file.
func IsJava(name string) bool {
	return enry.GetLanguage(filepath.Base(name), nil) == languageJava
}

// Discover expands roots into the Java files selected by patterns. File
// roots are taken as given; directory roots are walked, skipping vendored and
// excluded directories. The result is sorted and free of duplicates.
func Discover(ctx context.Context, roots []string, patterns *Patterns) ([]string, error) {
	if len(roots) == 0 {
		return nil, ErrNoSources
	}

	var out []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			out = append(out, filepath.Clean(root))

			continue
		}

		files, err := walk(ctx, root, patterns)
		if err != nil {
			return nil, err
		}

		out = append(out, files...)
	}

	slices.Sort(out)

	return slices.Compact(out), nil
}

func walk(ctx context.Context, root string, patterns *Patterns) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relative path of %s: %w", path, relErr)
		}

		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (enry.IsVendor(rel+"/") || enry.IsDotFile(rel) || patterns.Excluded(rel+"/")) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || !IsJava(path) || !patterns.Included(rel) {
			return nil
		}

		out = append(out, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return out, nil
}
