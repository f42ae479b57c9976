package recipe

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Registry indexes compiled recipes by name.
type Registry struct {
	recipes map[string]*Recipe
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{recipes: make(map[string]*Recipe)}
}

// Builtins compiles the recipes shipped with the binary.
func Builtins(parser rewrite.FragmentParser, opts CompileOptions) (*Registry, error) {
	reg := NewRegistry()

	entries, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list builtin recipes: %w", err)
	}

	for _, path := range entries {
		data, readErr := builtinFS.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read builtin recipe %s: %w", path, readErr)
		}

		recipes, parseErr := Parse(data, parser, opts)
		if parseErr != nil {
			return nil, fmt.Errorf("builtin %s: %w", path, parseErr)
		}

		if addErr := reg.Add(recipes...); addErr != nil {
			return nil, addErr
		}
	}

	return reg, nil
}

// Add registers recipes. Names must be unique.
func (r *Registry) Add(recipes ...*Recipe) error {
	for _, rc := range recipes {
		if _, ok := r.recipes[rc.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, rc.Name)
		}

		r.recipes[rc.Name] = rc
	}

	return nil
}

// LoadFile compiles a recipe file into the registry.
func (r *Registry) LoadFile(path string, parser rewrite.FragmentParser, opts CompileOptions) error {
	recipes, err := LoadFile(path, parser, opts)
	if err != nil {
		return err
	}

	return r.Add(recipes...)
}

// Lookup returns the recipe registered under name.
func (r *Registry) Lookup(name string) (*Recipe, error) {
	rc, ok := r.recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecipe, name)
	}

	return rc, nil
}

// List returns all recipes sorted by name.
func (r *Registry) List() []*Recipe {
	out := make([]*Recipe, 0, len(r.recipes))
	for _, rc := range r.recipes {
		out = append(out, rc)
	}

	slices.SortFunc(out, func(a, b *Recipe) int { return strings.Compare(a.Name, b.Name) })

	return out
}
