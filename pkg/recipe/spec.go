package recipe

// Document is the on-disk form of a recipe file.
type Document struct {
	Recipes []Spec `json:"recipes" yaml:"recipes"`
}

// Spec declares one recipe: an ordered list of steps applied to every file.
type Spec struct {
	Name        string     `json:"name"                  yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	KnownTypes  []string   `json:"known_types,omitempty" yaml:"known_types,omitempty"`
	Steps       []StepSpec `json:"steps"                 yaml:"steps"`
}

// StepSpec holds exactly one step kind.
type StepSpec struct {
	ChangeType          *ChangeTypeSpec          `json:"change_type,omitempty"           yaml:"change_type,omitempty"`
	ConvertContainer    *ConvertContainerSpec    `json:"convert_container,omitempty"     yaml:"convert_container,omitempty"`
	RemoveUnusedImports *RemoveUnusedImportsSpec `json:"remove_unused_imports,omitempty" yaml:"remove_unused_imports,omitempty"`
	PruneDeclarations   *PruneDeclarationsSpec   `json:"prune_declarations,omitempty"    yaml:"prune_declarations,omitempty"`
}

// ChangeTypeSpec migrates annotation type references from one
// fully-qualified name to another.
type ChangeTypeSpec struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to"   yaml:"to"`
}

// ConvertContainerSpec is a structural annotation rewrite.
type ConvertContainerSpec struct {
	Name     string           `json:"name,omitempty"    yaml:"name,omitempty"`
	Target   string           `json:"target"            yaml:"target"`
	Require  []ConstraintSpec `json:"require,omitempty" yaml:"require,omitempty"`
	Output   string           `json:"output"            yaml:"output"`
	Remove   []string         `json:"remove,omitempty"  yaml:"remove,omitempty"`
	Variants []VariantSpec    `json:"variants"          yaml:"variants"`
	// Strict additionally requires every binding of the first variant.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// ConstraintSpec requires an argument, optionally with a literal value.
type ConstraintSpec struct {
	Name    string  `json:"name"              yaml:"name"`
	Literal *string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// VariantSpec is one template alternative.
type VariantSpec struct {
	Template string   `json:"template"           yaml:"template"`
	Bindings []string `json:"bindings,omitempty" yaml:"bindings,omitempty"`
}

// RemoveUnusedImportsSpec removes unused imports whose path matches Pattern
// (all unused imports when empty).
type RemoveUnusedImportsSpec struct {
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// PruneDeclarationsSpec deletes files importing from a package fully
// matching TypePackage.
type PruneDeclarationsSpec struct {
	TypePackage string `json:"type_package" yaml:"type_package"`
}
