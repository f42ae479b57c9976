package javasrc

import "errors"

// Sentinel errors for Java source operations.
var (
	// ErrLanguageNotAvailable is returned when the Java grammar cannot be loaded.
	ErrLanguageNotAvailable = errors.New("tree-sitter java grammar not available")
	// ErrSyntax marks source that does not parse cleanly.
	ErrSyntax = errors.New("java syntax error")
	// ErrFragment is returned for template text that is not exactly one annotation argument.
	ErrFragment = errors.New("not a single annotation argument")
	// ErrOverlappingEdit is returned by Edits.Bytes for conflicting replacements.
	ErrOverlappingEdit = errors.New("overlapping edit")

	errNoRootNode = errors.New("java parser: no root node")
	errPoolType   = errors.New("java parser: pool returned unexpected type")
)
