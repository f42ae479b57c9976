package rewrite

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for rewrite operations.
var (
	// ErrTemplateSynthesis marks every *TemplateSynthesisError.
	ErrTemplateSynthesis = errors.New("template synthesis failed")
	// ErrInvalidRule is returned by New for rules that can never apply cleanly.
	ErrInvalidRule = errors.New("invalid rewrite rule")
	// ErrEmptyTemplate is returned by CompileTemplate for blank sources.
	ErrEmptyTemplate = errors.New("empty template")

	errSlotCount  = errors.New("binding count does not match template slots")
	errOutputName = errors.New("synthesized argument has unexpected name")
)

// TemplateSynthesisError reports a template that could not be turned into an
// argument with the given bindings. It is local to a single node.
type TemplateSynthesisError struct {
	Err      error
	Template string
	Bindings []string
}

// Error implements error.
func (e *TemplateSynthesisError) Error() string {
	return fmt.Sprintf("%v: template %q with bindings [%s]: %v",
		ErrTemplateSynthesis, e.Template, strings.Join(e.Bindings, ", "), e.Err)
}

// Unwrap returns the underlying cause.
func (e *TemplateSynthesisError) Unwrap() error {
	return e.Err
}

// Is reports ErrTemplateSynthesis as a match.
func (e *TemplateSynthesisError) Is(target error) bool {
	return target == ErrTemplateSynthesis
}
