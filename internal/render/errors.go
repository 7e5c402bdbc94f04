package render

import (
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound reports a layout name with no matching template.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrUnresolvedPlaceholder reports a placeholder whose value is missing.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
)

// RenderError reports a document that could not be rendered.
type RenderError struct {
	Path   string
	Layout string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Layout != "" {
		return fmt.Sprintf("render %s (layout %q): %v", e.Path, e.Layout, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
