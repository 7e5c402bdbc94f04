package content

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrontMatter reports front-matter that could not be decoded.
	ErrMalformedFrontMatter = errors.New("malformed front-matter")
	// ErrMissingLayout reports a document without a usable layout field.
	ErrMissingLayout = errors.New("missing layout")
	// ErrContentDir reports a content root that is missing or not a directory.
	ErrContentDir = errors.New("invalid content directory")
)

// LoadError reports a content file that could not be turned into a Document.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
