package writer

import (
	"errors"
	"fmt"
)

// ErrOutputCollision reports two sources mapped to the same output file.
var ErrOutputCollision = errors.New("output path collision")

// WriteError reports a page or asset that could not be written.
type WriteError struct {
	Path   string
	Output string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s -> %s: %v", e.Path, e.Output, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
