// Package writer persists rendered pages and static assets under the output
// directory.
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Bitlatte/quire/internal/logger"
	"github.com/Bitlatte/quire/internal/model"
)

// Writer writes files below a single output root. Write may be called
// concurrently for distinct pages.
type Writer struct {
	root string
	log  *logger.Logger

	mu      sync.Mutex
	claimed map[string]string
}

func New(root string, log *logger.Logger) *Writer {
	if log == nil {
		log = logger.Discard()
	}
	return &Writer{
		root:    root,
		log:     log.Module("writer"),
		claimed: map[string]string{},
	}
}

// Root is the output directory.
func (w *Writer) Root() string {
	return w.root
}

// Prepare creates the output directory, removing previous contents first
// when clean is set.
func (w *Writer) Prepare(clean bool) error {
	if clean {
		w.log.Info("cleaning output directory", "dir", w.root)
		if err := os.RemoveAll(w.root); err != nil {
			return &WriteError{Path: w.root, Output: w.root, Err: fmt.Errorf("remove output directory: %w", err)}
		}
	}
	if err := os.MkdirAll(w.root, os.ModePerm); err != nil {
		return &WriteError{Path: w.root, Output: w.root, Err: fmt.Errorf("create output directory: %w", err)}
	}

	w.mu.Lock()
	w.claimed = map[string]string{}
	w.mu.Unlock()
	return nil
}

// Claim reserves an output path for a source so two documents cannot
// silently overwrite each other within one build.
func (w *Writer) Claim(outputPath, source string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if owner, ok := w.claimed[outputPath]; ok && owner != source {
		return &WriteError{
			Path:   source,
			Output: outputPath,
			Err:    fmt.Errorf("%w: already produced by %s", ErrOutputCollision, owner),
		}
	}
	w.claimed[outputPath] = source
	return nil
}

// Write stores page.HTML at page.OutputPath below the root, creating
// intermediate directories and overwriting any previous file.
func (w *Writer) Write(ctx context.Context, page *model.RenderedPage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := w.Claim(page.OutputPath, page.SourcePath); err != nil {
		return "", err
	}

	target := filepath.Join(w.root, filepath.FromSlash(page.OutputPath))
	if err := os.MkdirAll(filepath.Dir(target), os.ModePerm); err != nil {
		return "", &WriteError{Path: page.SourcePath, Output: target, Err: err}
	}
	if err := os.WriteFile(target, page.HTML, 0o644); err != nil {
		return "", &WriteError{Path: page.SourcePath, Output: target, Err: err}
	}

	w.log.Debug("wrote page", "path", page.SourcePath, "output", target, "bytes", len(page.HTML))
	return target, nil
}
