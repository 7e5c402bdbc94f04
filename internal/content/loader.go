// Package content discovers Markdown sources and parses them into documents.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Bitlatte/quire/internal/logger"
	"github.com/Bitlatte/quire/internal/model"
)

// Extensions lists the recognized source file extensions.
var Extensions = []string{".md", ".markdown"}

// Collections maps top-level underscore directories that hold content to
// their collection name. Their pages are placed as if the directory were
// not there: _pages/about.md renders to about.html.
var Collections = map[string]string{
	"_pages": "pages",
}

// Options configures a Loader.
type Options struct {
	// DefaultLang is assigned to documents without a lang field.
	DefaultLang string
	// IncludeDrafts keeps documents marked draft: true.
	IncludeDrafts bool
	// ContinueOnError collects per-file errors instead of stopping at the first one.
	ContinueOnError bool
	Logger          *logger.Logger
}

// Loader reads content directories.
type Loader struct {
	opts Options
	log  *logger.Logger
}

func NewLoader(opts Options) *Loader {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{opts: opts, log: log.Module("content")}
}

// LoadDir loads every recognized file under root on disk.
func (l *Loader) LoadDir(ctx context.Context, root string) ([]*model.Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &LoadError{Path: root, Err: fmt.Errorf("%w: %w", ErrContentDir, err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Path: root, Err: fmt.Errorf("%w: not a directory", ErrContentDir)}
	}
	return l.LoadFS(ctx, os.DirFS(root), root)
}

// LoadFS walks fsys and loads every recognized file. Documents are returned
// sorted by path. base is joined with each relative path to form
// Document.SourcePath. When ContinueOnError is set the successfully loaded
// documents are returned together with the joined errors.
func (l *Loader) LoadFS(ctx context.Context, fsys fs.FS, base string) ([]*model.Document, error) {
	var (
		docs   []*model.Document
		errs   []error
		drafts int
	)

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &LoadError{Path: p, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if p != "." && ignored(d.Name()) && !(d.IsDir() && isCollection(p)) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !Recognized(p) {
			return nil
		}

		doc, err := l.LoadFile(ctx, fsys, base, p)
		if err != nil {
			if !l.opts.ContinueOnError {
				return err
			}
			l.log.Error("skipping document", "path", p, "error", err)
			errs = append(errs, err)
			return nil
		}

		if doc.Draft && !l.opts.IncludeDrafts {
			l.log.Debug("skipping draft", "path", p)
			drafts++
			return nil
		}

		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	l.log.Info("content loaded", "documents", len(docs), "drafts_skipped", drafts, "errors", len(errs))
	return docs, errors.Join(errs...)
}

// LoadFile reads and parses the file at rel within fsys.
func (l *Loader) LoadFile(ctx context.Context, fsys fs.FS, base, rel string) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := fs.ReadFile(fsys, rel)
	if err != nil {
		return nil, &LoadError{Path: rel, Err: err}
	}

	doc, err := BuildDocument(rel, filepath.Join(base, filepath.FromSlash(rel)), source, l.opts.DefaultLang)
	if err != nil {
		return nil, &LoadError{Path: rel, Err: err}
	}
	l.log.Debug("loaded document", "path", rel, "layout", doc.Layout)
	return doc, nil
}

// Recognized reports whether p has a content extension.
func Recognized(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isCollection(p string) bool {
	_, ok := Collections[p]
	return ok
}

// ignored skips hidden entries and underscore-prefixed ones such as _drafts.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
