package render

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Bitlatte/quire/internal/model"
)

// PartialsDir holds templates shared by every layout. They are available
// as {{template "partials/<name>" .}} and are not layouts themselves.
const PartialsDir = "partials"

const layoutExt = ".html"

const missingKeyOption = "missingkey=error"

// Registry holds the parsed layouts. It is built once and only read
// afterwards; its template sets are never executed directly, each render
// works on a clone.
type Registry struct {
	sources map[string]model.Template
	sets    map[string]*template.Template
}

// LoadRegistry parses every *.html file under dir. The returned error wraps
// fs.ErrNotExist when dir is missing.
func LoadRegistry(dir string, funcs template.FuncMap) (*Registry, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("layouts directory '%s': %w", dir, err)
	}
	return LoadRegistryFS(os.DirFS(dir), funcs)
}

// LoadRegistryFS is LoadRegistry over an fs.FS.
func LoadRegistryFS(fsys fs.FS, funcs template.FuncMap) (*Registry, error) {
	var layouts, partials []model.Template

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), layoutExt) {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read layout '%s': %w", p, err)
		}
		tpl := model.Template{Name: templateName(p), Content: string(raw)}
		if strings.HasPrefix(p, PartialsDir+"/") {
			partials = append(partials, tpl)
		} else {
			layouts = append(layouts, tpl)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find layout files: %w", err)
	}

	return NewRegistry(layouts, partials, funcs)
}

// NewRegistry parses layouts, each together with all partials. Page
// scoped functions such as content and param are always available; funcs
// adds site-wide helpers (see Funcs).
func NewRegistry(layouts, partials []model.Template, funcs template.FuncMap) (*Registry, error) {
	r := &Registry{
		sources: make(map[string]model.Template, len(layouts)),
		sets:    make(map[string]*template.Template, len(layouts)),
	}

	for _, layout := range layouts {
		if _, dup := r.sources[layout.Name]; dup {
			return nil, fmt.Errorf("duplicate layout %q", layout.Name)
		}

		set, err := template.New(layout.Name).
			Funcs(placeholderFuncs()).
			Funcs(funcs).
			Option(missingKeyOption).
			Parse(layout.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layout %q: %w", layout.Name, err)
		}
		for _, partial := range partials {
			if set.Lookup(partial.Name) != nil {
				continue
			}
			if _, err := set.New(partial.Name).Parse(partial.Content); err != nil {
				return nil, fmt.Errorf("failed to parse partial %q: %w", partial.Name, err)
			}
		}

		r.sources[layout.Name] = layout
		r.sets[layout.Name] = set
	}
	return r, nil
}

// Names lists the layout names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the source of a layout.
func (r *Registry) Template(name string) (model.Template, bool) {
	tpl, ok := r.sources[normalizeName(name)]
	return tpl, ok
}

// instance returns a fresh, executable copy of the named layout.
func (r *Registry) instance(name string) (*template.Template, string, error) {
	name = normalizeName(name)
	set, ok := r.sets[name]
	if !ok {
		return nil, name, ErrTemplateNotFound
	}
	clone, err := set.Clone()
	if err != nil {
		return nil, name, fmt.Errorf("clone layout %q: %w", name, err)
	}
	// Options are not carried over by Clone.
	return clone.Option(missingKeyOption), name, nil
}

// templateName maps "blog/post.html" to "blog/post".
func templateName(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

// normalizeName lets front-matter refer to a layout with or without its
// extension.
func normalizeName(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(name)), "/")
	if strings.EqualFold(path.Ext(name), layoutExt) {
		name = templateName(name)
	}
	return name
}

// IsNotExist reports whether err came from a missing layouts directory.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
