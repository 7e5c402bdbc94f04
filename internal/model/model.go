package model

import (
	"sort"
	"time"
)

// Document is a content source file split into front-matter and Markdown
// body. Documents are created by the content loader and must not be
// modified afterwards; the derived fields mirror well-known front-matter keys.
type Document struct {
	// Path is the slash-separated path relative to the content root, e.g. "blog/hello.md".
	Path string
	// SourcePath is the location on disk the document was read from.
	SourcePath string
	// Route is the path the output location is derived from when it differs
	// from Path, e.g. "about.md" for "_pages/about.md".
	Route       string
	FrontMatter map[string]any
	Body        []byte

	Layout  string
	Title   string
	Date    time.Time
	Type    string
	Summary string
	Draft   bool
	Lang    string
}

// RoutePath is the content-relative path used to place the rendered page.
func (d *Document) RoutePath() string {
	if d.Route != "" {
		return d.Route
	}
	return d.Path
}

// Param returns a front-matter value.
func (d *Document) Param(key string) (any, bool) {
	v, ok := d.FrontMatter[key]
	return v, ok
}

// Template is a named layout source.
type Template struct {
	Name    string
	Content string
}

// RenderedPage is the final HTML for one document, handed to the writer once.
type RenderedPage struct {
	SourcePath string
	OutputPath string
	HTML       []byte
}

// PageSummary is the read-only view of a document exposed to templates for
// listings such as "recent posts".
type PageSummary struct {
	Title     string
	Permalink string
	Date      time.Time
	Type      string
	Path      string
	Summary   string
	Layout    string
	Lang      string
	Params    map[string]any
}

// Summarize projects a document into a PageSummary with the given permalink.
func Summarize(doc *Document, permalink string) PageSummary {
	params := make(map[string]any, len(doc.FrontMatter))
	for k, v := range doc.FrontMatter {
		params[k] = v
	}
	return PageSummary{
		Title:     doc.Title,
		Permalink: permalink,
		Date:      doc.Date,
		Type:      doc.Type,
		Path:      doc.Path,
		Summary:   doc.Summary,
		Layout:    doc.Layout,
		Lang:      doc.Lang,
		Params:    params,
	}
}

// SiteData holds site-wide data shared by every page render.
type SiteData struct {
	Title    string
	BaseURL  string
	Language string
	Params   map[string]any
	Pages    []PageSummary
	ByType   map[string][]PageSummary
}

// NewSiteData sorts pages newest first (undated pages last, ties broken by
// path) and groups them by type.
func NewSiteData(title, baseURL, language string, params map[string]any, pages []PageSummary) *SiteData {
	sorted := append([]PageSummary(nil), pages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Date.IsZero() && !b.Date.IsZero():
			return false
		case !a.Date.IsZero() && b.Date.IsZero():
			return true
		case !a.Date.Equal(b.Date):
			return a.Date.After(b.Date)
		}
		return a.Path < b.Path
	})

	byType := make(map[string][]PageSummary)
	for _, p := range sorted {
		byType[p.Type] = append(byType[p.Type], p)
	}

	if params == nil {
		params = map[string]any{}
	}

	return &SiteData{
		Title:    title,
		BaseURL:  baseURL,
		Language: language,
		Params:   params,
		Pages:    sorted,
		ByType:   byType,
	}
}
