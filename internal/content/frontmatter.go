package content

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/quire/internal/data"
	"github.com/Bitlatte/quire/internal/model"
)

// dateFormats are tried in order for string dates.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFrontMatter splits source into its front-matter map and Markdown
// body. YAML (---), TOML (+++) and JSON (;;;) blocks are recognized. A file
// without front-matter yields an empty map and the whole input as body.
func ParseFrontMatter(source []byte) (map[string]any, []byte, error) {
	source = bytes.TrimPrefix(source, utf8BOM)
	if delim, ok := openingDelimiter(source); ok && !hasClosingDelimiter(source, delim) {
		return nil, nil, fmt.Errorf("%w: %s block is never closed", ErrMalformedFrontMatter, delim)
	}

	var matter map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(source), &matter)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	return data.NormalizeMap(matter), body, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// delimiters open and close a front-matter block.
var delimiters = []string{"---", "+++", ";;;"}

func openingDelimiter(source []byte) (string, bool) {
	line, _, _ := bytes.Cut(source, []byte("\n"))
	first := string(bytes.TrimSpace(line))
	for _, d := range delimiters {
		if first == d {
			return d, true
		}
	}
	return "", false
}

func hasClosingDelimiter(source []byte, delim string) bool {
	_, rest, _ := bytes.Cut(source, []byte("\n"))
	for _, line := range bytes.Split(rest, []byte("\n")) {
		if string(bytes.TrimSpace(line)) == delim {
			return true
		}
	}
	return false
}

// BuildDocument parses source and derives the well-known fields. rel is the
// slash-separated path relative to the content root.
func BuildDocument(rel, sourcePath string, source []byte, defaultLang string) (*model.Document, error) {
	matter, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	layout, err := layoutOf(matter)
	if err != nil {
		return nil, err
	}

	date, err := dateOf(matter)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		Path:        rel,
		SourcePath:  sourcePath,
		Route:       routeFromPath(rel),
		FrontMatter: matter,
		Body:        body,
		Layout:      layout,
		Title:       stringOf(matter, "title"),
		Date:        date,
		Type:        stringOf(matter, "type"),
		Summary:     stringOf(matter, "summary"),
		Lang:        stringOf(matter, "lang"),
	}
	if draft, ok := matter["draft"].(bool); ok {
		doc.Draft = draft
	}

	if doc.Title == "" {
		doc.Title = TitleFromPath(rel)
	}
	if doc.Type == "" {
		doc.Type = typeFromPath(rel)
	}
	if doc.Lang == "" {
		doc.Lang = defaultLang
	}
	return doc, nil
}

func layoutOf(matter map[string]any) (string, error) {
	raw, ok := matter["layout"]
	if !ok || raw == nil {
		return "", ErrMissingLayout
	}
	layout, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: layout must be a string, got %T", ErrMissingLayout, raw)
	}
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return "", fmt.Errorf("%w: layout is empty", ErrMissingLayout)
	}
	return layout, nil
}

func dateOf(matter map[string]any) (time.Time, error) {
	switch v := matter["date"].(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		for _, format := range dateFormats {
			if parsed, err := time.Parse(format, strings.TrimSpace(v)); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: could not parse date %q, use YYYY-MM-DD or RFC3339", ErrMalformedFrontMatter, v)
	default:
		return time.Time{}, fmt.Errorf("%w: date must be a string, got %T", ErrMalformedFrontMatter, v)
	}
}

func stringOf(matter map[string]any, key string) string {
	if s, ok := matter[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// TitleFromPath turns "notes/my-first_post.md" into "My First Post".
func TitleFromPath(rel string) string {
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(stem)
}

// typeFromPath uses the first directory segment as the collection name.
func typeFromPath(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "" {
		return "page"
	}
	first := strings.SplitN(dir, "/", 2)[0]
	if name, ok := Collections[first]; ok {
		return name
	}
	return first
}

// routeFromPath drops a collection directory from rel. It returns "" when
// rel is already the route.
func routeFromPath(rel string) string {
	first, rest, found := strings.Cut(rel, "/")
	if !found {
		return ""
	}
	if _, ok := Collections[first]; ok {
		return rest
	}
	return ""
}
