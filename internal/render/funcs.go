package render

import (
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Bitlatte/quire/internal/model"
)

// Funcs returns the site-wide template helpers.
//
//	relURL "/css/a.css"   -> "/sub/css/a.css" when baseURL is https://host/sub
//	absURL "/css/a.css"   -> "https://host/sub/css/a.css"
//	dateFormat "Jan 2, 2006" .Page.Date
//	truncate 40 .Page.Summary -> at most 40 display columns, ending in "…"
func Funcs(baseURL string) template.FuncMap {
	base := parseBase(baseURL)
	titleCaser := cases.Title(language.English)

	return template.FuncMap{
		"relURL": func(p string) string { return relURL(base, p) },
		"absURL": func(p string) string { return absURL(base, p) },
		"dateFormat": func(layout string, t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
		"titleize": titleCaser.String,
		"truncate": truncate,
	}
}

// placeholderFuncs declares the page scoped functions at parse time; each
// render replaces them with pageFuncs bound to the current document.
func placeholderFuncs() template.FuncMap {
	return pageFuncs(&model.PageData{})
}

func pageFuncs(data *model.PageData) template.FuncMap {
	return template.FuncMap{
		"content": func() template.HTML { return data.Content },
		"title":   func() string { return data.Page.Title },
		"page":    func() model.PageSummary { return data.Page },
		"site":    func() *model.SiteData { return data.Site },
		"param": func(key string) (any, error) {
			v, ok := data.Page.Params[key]
			if !ok {
				return nil, fmt.Errorf("%w: front-matter key %q", ErrUnresolvedPlaceholder, key)
			}
			return v, nil
		},
		"t": func(key string) (any, error) {
			v, ok := data.T[key]
			if !ok {
				return nil, fmt.Errorf("%w: translation %q for language %q", ErrUnresolvedPlaceholder, key, data.Lang)
			}
			return v, nil
		},
		"paramOr": func(key string, fallback any) any {
			if v, ok := data.Page.Params[key]; ok {
				return v
			}
			return fallback
		},
	}
}

// truncate shortens s to at most width display columns; wide runes count
// as two.
func truncate(width int, s string) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func parseBase(baseURL string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return &url.URL{}
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u
}

func isExternal(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "//")
}

func relURL(base *url.URL, p string) string {
	if isExternal(p) || !strings.HasPrefix(p, "/") {
		return p
	}
	if base.Path == "" {
		return p
	}
	return joinPath(base.Path, p)
}

func absURL(base *url.URL, p string) string {
	if isExternal(p) {
		return p
	}
	p = "/" + strings.TrimPrefix(p, "/")
	if base.Host == "" {
		return relURL(base, p)
	}
	u := *base
	u.Path = joinPath(base.Path, p)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// joinPath joins onto base while keeping a trailing slash on p.
func joinPath(base, p string) string {
	joined := path.Join("/", base, p)
	if strings.HasSuffix(p, "/") && joined != "/" {
		joined += "/"
	}
	return joined
}
