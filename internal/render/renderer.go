// Package render turns documents into finished HTML pages using the
// layout named in their front-matter.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/Bitlatte/quire/internal/logger"
	"github.com/Bitlatte/quire/internal/markdown"
	"github.com/Bitlatte/quire/internal/model"
	"github.com/Bitlatte/quire/internal/writer"
)

// Options configures a Renderer.
type Options struct {
	// Site is shared by every page; it must not be modified once rendering starts.
	Site *model.SiteData
	// Data is the decoded data directory, exposed as .Data.
	Data       map[string]any
	PrettyURLs bool
	Logger     *logger.Logger
}

// TranslationKey is the front-matter key that links translations of a page.
const TranslationKey = "translationKey"

// Renderer is safe for concurrent use once constructed.
type Renderer struct {
	registry  *Registry
	converter *markdown.Converter
	site      *model.SiteData
	data      map[string]any
	pretty    bool
	log       *logger.Logger
}

func NewRenderer(registry *Registry, converter *markdown.Converter, opts Options) *Renderer {
	site := opts.Site
	if site == nil {
		site = model.NewSiteData("", "", "", nil, nil)
	}
	data := opts.Data
	if data == nil {
		data = map[string]any{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Renderer{
		registry:  registry,
		converter: converter,
		site:      site,
		data:      data,
		pretty:    opts.PrettyURLs,
		log:       log.Module("render"),
	}
}

// Render converts doc's body and executes its layout.
func (r *Renderer) Render(ctx context.Context, doc *model.Document) (*model.RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpl, name, err := r.registry.instance(doc.Layout)
	if err != nil {
		return nil, &RenderError{Path: doc.Path, Layout: doc.Layout, Err: err}
	}

	body, err := r.converter.Convert(doc.Body)
	if err != nil {
		return nil, &RenderError{Path: doc.Path, Layout: name, Err: err}
	}

	outputPath := writer.OutputPath(doc.RoutePath(), r.pretty)
	permalink := writer.Permalink(outputPath)
	pageData := &model.PageData{
		Site:         r.site,
		Page:         model.Summarize(doc, permalink),
		Content:      template.HTML(body),
		Data:         r.data,
		Lang:         doc.Lang,
		T:            translations(r.data, doc.Lang),
		LanguageURLs: r.languageURLs(doc, permalink),
	}
	tmpl.Funcs(pageFuncs(pageData))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData); err != nil {
		return nil, &RenderError{Path: doc.Path, Layout: name, Err: classify(err)}
	}

	r.log.Debug("rendered page", "path", doc.Path, "layout", name, "output", outputPath)
	return &model.RenderedPage{
		SourcePath: doc.Path,
		OutputPath: outputPath,
		HTML:       buf.Bytes(),
	}, nil
}

// translations returns data.translations[lang], the strings a layout reads
// as .T or through the t function.
func translations(data map[string]any, lang string) map[string]any {
	all, ok := data["translations"].(map[string]any)
	if !ok {
		return nil
	}
	t, _ := all[lang].(map[string]any)
	return t
}

// languageURLs maps each language this page is available in to its
// permalink. Pages are linked by a shared translationKey front-matter value.
func (r *Renderer) languageURLs(doc *model.Document, permalink string) map[string]string {
	urls := map[string]string{}
	if doc.Lang != "" {
		urls[doc.Lang] = permalink
	}
	key, _ := doc.FrontMatter[TranslationKey].(string)
	if key == "" {
		return urls
	}
	for _, p := range r.site.Pages {
		if p.Lang == "" || p.Path == doc.Path {
			continue
		}
		if other, _ := p.Params[TranslationKey].(string); other == key {
			urls[p.Lang] = p.Permalink
		}
	}
	return urls
}

// classify tags template errors caused by missing values.
func classify(err error) error {
	if errors.Is(err, ErrUnresolvedPlaceholder) {
		return err
	}
	msg := err.Error()
	for _, marker := range []string{"map has no entry for key", "can't evaluate field", "nil pointer evaluating"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", ErrUnresolvedPlaceholder, err)
		}
	}
	return err
}
