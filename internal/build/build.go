// Package build runs the load, render and write pipeline for a whole site.
package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Bitlatte/quire/internal/config"
	"github.com/Bitlatte/quire/internal/content"
	"github.com/Bitlatte/quire/internal/data"
	"github.com/Bitlatte/quire/internal/logger"
	"github.com/Bitlatte/quire/internal/markdown"
	"github.com/Bitlatte/quire/internal/model"
	"github.com/Bitlatte/quire/internal/render"
	"github.com/Bitlatte/quire/internal/writer"
)

// Report summarizes a build.
type Report struct {
	// Written lists output files relative to the output directory, sorted.
	Written  []string
	Static   int
	Failed   int
	Duration time.Duration
}

// Builder runs builds for one configuration. A Builder may be reused, but
// Build must not be called concurrently.
type Builder struct {
	cfg config.Config
	log *logger.Logger
}

func New(cfg config.Config, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Discard()
	}
	return &Builder{cfg: cfg, log: log.Module("build")}
}

// Build loads every document, renders it with its layout and writes the
// result. Without ContinueOnError the first failure cancels the remaining
// work; with it every document is attempted and all failures are returned
// joined. Output written before a failure is left in place.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	cfg := b.cfg
	if err := cfg.CheckOutputDir(); err != nil {
		return nil, err
	}
	b.log.Info("starting build", "content", cfg.ContentDir, "layouts", cfg.LayoutsDir, "output", cfg.OutputDir)

	siteData, err := data.Load(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	loader := content.NewLoader(content.Options{
		DefaultLang:     cfg.Language,
		IncludeDrafts:   cfg.Drafts,
		ContinueOnError: cfg.ContinueOnError,
		Logger:          b.log,
	})
	docs, loadErr := loader.LoadDir(ctx, cfg.ContentDir)
	if loadErr != nil && (!cfg.ContinueOnError || errors.Is(loadErr, content.ErrContentDir)) {
		return nil, loadErr
	}

	registry, err := b.loadRegistry()
	if err != nil {
		return nil, err
	}

	renderer := render.NewRenderer(registry, markdown.New(markdown.Options{
		Extensions: cfg.Markdown.Extensions,
		HardWraps:  cfg.Markdown.HardWraps,
		Unsafe:     cfg.Markdown.Unsafe,
		HeadingIDs: cfg.Markdown.HeadingIDs,
	}), render.Options{
		Site:       b.siteData(docs),
		Data:       siteData,
		PrettyURLs: cfg.PrettyURLs,
		Logger:     b.log,
	})

	w := writer.New(cfg.OutputDir, b.log)
	if err := w.Prepare(cfg.Clean); err != nil {
		return nil, err
	}
	static, err := w.CopyStatic(ctx, cfg.StaticDir)
	if err != nil {
		return nil, err
	}

	report := &Report{Static: static}
	pageErr := b.renderAll(ctx, docs, renderer, w, report)

	sort.Strings(report.Written)
	report.Duration = time.Since(start)

	if loadErr != nil {
		report.Failed += countErrors(loadErr)
	}
	buildErr := errors.Join(loadErr, pageErr)
	if buildErr != nil {
		b.log.Error("build failed", "written", len(report.Written), "failed", report.Failed, "duration", report.Duration)
		return report, buildErr
	}

	b.log.Info("build completed", "pages", len(report.Written), "static", report.Static, "duration", report.Duration)
	return report, nil
}

func (b *Builder) renderAll(ctx context.Context, docs []*model.Document, renderer *render.Renderer, w *writer.Writer, report *Report) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.cfg.Workers, 1))

	for _, doc := range docs {
		g.Go(func() error {
			target, err := b.process(gctx, doc, renderer, w)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				// Documents that only observed the abort are not failures.
				if !errors.Is(err, context.Canceled) {
					report.Failed++
				}
				if b.cfg.ContinueOnError {
					b.log.Error("skipping document", "path", doc.Path, "error", err)
					errs = append(errs, err)
					return nil
				}
				return err
			}
			rel, relErr := filepath.Rel(w.Root(), target)
			if relErr != nil {
				rel = target
			}
			report.Written = append(report.Written, filepath.ToSlash(rel))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (b *Builder) process(ctx context.Context, doc *model.Document, renderer *render.Renderer, w *writer.Writer) (string, error) {
	page, err := renderer.Render(ctx, doc)
	if err != nil {
		return "", err
	}
	return w.Write(ctx, page)
}

func (b *Builder) loadRegistry() (*render.Registry, error) {
	registry, err := render.LoadRegistry(b.cfg.LayoutsDir, render.Funcs(b.cfg.BaseURL))
	if err != nil {
		if render.IsNotExist(err) {
			b.log.Warn("layouts directory not found, every document will fail to render", "dir", b.cfg.LayoutsDir)
			return render.NewRegistry(nil, nil, nil)
		}
		return nil, fmt.Errorf("failed to load layouts: %w", err)
	}
	b.log.Info("layouts loaded", "layouts", registry.Names())
	return registry, nil
}

// siteData builds the listing every template sees. Permalinks use the same
// mapping as the writer.
func (b *Builder) siteData(docs []*model.Document) *model.SiteData {
	summaries := make([]model.PageSummary, 0, len(docs))
	for _, doc := range docs {
		out := writer.OutputPath(doc.RoutePath(), b.cfg.PrettyURLs)
		summaries = append(summaries, model.Summarize(doc, writer.Permalink(out)))
	}
	return model.NewSiteData(b.cfg.SiteTitle, b.cfg.BaseURL, b.cfg.Language, b.cfg.Params, summaries)
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
