package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CTAG07/hashmark/pkg/conf"
	"github.com/CTAG07/hashmark/pkg/locallang"
	"github.com/CTAG07/hashmark/pkg/page"
	"github.com/CTAG07/hashmark/pkg/templating"
)

// RenderRequest selects a template and the values to render it with. An
// empty Template renders the file named by the templateFile setting and an
// empty Subpart renders the whole page.
type RenderRequest struct {
	Template string            `json:"template"`
	Subpart  string            `json:"subpart"`
	Language string            `json:"language"`
	Markers  map[string]string `json:"markers"`
	Hide     []string          `json:"hide"`
	Minify   bool              `json:"minify"`
}

// labelSource provides the labels stored in the database.
type labelSource interface {
	Catalog(ctx context.Context) (*locallang.Catalog, error)
}

// Renderer renders pages from the templates of a TemplateManager.
type Renderer struct {
	tm     *templating.TemplateManager
	labels labelSource
	config *RenderConfig
	logger *slog.Logger
}

// NewRenderer creates a Renderer. labels may be nil.
func NewRenderer(tm *templating.TemplateManager, labels labelSource, config *RenderConfig, logger *slog.Logger) *Renderer {
	return &Renderer{
		tm:     tm,
		labels: labels,
		config: config,
		logger: logger,
	}
}

// Render renders req and returns the result.
func (r *Renderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	_, out, err := r.render(ctx, req)
	return out, err
}

// RenderToFile renders req and writes the result atomically to path.
func (r *Renderer) RenderToFile(ctx context.Context, req RenderRequest, path string) error {
	pageCtx, out, err := r.render(ctx, req)
	if err != nil {
		return err
	}
	return pageCtx.WriteFile(path, out)
}

func (r *Renderer) render(ctx context.Context, req RenderRequest) (*page.Context, string, error) {
	source, err := r.loadConf()
	if err != nil {
		return nil, "", err
	}
	catalog, err := r.loadLabels(ctx)
	if err != nil {
		return nil, "", err
	}

	opts := []page.Option{page.WithLogger(r.logger)}
	if req.Minify || r.config.Minify {
		opts = append(opts, page.WithMinify())
	}
	pageCtx := page.New(r.tm, opts...)

	lang := req.Language
	if lang == "" {
		lang = r.config.Language
	}
	localizer := catalog.Localizer(lang)

	tmplConfig := r.tm.GetConfig()
	h, err := templating.NewTemplateHelper(r.logger, &tmplConfig, source, localizer, pageCtx)
	if err != nil {
		return nil, "", err
	}

	if req.Template != "" {
		text, err := pageCtx.LoadTemplateText(req.Template)
		if err != nil {
			return nil, "", err
		}
		h.Process(text)
	} else if err = h.LoadTemplate(); err != nil {
		return nil, "", err
	}

	if err = h.SetLabels(); err != nil {
		return nil, "", err
	}
	if err = h.SetCSS(); err != nil {
		return nil, "", err
	}
	h.AddCSSToPageHeader()

	for name, content := range req.Markers {
		h.SetMarker(name, content, "")
	}
	h.HideNames(req.Hide, "")

	out, err := h.GetSubpart(req.Subpart)
	if err != nil {
		return nil, "", err
	}
	if req.Subpart == "" {
		out = pageCtx.Assemble(out)
	}

	r.logger.DebugContext(ctx, "Rendered template",
		"template", req.Template,
		"subpart", req.Subpart,
		"language", localizer.Language(),
		"bytes", len(out),
	)
	return pageCtx, out, nil
}

func (r *Renderer) loadConf() (*conf.Source, error) {
	opts := []conf.Option{conf.WithLogger(r.logger)}
	for _, path := range r.config.ConfFiles {
		opts = append(opts, conf.WithFile(path))
	}
	if r.config.ConfRoot != "" {
		opts = append(opts, conf.WithRoot(r.config.ConfRoot))
	}
	if r.config.FlexformFile != "" {
		opts = append(opts, conf.WithFlexformFile(r.config.FlexformFile))
	}
	return conf.Load(opts...)
}

// loadLabels merges the label files with the labels in the database.
func (r *Renderer) loadLabels(ctx context.Context) (*locallang.Catalog, error) {
	catalog := locallang.NewCatalog()
	for _, path := range r.config.LabelFiles {
		c, err := locallang.LoadYAMLFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load labels: %w", err)
		}
		catalog.Merge(c)
	}
	if r.labels != nil {
		c, err := r.labels.Catalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read labels from database: %w", err)
		}
		catalog.Merge(c)
	}
	return catalog, nil
}
