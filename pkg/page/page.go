// Package page collects everything needed to turn a rendered template into a
// complete HTML page: the source of template text, fragments for the page
// header, optional minification and atomic output.
package page

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// Loader returns the text of a named template.
type Loader interface {
	Text(name string) (string, error)
}

// Option configures a Context.
type Option func(*Context)

// WithMinify minifies assembled pages.
func WithMinify() Option {
	return func(c *Context) { c.minify = true }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

// Context is the rendering context of a single page.
type Context struct {
	loader     Loader
	headerData []string
	minify     bool
	logger     *slog.Logger
}

// New creates a Context that loads templates from loader.
func New(loader Loader, opts ...Option) *Context {
	c := &Context{
		loader: loader,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadTemplateText returns the text of the template name.
func (c *Context) LoadTemplateText(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("page: no template name given")
	}
	return c.loader.Text(name)
}

// AppendHeaderData adds a fragment to the page header. Identical fragments are
// added once.
func (c *Context) AppendHeaderData(fragment string) {
	for _, f := range c.headerData {
		if f == fragment {
			return
		}
	}
	c.headerData = append(c.headerData, fragment)
}

// HeaderData returns the collected header fragments in insertion order.
func (c *Context) HeaderData() []string {
	return append([]string(nil), c.headerData...)
}

// Assemble inserts the header fragments into body, right before </head> if
// the body has one and in front of the body otherwise, and minifies the
// result if enabled.
func (c *Context) Assemble(body string) string {
	out := body
	if len(c.headerData) > 0 {
		header := strings.Join(c.headerData, "\n")
		if i := indexFold(body, "</head>"); i >= 0 {
			out = body[:i] + header + "\n" + body[i:]
		} else {
			out = header + "\n" + body
		}
	}
	if c.minify {
		out = minifyHTML(out, c.logger)
	}
	return out
}

// WriteFile writes content to path atomically.
func (c *Context) WriteFile(path, content string) error {
	if err := atomic.WriteFile(path, bytes.NewReader([]byte(content))); err != nil {
		return fmt.Errorf("failed to write page %s: %w", path, err)
	}
	c.logger.Debug("Page written", "path", path, "bytes", len(content))
	return nil
}

// indexFold is strings.Index ignoring ASCII case.
func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.AddFunc("text/html", html.Minify)
	})
	return minifier
}

// minifyHTML minifies content and returns it unchanged if that fails.
func minifyHTML(content string, logger *slog.Logger) string {
	minified, err := getMinifier().String("text/html", content)
	if err != nil {
		logger.Warn("Failed to minify page", "error", err)
		return content
	}
	return minified
}
