package templating

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/CTAG07/hashmark/pkg/marker"
)

const (
	// LabelPrefix is the marker prefix SetLabels fills with localized labels.
	LabelPrefix = "label"
	// ClassPrefix is the marker prefix SetCSS fills with class attributes.
	ClassPrefix = "class"

	templateFileKey = "templateFile"
	cssFileKey      = "cssFile"
)

// ConfigSource looks up configuration values by flexform sheet and key.
type ConfigSource interface {
	Lookup(sheet, key string) (string, bool)
}

// Localizer returns the label for a key in the current language, or an empty
// string.
type Localizer interface {
	Label(key string) string
}

// RenderingContext loads template files and collects data for the page
// header.
type RenderingContext interface {
	LoadTemplateText(name string) (string, error)
	AppendHeaderData(fragment string)
}

// TemplateHelper is a marker template bound to the configuration, labels and
// page of a plugin. All marker.Template methods are available on it.
// A TemplateHelper is not safe for concurrent use.
type TemplateHelper struct {
	*marker.Template

	logger    *slog.Logger
	config    *Config
	conf      ConfigSource
	localizer Localizer
	ctx       RenderingContext
}

// NewTemplateHelper validates config and returns a TemplateHelper with an
// empty, unprocessed template. None of the collaborators may be nil.
func NewTemplateHelper(logger *slog.Logger, config *Config, conf ConfigSource, localizer Localizer, ctx RenderingContext) (*TemplateHelper, error) {
	if config == nil {
		return nil, errors.New("templating: config must not be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid templating config: %w", err)
	}
	if conf == nil || localizer == nil || ctx == nil {
		return nil, errors.New("templating: config source, localizer and rendering context are required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []marker.Option{marker.WithLogger(logger)}
	if config.LegacyNames {
		opts = append(opts, marker.WithLegacyNames())
	}

	return &TemplateHelper{
		Template:  marker.New(opts...),
		logger:    logger,
		config:    config,
		conf:      conf,
		localizer: localizer,
		ctx:       ctx,
	}, nil
}

// ConfValue returns the configuration value key. A non-empty value in the
// given flexform sheet wins over the base configuration. An empty sheet means
// the default sheet. Missing keys yield an empty string.
func (h *TemplateHelper) ConfValue(key, sheet string) string {
	if sheet == "" {
		sheet = h.config.DefaultSheet
	}
	value, _ := h.conf.Lookup(sheet, key)
	return value
}

// LoadTemplate reads the template file named by the configuration value
// templateFile and processes it.
func (h *TemplateHelper) LoadTemplate() error {
	name := h.ConfValue(templateFileKey, h.config.TemplateSheet)
	text, err := h.ctx.LoadTemplateText(name)
	if err != nil {
		return fmt.Errorf("failed to load template %q: %w", name, err)
	}
	h.Process(text)
	h.logger.Debug("Template loaded", "file", name)
	return nil
}

// SetLabels fills every ###LABEL_*### marker in the template with the label
// of the same name, lower-cased: ###LABEL_FOO### gets the label "label_foo".
func (h *TemplateHelper) SetLabels() error {
	names, err := h.FindPrefixedMarkerNames(LabelPrefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		h.SetMarker(name, h.localizer.Label(strings.ToLower(name)), "")
	}
	return nil
}

// SetCSS fills every ###CLASS_*### marker in the template with a class
// attribute built from the configuration value of the same name,
// lower-cased. Markers without a configured class become empty.
func (h *TemplateHelper) SetCSS() error {
	names, err := h.FindPrefixedMarkerNames(ClassPrefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		h.SetMarker(name, h.ClassAttribute(h.ConfValue(strings.ToLower(name), "")), "")
	}
	return nil
}

// ClassAttribute returns a class attribute for className, prefixed with the
// plugin's class prefix: with the prefix ID "tx_seminars_pi1" the class
// "title" becomes class="tx-seminars-pi1-title". An empty className yields an
// empty string.
func (h *TemplateHelper) ClassAttribute(className string) string {
	if className == "" {
		return ""
	}
	return `class="` + h.classPrefix() + "-" + html.EscapeString(className) + `"`
}

func (h *TemplateHelper) classPrefix() string {
	return strings.ReplaceAll(h.config.PrefixID, "_", "-")
}

// AddCSSToPageHeader adds a style block importing the configuration value
// cssFile to the page header. Nothing is added if cssFile is not set.
func (h *TemplateHelper) AddCSSToPageHeader() {
	file := h.ConfValue(cssFileKey, h.config.TemplateSheet)
	if file == "" {
		return
	}
	h.ctx.AppendHeaderData(cssImport(file))
}

func cssImport(file string) string {
	return `<style type="text/css">@import "` + html.EscapeString(file) + `";</style>`
}
