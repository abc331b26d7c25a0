// Package conf provides the template configuration: a base configuration
// assembled from defaults and YAML or TOML files, and an optional flexform
// document whose values take priority over the base configuration.
package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/CTAG07/hashmark/pkg/flexform"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrUnsupportedFormat is returned for configuration files that are neither
// YAML nor TOML.
var ErrUnsupportedFormat = errors.New("conf: unsupported file format")

// Option configures Load.
type Option func(*loader)

type loader struct {
	defaults map[string]any
	files    []string
	root     string
	flexPath string
	flex     *flexform.Data
	logger   *slog.Logger
}

// WithDefaults sets the values every other layer is merged onto. Keys may
// use "." to address nested values.
func WithDefaults(defaults map[string]any) Option {
	return func(l *loader) { l.defaults = defaults }
}

// WithFile adds a base configuration file. Files are merged in the order
// they are given, later files override earlier ones.
func WithFile(path string) Option {
	return func(l *loader) { l.files = append(l.files, path) }
}

// WithRoot restricts the configuration to the subtree at path, for example
// "plugin.tx_seminars_pi1".
func WithRoot(path string) Option {
	return func(l *loader) { l.root = path }
}

// WithFlexformFile reads the flexform document at path.
func WithFlexformFile(path string) Option {
	return func(l *loader) { l.flexPath = path }
}

// WithFlexform uses an already parsed flexform document.
func WithFlexform(data *flexform.Data) Option {
	return func(l *loader) { l.flex = data }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) { l.logger = logger }
}

// Source answers configuration lookups for a template helper.
type Source struct {
	base   *koanf.Koanf
	flex   *flexform.Data
	logger *slog.Logger
}

// Load assembles a Source from the given options.
func Load(opts ...Option) (*Source, error) {
	l := &loader{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")
	if l.defaults != nil {
		if err := k.Load(confmap.Provider(l.defaults, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load defaults: %w", err)
		}
	}

	for _, path := range l.files {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err = k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		l.logger.Debug("Loaded configuration file", "path", path)
	}

	if l.root != "" {
		k = k.Cut(l.root)
	}

	flex := l.flex
	if l.flexPath != "" {
		raw, err := file.Provider(l.flexPath).ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("failed to read flexform %s: %w", l.flexPath, err)
		}
		if flex, err = flexform.ParseString(string(raw)); err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded flexform", "path", l.flexPath, "values", flex.Len())
	}

	return &Source{base: k, flex: flex, logger: l.logger}, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Lookup returns the value of key. A non-empty flexform value in sheet wins
// over the base configuration; sheet is ignored for the base configuration.
func (s *Source) Lookup(sheet, key string) (string, bool) {
	if v, ok := s.flex.Value(sheet, key); ok && v != "" {
		return v, true
	}
	if !s.base.Exists(key) {
		return "", false
	}
	return s.base.String(key), true
}

// All returns the merged base configuration as a nested map.
func (s *Source) All() map[string]any {
	return s.base.Raw()
}

// Flexform returns the flexform document, which may be nil.
func (s *Source) Flexform() *flexform.Data {
	return s.flex
}
