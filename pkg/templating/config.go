package templating

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds all configuration options for the templating facade.
type Config struct {
	// PrefixID identifies the plugin the templates belong to, for example
	// "tx_seminars_pi1". It is the base of all generated CSS class names.
	PrefixID string `json:"prefix_id" toml:"prefix_id" validate:"required,excludesall=\" <>"`

	// DefaultSheet is the flexform sheet used when a configuration value is
	// looked up without naming a sheet.
	DefaultSheet string `json:"default_sheet" toml:"default_sheet" validate:"required"`

	// TemplateSheet is the flexform sheet that holds templateFile and cssFile.
	TemplateSheet string `json:"template_sheet" toml:"template_sheet" validate:"required"`

	// LegacyNames accepts any marker name that contains no '#' instead of
	// the strict letter, digit and underscore grammar.
	LegacyNames bool `json:"legacy_names" toml:"legacy_names"`

	// Extensions lists the file extensions the TemplateManager loads.
	Extensions []string `json:"extensions" toml:"extensions" validate:"min=1,dive,startswith=."`

	// MaxTemplateSize is the largest template file in bytes that will be
	// loaded. Zero disables the limit.
	MaxTemplateSize int64 `json:"max_template_size" toml:"max_template_size" validate:"gte=0"`
}

// DefaultConfig returns a Config with default values. PrefixID is left empty
// and has to be set before the Config passes Validate.
func DefaultConfig() *Config {
	return &Config{
		DefaultSheet:    "sDEF",
		TemplateSheet:   "s_template_special",
		LegacyNames:     false,
		Extensions:      []string{".html", ".htm"},
		MaxTemplateSize: 1048576, // 1MB
	}
}

// Validate checks the Config for missing or malformed values.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
