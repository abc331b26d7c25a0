package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/CTAG07/hashmark/pkg/templating"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the settings of the preview API and the label database.
type ServerConfig struct {
	ApiAddr      string `json:"api_addr" toml:"api_addr" validate:"required,hostname_port"`
	LogLevel     string `json:"log_level" toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	DataDir      string `json:"data_dir" toml:"data_dir" validate:"required"`
	DatabasePath string `json:"database_path" toml:"database_path" validate:"required"`
}

// RenderConfig describes where a page gets its configuration and labels from.
type RenderConfig struct {
	// ConfFiles are YAML or TOML files merged in order into the base
	// configuration.
	ConfFiles []string `json:"conf_files" toml:"conf_files"`
	// ConfRoot selects a subtree of the merged files, such as
	// "plugin.tx_seminars_pi1".
	ConfRoot string `json:"conf_root" toml:"conf_root"`
	// FlexformFile is an optional T3FlexForms document whose values win over
	// the base configuration.
	FlexformFile string `json:"flexform_file" toml:"flexform_file"`
	// LabelFiles are YAML label files. Labels in the database win over them.
	LabelFiles []string `json:"label_files" toml:"label_files"`
	Language   string   `json:"language" toml:"language"`
	Minify     bool     `json:"minify" toml:"minify"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server    *ServerConfig      `json:"server_config" toml:"server_config" validate:"required"`
	Templates *templating.Config `json:"template_config" toml:"template_config" validate:"required"`
	Render    *RenderConfig      `json:"render_config" toml:"render_config" validate:"required"`
}

// DefaultServerConfig creates a server configuration with default values.
// The API only listens on localhost since it has no authentication.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ApiAddr:      "localhost:7278",
		LogLevel:     "info",
		DataDir:      "./data",
		DatabasePath: "./data/hashmark.db",
	}
}

// DefaultConfig returns the configuration written on first start.
func DefaultConfig() *Config {
	templates := templating.DefaultConfig()
	templates.PrefixID = "tx_hashmark_pi1"
	return &Config{
		Server:    DefaultServerConfig(),
		Templates: templates,
		Render: &RenderConfig{
			ConfFiles:  []string{},
			LabelFiles: []string{},
			Language:   "default",
		},
	}
}

// defaultConfigPath returns config.json in the user's configuration directory.
func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "hashmark", "config.json")
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string, logger *slog.Logger) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			err = atomic.WriteFile(path, bytes.NewReader(data))
		}
		if err != nil {
			// Defaults are still usable without the file.
			logger.Warn("Failed to write default config file", "path", path, "error", err)
		} else {
			logger.Info("Wrote default config file", "path", path)
		}
		return config, nil
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the whole configuration, including the template settings.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
