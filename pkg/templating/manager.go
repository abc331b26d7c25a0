package templating

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/CTAG07/hashmark/pkg/marker"
)

// ErrTemplateNotFound is returned by Text for names that are not loaded.
var ErrTemplateNotFound = errors.New("templating: template not found")

// TemplateManager keeps the raw text of every template file below a template
// directory in memory. Templates are reloaded on Refresh, so files can be
// edited without restarting the application.
// All methods are concurrent-safe.
type TemplateManager struct {
	logger        *slog.Logger
	config        *Config
	templates     map[string]string
	templateNames []string
	templateDir   string
	mu            sync.RWMutex
}

// NewTemplateManager creates a TemplateManager for the "templates"
// subdirectory of dataDir and performs an initial Refresh. A missing template
// directory is not an error; the manager then starts out empty.
func NewTemplateManager(logger *slog.Logger, config *Config, dataDir string) (*TemplateManager, error) {
	if config == nil {
		config = DefaultConfig()
	}

	tm := &TemplateManager{
		logger:      logger,
		config:      config,
		templates:   map[string]string{},
		templateDir: filepath.Join(dataDir, "templates"),
	}

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Template manager initialized", "dir", tm.templateDir)
	return tm, nil
}

// SetConfig applies a new configuration. It takes effect on the next Refresh
// and for every template created with NewTemplate afterwards.
func (tm *TemplateManager) SetConfig(config *Config) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.config = config
}

// Refresh reloads all template files from the filesystem. Files are named by
// their slash-separated path relative to the template directory.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.logger.Info("Loading template files...")

	templates := map[string]string{}
	err := filepath.WalkDir(tm.templateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !tm.hasTemplateExtension(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if tm.config.MaxTemplateSize > 0 && info.Size() > tm.config.MaxTemplateSize {
			tm.logger.Warn("Skipping oversized template file", "path", path, "size", info.Size())
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(tm.templateDir, path)
		if err != nil {
			return err
		}
		templates[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			tm.logger.Error("failed to load template files", "error", err)
			return fmt.Errorf("failed to load templates from %s: %w", tm.templateDir, err)
		}
		tm.logger.Warn("Template directory does not exist", "dir", tm.templateDir)
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	slices.Sort(names)

	if len(names) == 0 {
		tm.logger.Warn("No template files found", "dir", tm.templateDir, "extensions", tm.config.Extensions)
	}

	tm.templates = templates
	tm.templateNames = names
	tm.logger.Info("Loaded template files", "count", len(names))
	return nil
}

func (tm *TemplateManager) hasTemplateExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range tm.config.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Text returns the raw content of the template name.
func (tm *TemplateManager) Text(name string) (string, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	text, ok := tm.templates[filepath.ToSlash(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return text, nil
}

// NewTemplate returns an empty marker template that follows the manager's
// name grammar and logs to the manager's logger.
func (tm *TemplateManager) NewTemplate() *marker.Template {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	opts := []marker.Option{marker.WithLogger(tm.logger)}
	if tm.config.LegacyNames {
		opts = append(opts, marker.WithLegacyNames())
	}
	return marker.New(opts...)
}

// GetConfig returns a copy of the current configuration.
// This mainly exists for concurrency-safety reasons.
func (tm *TemplateManager) GetConfig() Config {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return *tm.config
}

// GetTemplateNames returns the sorted names of the loaded templates.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return slices.Clone(tm.templateNames)
}

// GetTemplateDir returns the template dir that the TemplateManager uses.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templateDir
}
