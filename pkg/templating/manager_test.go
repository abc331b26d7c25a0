package templating

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// setupTestManager creates a TemplateManager over a temporary data directory
// containing one template.
func setupTestManager(tb testing.TB) *TemplateManager {
	tb.Helper()

	dataDir := tb.TempDir()
	templatesPath := filepath.Join(dataDir, "templates")
	if err := os.Mkdir(templatesPath, 0755); err != nil {
		tb.Fatalf("failed to create templates dir: %v", err)
	}

	dummyTmplPath := filepath.Join(templatesPath, "dummy.html")
	content := `<!-- ###MAIN### -->Hello ###NAME###<!-- ###MAIN### -->`
	if err := os.WriteFile(dummyTmplPath, []byte(content), 0644); err != nil {
		tb.Fatalf("failed to write dummy template: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := NewTemplateManager(logger, DefaultConfig(), dataDir)
	if err != nil {
		tb.Fatalf("NewTemplateManager failed: %v", err)
	}
	return tm
}

// writeTemplate adds a file below the manager's template dir and refreshes.
func writeTemplate(tb testing.TB, tm *TemplateManager, name, content string) {
	tb.Helper()
	path := filepath.Join(tm.GetTemplateDir(), filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tb.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tb.Fatalf("failed to write template %s: %v", name, err)
	}
	if err := tm.Refresh(); err != nil {
		tb.Fatalf("failed to refresh after writing template %s: %v", name, err)
	}
}

func TestNewTemplateManager(t *testing.T) {
	tm := setupTestManager(t)
	if tm == nil {
		t.Fatal("NewTemplateManager returned nil manager")
	}
	names := tm.GetTemplateNames()
	if len(names) != 1 || names[0] != "dummy.html" {
		t.Errorf("expected [dummy.html], got %v", names)
	}
}

func TestNewTemplateManager_MissingDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := NewTemplateManager(logger, DefaultConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("expected no error for a missing template dir, got %v", err)
	}
	if names := tm.GetTemplateNames(); len(names) != 0 {
		t.Errorf("expected no templates, got %v", names)
	}
}

func TestManager_Refresh(t *testing.T) {
	tm := setupTestManager(t)
	initialCount := len(tm.GetTemplateNames())

	writeTemplate(t, tm, "mail/new.html", "New Content")
	writeTemplate(t, tm, "notes.txt", "ignored")

	names := tm.GetTemplateNames()
	if len(names) != initialCount+1 {
		t.Fatalf("expected %d templates after refresh, got %d: %v", initialCount+1, len(names), names)
	}
	if !slices.Contains(names, "mail/new.html") {
		t.Errorf("nested template missing from %v", names)
	}

	if err := os.Remove(filepath.Join(tm.GetTemplateDir(), "dummy.html")); err != nil {
		t.Fatalf("failed to remove template: %v", err)
	}
	if err := tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := tm.Text("dummy.html"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected removed template to be gone, got %v", err)
	}
}

func TestManager_Text(t *testing.T) {
	tm := setupTestManager(t)
	text, err := tm.Text("dummy.html")
	if err != nil {
		t.Fatalf("Text failed for valid template: %v", err)
	}
	if !strings.Contains(text, "###NAME###") {
		t.Errorf("unexpected template text %q", text)
	}

	_, err = tm.Text("nonexistent.html")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestManager_MaxTemplateSize(t *testing.T) {
	tm := setupTestManager(t)
	config := DefaultConfig()
	config.MaxTemplateSize = 8
	tm.SetConfig(config)

	writeTemplate(t, tm, "small.html", "tiny")
	names := tm.GetTemplateNames()
	if !slices.Equal(names, []string{"small.html"}) {
		t.Errorf("expected only small.html to be loaded, got %v", names)
	}
}

func TestManager_NewTemplate(t *testing.T) {
	tm := setupTestManager(t)
	text, err := tm.Text("dummy.html")
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}

	tmpl := tm.NewTemplate()
	tmpl.Process(text)
	tmpl.SetMarker("name", "World", "")
	got, err := tmpl.GetSubpart("MAIN")
	if err != nil {
		t.Fatalf("GetSubpart failed: %v", err)
	}
	if got != "Hello World" {
		t.Errorf("expected 'Hello World', got %q", got)
	}
}

func TestManager_SetConfig(t *testing.T) {
	tm := setupTestManager(t)
	newConfig := DefaultConfig()
	newConfig.Extensions = []string{".tmpl"}
	tm.SetConfig(newConfig)

	if got := tm.GetConfig(); !slices.Equal(got.Extensions, []string{".tmpl"}) {
		t.Errorf("SetConfig failed to update Extensions: got %v", got.Extensions)
	}

	writeTemplate(t, tm, "page.tmpl", "x")
	if names := tm.GetTemplateNames(); !slices.Equal(names, []string{"page.tmpl"}) {
		t.Errorf("expected only page.tmpl after changing extensions, got %v", names)
	}
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	if err := config.Validate(); err == nil {
		t.Error("expected an error for a missing PrefixID")
	}

	config.PrefixID = "tx_seminars_pi1"
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	config.Extensions = []string{"html"}
	if err := config.Validate(); err == nil {
		t.Error("expected an error for an extension without a dot")
	}
}

// BenchmarkRefresh measures reloading a directory of templates.
func BenchmarkRefresh(b *testing.B) {
	tm := setupTestManager(b)
	for i := range 50 {
		path := filepath.Join(tm.GetTemplateDir(), "bench", strings.Repeat("x", i%5+1)+string(rune('a'+i%26))+".html")
		_ = os.MkdirAll(filepath.Dir(path), 0755)
		_ = os.WriteFile(path, []byte(strings.Repeat("<p>###LABEL_TEXT###</p>", 100)), 0644)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Refresh()
	}
}
