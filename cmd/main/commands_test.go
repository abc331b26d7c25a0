package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCommand runs the root command with args against config and returns
// stdout.
func runCommand(t *testing.T, config *Config, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(config.Server.DataDir, "config.json")
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err = cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	config := setupTestConfig(t)
	out, err := runCommand(t, config, "render", "page.html",
		"--subpart", "content",
		"--set", "note_text=Booked out",
		"--lang", "de",
	)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := `<h1 class="tx-hashmark-pi1-title">Titel</h1><p>Booked out</p>` + "\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestRenderCommand_Hide(t *testing.T) {
	config := setupTestConfig(t)
	out, err := runCommand(t, config, "render", "--subpart", "content", "--hide", "note")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(out, "<p>") {
		t.Errorf("hidden subpart was rendered: %q", out)
	}
}

func TestRenderCommand_OutFile(t *testing.T) {
	config := setupTestConfig(t)
	path := filepath.Join(config.Server.DataDir, "out.html")
	out, err := runCommand(t, config, "render", "page.html", "--set", "title=Events", "--out", path, "--minify")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !strings.Contains(string(data), "<title>Events</title>") {
		t.Errorf("unexpected page content %q", data)
	}
}

func TestRenderCommand_BadAssignment(t *testing.T) {
	config := setupTestConfig(t)
	if _, err := runCommand(t, config, "render", "--set", "novalue"); err == nil {
		t.Error("expected an error for an assignment without '='")
	}
}

func TestLabelsCommands(t *testing.T) {
	config := setupTestConfig(t)
	labels := filepath.Join(config.Server.DataDir, "import.yaml")
	if err := os.WriteFile(labels, []byte("default:\n  label_a: A\nfr:\n  label_a: Ah\n"), 0644); err != nil {
		t.Fatalf("failed to write labels: %v", err)
	}

	out, err := runCommand(t, config, "labels", "import", labels)
	if err != nil {
		t.Fatalf("labels import failed: %v", err)
	}
	if out != "imported 2 labels\n" {
		t.Errorf("unexpected import output %q", out)
	}

	out, err = runCommand(t, config, "labels", "list")
	if err != nil {
		t.Fatalf("labels list failed: %v", err)
	}
	if want := "default\tlabel_a\tA\nfr\tlabel_a\tAh\n"; out != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	if _, err = runCommand(t, config, "labels", "delete", "fr", "label_a"); err != nil {
		t.Fatalf("labels delete failed: %v", err)
	}
	out, err = runCommand(t, config, "labels", "list", "--lang", "fr")
	if err != nil {
		t.Fatalf("labels list failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected no french labels after delete, got %q", out)
	}
}

func TestConfCommand(t *testing.T) {
	config := setupTestConfig(t)
	out, err := runCommand(t, config, "conf")
	if err != nil {
		t.Fatalf("conf failed: %v", err)
	}
	for _, want := range []string{
		"[plugin]",
		"templateFile = 'page.html'",
		"[templating]",
		"prefix_id = 'tx_hashmark_pi1'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("conf output does not contain %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "hashmark version "+Version) {
		t.Errorf("unexpected version output %q", out.String())
	}
}

func TestParseAssignments(t *testing.T) {
	markers, err := parseAssignments([]string{"title=Hello", "empty=", "eq=a=b"})
	if err != nil {
		t.Fatalf("parseAssignments failed: %v", err)
	}
	want := map[string]string{"title": "Hello", "empty": "", "eq": "a=b"}
	for k, v := range want {
		if markers[k] != v {
			t.Errorf("marker %q: expected %q, got %q", k, v, markers[k])
		}
	}
	if _, err = parseAssignments([]string{"=value"}); err == nil {
		t.Error("expected an error for an empty name")
	}
}
