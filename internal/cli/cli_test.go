package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARBOR_CONFIG_DIR", dir)
	t.Setenv("ARBOR_CONFIG", "")
	t.Setenv("ARBOR_CATALOG", "")
	t.Setenv("ARBOR_LOG_LEVEL", "")
	t.Setenv("ARBOR_FORMAT", "")
	return dir
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("arbor %v: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("stdout is not a JSON envelope: %v\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected a data key, got %v", env)
	}
	return env
}

func TestVersion(t *testing.T) {
	isolate(t)
	env := mustRun(t, "version")
	v, _ := env["data"].(map[string]any)["version"].(string)
	if v == "" {
		t.Fatalf("expected a version, got %v", env)
	}
}

func TestTemplatesFormats(t *testing.T) {
	isolate(t)
	env := mustRun(t, "templates")
	cats, _ := env["data"].([]any)
	if len(cats) != 4 {
		t.Fatalf("expected 4 built-in categories, got %d", len(cats))
	}

	stdout, _, err := runCLI(t, []string{"templates", "--format", "yaml"})
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(stdout), "name: Basic") {
		t.Fatalf("yaml output should list categories:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"templates", "--format", "edn"})
	if err != nil {
		t.Fatalf("edn: %v", err)
	}
	if !strings.HasPrefix(string(stdout), "{:data [") {
		t.Fatalf("unexpected edn output:\n%s", stdout)
	}

	if _, _, err := runCLI(t, []string{"templates", "--format", "toml"}); err == nil {
		t.Fatalf("unknown formats must fail")
	}
}

func TestTemplatesExportAndReload(t *testing.T) {
	dir := isolate(t)
	for _, name := range []string{"catalog.sqlite", "catalog.yaml"} {
		path := filepath.Join(dir, name)
		env := mustRun(t, "templates", "--export", path)
		n, _ := env["data"].(map[string]any)["templates"].(float64)
		if n == 0 {
			t.Fatalf("%s: expected a template count, got %v", name, env)
		}
		again := mustRun(t, "--catalog", path, "templates")
		if got := len(again["data"].([]any)); got != 4 {
			t.Fatalf("%s: reloaded catalog has %d categories", name, got)
		}
	}
	if _, _, err := runCLI(t, []string{"templates", "--export", filepath.Join(dir, "x.csv")}); err == nil {
		t.Fatalf("unknown export extensions must fail")
	}
}

const reorderScript = `
canvas: {width: 40, height: 20}
outline: {width: 30, height: 30}
steps:
  - drag: {template: div, label: A}
  - drop: {view: canvas, x: 5, y: 5}
  - drag: {template: div, label: B}
  - drop: {view: canvas, x: 5, y: 10}
  - drag: {template: div, label: C}
  - drop: {view: canvas, x: 5, y: 15}
  - drag: {node: node-1}
    from: canvas
  - drop: {view: canvas, x: 5, y: 6}
    expect: ok
`

// treeLines renders a decoded snapshot as indented "id label" lines.
func treeLines(nodes []any, depth int) []string {
	var out []string
	for _, raw := range nodes {
		n := raw.(map[string]any)
		out = append(out, fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), n["id"], n["label"]))
		if kids, ok := n["children"].([]any); ok {
			out = append(out, treeLines(kids, depth+1)...)
		}
	}
	return out
}

func TestPlayPrintsTreeAndChanges(t *testing.T) {
	dir := isolate(t)
	scriptPath := filepath.Join(dir, "reorder.yaml")
	if err := os.WriteFile(scriptPath, []byte(reorderScript), 0o600); err != nil {
		t.Fatal(err)
	}
	changes := filepath.Join(dir, "changes.jsonl")

	env := mustRun(t, "--changes", changes, "play", scriptPath)
	data := env["data"].(map[string]any)
	// Padding spreads the rows while dragging; y=6 is B's bottom border.
	want := []string{"node-2 B", "node-1 A", "node-3 C"}
	if diff := cmp.Diff(want, treeLines(data["tree"].([]any), 0)); diff != "" {
		t.Fatalf("tree (-want +got):\n%s", diff)
	}
	if steps := data["steps"].([]any); len(steps) != 8 {
		t.Fatalf("expected 8 step results, got %d", len(steps))
	}

	b, err := os.ReadFile(changes)
	if err != nil {
		t.Fatalf("read changes: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 committed changes, got %d:\n%s", len(lines), b)
	}
	var last map[string]any
	if err := json.Unmarshal([]byte(lines[3]), &last); err != nil {
		t.Fatalf("last change: %v", err)
	}
	if last["session"] != data["session"] || last["seq"].(float64) != 4 || last["selected"] != "node-1" {
		t.Fatalf("unexpected last change %v", last)
	}
}

func TestPlayFailsOnUnmetExpectation(t *testing.T) {
	dir := isolate(t)
	scriptPath := filepath.Join(dir, "bad.yaml")
	body := "steps:\n  - undo: true\n    expect: ok\n"
	if err := os.WriteFile(scriptPath, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, stderr, err := runCLI(t, []string{"play", "--quiet", scriptPath})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(string(stderr), "nothing to undo") {
		t.Fatalf("stderr should explain the failure:\n%s", stderr)
	}
	if !strings.Contains(string(stdout), `"tree":[]`) {
		t.Fatalf("the tree is still printed:\n%s", stdout)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	env := mustRun(t, "config", "init")
	path, _ := env["data"].(map[string]any)["path"].(string)
	if path != filepath.Join(dir, "config.json") {
		t.Fatalf("unexpected path %q", path)
	}
	if _, _, err := runCLI(t, []string{"config", "init"}); err == nil {
		t.Fatalf("init must not overwrite without --force")
	}
	mustRun(t, "config", "init", "--force")

	show := mustRun(t, "config", "show")
	cfg := show["data"].(map[string]any)
	if cfg["debounceMs"].(float64) != 150 || cfg["canvasAxisMargin"].(float64) != 2 {
		t.Fatalf("unexpected config %v", cfg)
	}
}

func TestBadConfigIsReported(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"debounceMs": 9999}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, []string{"version"}); err == nil || !strings.Contains(err.Error(), "debounceMs") {
		t.Fatalf("expected a config error, got %v", err)
	}
}
