package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/pipeline"
)

const samplePath = "../../pkg/model/testdata/sample.xmi"

type testHome struct {
	cache  string
	config string
}

// isolate points every XDG directory and credential variable at the test.
func isolate(t *testing.T) testHome {
	t.Helper()
	root := t.TempDir()
	h := testHome{
		cache:  filepath.Join(root, "cache", appName),
		config: filepath.Join(root, "config"),
	}
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_CONFIG_HOME", h.config)
	for _, k := range []string{"LEANIX_INSTANCE", "LEANIX_API_TOKEN", "XMIGRAPH_CACHE", "XMIGRAPH_ADDR"} {
		t.Setenv(k, "")
	}
	return h
}

// runCLI executes the root command with args and a quiet logger.
func runCLI(t *testing.T, args ...string) (*CLI, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return c, root.Execute()
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	want := []string{"extract", "graph", "preview", "publish", "bookmarks", "auth", "serve", "config", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestGraphCommand(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "overview.xml")
	report := captureReport(t)

	if _, err := runCLI(t, "graph", samplePath, "-d", "Overview", "-o", out); err != nil {
		t.Fatalf("graph: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "<mxGraphModel") {
		t.Errorf("output = %.60q", data)
	}
	if !containsAll(report.String(), "Overview", "vertices", "fresh") {
		t.Errorf("report = %q", report.String())
	}

	// Second run is served from the file cache.
	report.Reset()
	if _, err := runCLI(t, "graph", samplePath, "-d", "Overview", "-o", out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(report.String(), "cached") {
		t.Errorf("second report = %q, want cached", report.String())
	}
}

func TestGraphCommandAmbiguousDiagram(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "graph", samplePath, "-o", filepath.Join(t.TempDir(), "x.xml"))
	if err == nil || !strings.Contains(err.Error(), "Overview") {
		t.Errorf("error = %v, want a list of diagram names", err)
	}
}

func TestGraphCommandStyleOverrides(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	styles := filepath.Join(dir, "styles.toml")
	os.WriteFile(styles, []byte(`Class = "shape=cube;"`), 0o600)
	out := filepath.Join(dir, "out.xml")

	if _, err := runCLI(t, "graph", samplePath, "-d", "Overview", "--styles", styles, "--no-cache", "-o", out); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "shape=cube;") {
		t.Error("style override missing from output")
	}
}

func TestExtractCommandJSON(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "diagrams.json")
	captureReport(t)

	if _, err := runCLI(t, "extract", samplePath, "-o", out); err != nil {
		t.Fatalf("extract: %v", err)
	}
	data, _ := os.ReadFile(out)
	if !containsAll(string(data), `"name": "Overview"`, `"name": "Empty"`) {
		t.Errorf("json = %.200s", data)
	}
}

func TestPreviewCommandDOT(t *testing.T) {
	isolate(t)
	base := filepath.Join(t.TempDir(), "overview")
	captureReport(t)

	if _, err := runCLI(t, "preview", samplePath, "-d", "Overview", "-f", "dot,json", "-o", base); err != nil {
		t.Fatalf("preview: %v", err)
	}
	for _, ext := range []string{".dot", ".json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s output: %v", ext, err)
		}
	}
}

func TestPublishRequiresCredentials(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, "publish", samplePath, "-d", "Overview")
	if err == nil || !strings.Contains(err.Error(), "LEANIX_API_TOKEN") {
		t.Errorf("error = %v, want missing credentials", err)
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	isolate(t)
	t.Setenv("LEANIX_INSTANCE", "acme.leanix.net")
	t.Setenv("LEANIX_API_TOKEN", "super-secret-token")

	r, w, _ := os.Pipe()
	saved := os.Stdout
	os.Stdout = w
	_, err := runCLI(t, "config", "show")
	w.Close()
	os.Stdout = saved
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	io.Copy(&buf, r)

	if strings.Contains(buf.String(), "super-secret-token") {
		t.Error("config show leaked the token")
	}
	if !containsAll(buf.String(), "acme.leanix.net", "****oken") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != pipeline.FormatSVG {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("svg, png"); len(got) != 2 || got[1] != "png" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestRedact(t *testing.T) {
	if got := redact("abc"); got != "****" {
		t.Errorf("redact(short) = %q", got)
	}
	if got := redact("0123456789"); got != "****6789" {
		t.Errorf("redact = %q", got)
	}
}

func TestDiagramListModel(t *testing.T) {
	diagrams := []model.Diagram{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	m := NewDiagramListModel(diagrams)

	press := func(m tea.Model, key string) tea.Model {
		var msg tea.KeyMsg
		switch key {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		}
		next, _ := m.Update(msg)
		return next
	}

	var cur tea.Model = m
	cur = press(cur, "down")
	cur = press(cur, "down")
	cur = press(cur, "down") // clamped at the last row
	cur = press(cur, "up")
	cur = press(cur, "enter")

	got := cur.(DiagramListModel)
	if got.Selected == nil || got.Selected.Name != "B" {
		t.Errorf("selected = %+v, want B", got.Selected)
	}
	if !strings.Contains(got.View(), "Select Diagram") {
		t.Error("view should render a title")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2021, 3, 10, 12, 0, 0, 0, time.Local)
	tests := []struct {
		in   string
		want string
	}{
		{"2021-03-10 11:30:00", "30m ago"},
		{"2021-03-10 07:00:00", "5h ago"},
		{"2021-03-08 12:00:00", "2d ago"},
		{"2021-03-02 11:30:00", "Mar 2, 2021"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.in, now); got != tt.want {
			t.Errorf("formatRelativeTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
