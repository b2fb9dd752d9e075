package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/persist"
)

// newTestCLI returns a CLI whose settings store the roadmap under a temp dir.
func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "roadmap.toml")
	settings := fmt.Sprintf("[storage]\ndriver = \"file\"\ndir = %q\n", filepath.Join(dir, "data"))
	if err := os.WriteFile(path, []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New(io.Discard, log.WarnLevel)
	c.ConfigPath = path
	c.stdout = &out
	c.stderr = io.Discard
	return c, &out
}

// run executes one command line and returns its stdout.
func run(t *testing.T, c *CLI, out *bytes.Buffer, args ...string) (string, error) {
	t.Helper()
	out.Reset()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, c *CLI, out *bytes.Buffer, args ...string) string {
	t.Helper()
	s, err := run(t, c, out, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return s
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()

	want := []string{
		"show", "add", "add-child", "delete", "update", "expand", "collapse", "status",
		"move", "duplicate", "select", "connect", "disconnect", "direction", "layout",
		"fit", "reset", "import", "export", "browse", "serve", "storage", "completion",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestShow_SeedTree(t *testing.T) {
	c, out := newTestCLI(t)
	got := mustRun(t, c, out, "show")

	for _, want := range []string{"Full-Stack Web Development", "React Hooks", "Capstone Project", "16 concepts", "18 edges"} {
		if !strings.Contains(got, want) {
			t.Errorf("show output missing %q:\n%s", want, got)
		}
	}
	// Optional edges do not shape the tree.
	if n := strings.Count(got, "Capstone Project"); n != 1 {
		t.Errorf("Capstone drawn %d times, want 1", n)
	}
}

func TestCollapse_PersistsAcrossInvocations(t *testing.T) {
	c, out := newTestCLI(t)

	got := mustRun(t, c, out, "collapse", "frontend")
	if !strings.Contains(got, "7 concepts hidden") {
		t.Errorf("collapse output = %q", got)
	}

	got = mustRun(t, c, out, "show")
	if strings.Contains(got, "React Hooks") {
		t.Errorf("hidden concept still shown:\n%s", got)
	}
	if !strings.Contains(got, "[+2]") {
		t.Errorf("collapsed marker missing:\n%s", got)
	}
	if !strings.Contains(got, "7 hidden") {
		t.Errorf("hidden count missing:\n%s", got)
	}

	got = mustRun(t, c, out, "collapse", "frontend")
	if !strings.Contains(got, "7 concepts shown") {
		t.Errorf("expand output = %q", got)
	}
}

func TestShow_JSON(t *testing.T) {
	c, out := newTestCLI(t)
	mustRun(t, c, out, "collapse", "javascript")

	var view struct {
		Nodes         []json.RawMessage `json:"nodes"`
		HiddenNodeIDs []string          `json:"hiddenNodeIds"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, c, out, "show", "-f", "json")), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Nodes) != 11 || len(view.HiddenNodeIDs) != 5 {
		t.Errorf("visible = %d, hidden = %v", len(view.Nodes), view.HiddenNodeIDs)
	}
}

func TestShow_Table(t *testing.T) {
	c, out := newTestCLI(t)
	got := mustRun(t, c, out, "show", "--format", "table")
	for _, want := range []string{"Concept", "state-management", "in-progress"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q", want)
		}
	}
	if _, err := run(t, c, out, "show", "--format", "yaml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestShow_Concept(t *testing.T) {
	c, out := newTestCLI(t)
	got := mustRun(t, c, out, "show", "html-css")
	for _, want := range []string{"HTML & CSS", "completed", "Flexbox Froggy"} {
		if !strings.Contains(got, want) {
			t.Errorf("detail missing %q:\n%s", want, got)
		}
	}
	if _, err := run(t, c, out, "show", "nope"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
}

func TestAddChild_UpdateDelete(t *testing.T) {
	c, out := newTestCLI(t)

	mustRun(t, c, out, "add-child", "react", "React Router")

	// Find the new id through the JSON view.
	var view struct {
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"edges"`
		Nodes []struct {
			ID   string `json:"id"`
			Data struct {
				Label    string `json:"label"`
				Category string `json:"category"`
			} `json:"data"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal([]byte(mustRun(t, c, out, "show", "-f", "json")), &view); err != nil {
		t.Fatal(err)
	}
	id := ""
	for _, n := range view.Nodes {
		if n.Data.Label == "React Router" {
			id = n.ID
			if n.Data.Category != "core" {
				t.Errorf("child category = %q, want parent's core", n.Data.Category)
			}
		}
	}
	if id == "" {
		t.Fatal("added child not found")
	}
	linked := false
	for _, e := range view.Edges {
		linked = linked || (e.Source == "react" && e.Target == id)
	}
	if !linked {
		t.Error("child not linked to react")
	}

	got := mustRun(t, c, out, "show", "react")
	if !strings.Contains(got, id) {
		t.Errorf("react children miss %s:\n%s", id, got)
	}

	mustRun(t, c, out, "update", id, "--duration", "90", "--tags", "routing,spa", "--status", "in-progress")
	got = mustRun(t, c, out, "show", id)
	for _, want := range []string{"90 min", "routing, spa", "in-progress"} {
		if !strings.Contains(got, want) {
			t.Errorf("updated detail missing %q:\n%s", want, got)
		}
	}

	got = mustRun(t, c, out, "delete", id)
	if !strings.Contains(got, "1 edges removed") {
		t.Errorf("delete output = %q", got)
	}
	got = mustRun(t, c, out, "delete", id)
	if !strings.Contains(got, "nothing deleted") {
		t.Errorf("second delete output = %q", got)
	}
}

func TestAddChild_UnknownParent(t *testing.T) {
	c, out := newTestCLI(t)
	if _, err := run(t, c, out, "add-child", "ghost", "Topic"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("err = %v, want NODE_NOT_FOUND", err)
	}
}

func TestAdd(t *testing.T) {
	c, out := newTestCLI(t)
	node := `{"id":"go","position":{"x":10,"y":20},"data":{"label":"Go","status":"pending","category":"core"}}`

	mustRun(t, c, out, "add", node)
	got := mustRun(t, c, out, "show", "go")
	if !strings.Contains(got, "Go") || !strings.Contains(got, "10, 20") {
		t.Errorf("added node detail:\n%s", got)
	}

	tests := []struct {
		name string
		arg  string
	}{
		{"duplicate id", node},
		{"unknown field", `{"id":"x","bogus":1,"data":{"label":"X","status":"pending","category":"core"}}`},
		{"bad status", `{"id":"x","data":{"label":"X","status":"done","category":"core"}}`},
		{"empty label", `{"id":"x","data":{"label":"","status":"pending","category":"core"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, c, out, "add", tt.arg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUpdate_Rejects(t *testing.T) {
	c, out := newTestCLI(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no fields", []string{"update", "react"}, errors.ErrCodeInvalidInput},
		{"bad status", []string{"update", "react", "--status", "done"}, errors.ErrCodeInvalidStatus},
		{"bad category", []string{"update", "react", "--category", "misc"}, errors.ErrCodeInvalidInput},
		{"negative duration", []string{"update", "react", "--duration=-5"}, errors.ErrCodeInvalidInput},
		{"unknown node", []string{"update", "ghost", "--label", "X"}, errors.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, c, out, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestStatusAndExpand(t *testing.T) {
	c, out := newTestCLI(t)

	mustRun(t, c, out, "status", "react", "completed")
	if got := mustRun(t, c, out, "show", "react"); !strings.Contains(got, "completed") {
		t.Errorf("status not stored:\n%s", got)
	}
	if _, err := run(t, c, out, "status", "react", "done"); !errors.Is(err, errors.ErrCodeInvalidStatus) {
		t.Errorf("bad status err = %v", err)
	}

	if got := mustRun(t, c, out, "expand", "react"); !strings.Contains(got, "Expanded") {
		t.Errorf("expand output = %q", got)
	}
	if got := mustRun(t, c, out, "expand", "react"); !strings.Contains(got, "Folded") {
		t.Errorf("second expand output = %q", got)
	}
}

func TestConnectDisconnect(t *testing.T) {
	c, out := newTestCLI(t)

	got := mustRun(t, c, out, "connect", "html-css", "react")
	if !strings.Contains(got, "e-html-css-react") {
		t.Errorf("connect output = %q", got)
	}
	if got := mustRun(t, c, out, "connect", "html-css", "react"); !strings.Contains(got, "already exists") {
		t.Errorf("repeat connect output = %q", got)
	}

	if _, err := run(t, c, out, "connect", "capstone", "root", "-r", "prerequisite"); !errors.Is(err, errors.ErrCodeCycleWouldForm) {
		t.Errorf("cycle err = %v", err)
	}
	if _, err := run(t, c, out, "connect", "react", "ghost"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("unknown endpoint err = %v", err)
	}
	if _, err := run(t, c, out, "connect", "react", "docker", "-r", "sibling"); !errors.Is(err, errors.ErrCodeInvalidRelationship) {
		t.Errorf("bad relationship err = %v", err)
	}

	mustRun(t, c, out, "connect", "docker", "nodejs", "-r", "optional")
	mustRun(t, c, out, "disconnect", "html-css", "react")
	mustRun(t, c, out, "disconnect", "e-docker-nodejs")
	if _, err := run(t, c, out, "disconnect", "e-docker-nodejs"); !errors.Is(err, errors.ErrCodeEdgeNotFound) {
		t.Errorf("missing edge err = %v", err)
	}
}

func TestDirectionLayoutFit(t *testing.T) {
	c, out := newTestCLI(t)

	if got := mustRun(t, c, out, "direction"); strings.TrimSpace(got) != "TB" {
		t.Errorf("direction = %q, want TB", got)
	}
	mustRun(t, c, out, "direction", "lr")
	if got := mustRun(t, c, out, "direction"); strings.TrimSpace(got) != "LR" {
		t.Errorf("direction = %q, want LR", got)
	}
	if _, err := run(t, c, out, "direction", "diagonal"); !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("bad direction err = %v", err)
	}

	got := mustRun(t, c, out, "layout")
	if !strings.Contains(got, "Laid out 16 concepts") {
		t.Errorf("layout output = %q", got)
	}

	got = mustRun(t, c, out, "fit", "--width", "800", "--height", "600")
	for _, want := range []string{"800 × 600", "zoom"} {
		if !strings.Contains(got, want) {
			t.Errorf("fit output missing %q:\n%s", want, got)
		}
	}
	if _, err := run(t, c, out, "fit", "--width", "0"); err == nil {
		t.Error("zero width accepted")
	}
}

func TestImportAndReset(t *testing.T) {
	c, out := newTestCLI(t)
	path := filepath.Join(t.TempDir(), "generated.json")
	doc := `{"title":"Go","description":"","nodes":[
		{"id":"basics","label":"Basics","description":""},
		{"id":"concurrency","label":"Concurrency","description":""}],
		"edges":[{"source":"basics","target":"concurrency"},{"source":"basics","target":"ghost"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	got := mustRun(t, c, out, "import", path)
	if !strings.Contains(got, "Imported 2 concepts and 1 edges") || !strings.Contains(got, "Skipped 1 edges") {
		t.Errorf("import output = %q", got)
	}
	if got := mustRun(t, c, out, "show"); !strings.Contains(got, "2 concepts") {
		t.Errorf("show after import:\n%s", got)
	}

	mustRun(t, c, out, "reset")
	if got := mustRun(t, c, out, "show"); !strings.Contains(got, "16 concepts") {
		t.Errorf("show after reset:\n%s", got)
	}
}

func TestExport(t *testing.T) {
	c, out := newTestCLI(t)
	mustRun(t, c, out, "collapse", "react")

	dot := mustRun(t, c, out, "export")
	if !strings.HasPrefix(dot, "digraph G {") || strings.Contains(dot, "react-hooks") {
		t.Errorf("DOT export:\n%s", dot)
	}
	if all := mustRun(t, c, out, "export", "--all"); !strings.Contains(all, "react-hooks") {
		t.Error("--all export misses hidden concepts")
	}

	file := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, c, out, "export", "-o", file)
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	st, err := persist.Deserialize(data)
	if err != nil {
		t.Fatalf("exported JSON does not load: %v", err)
	}
	if len(st.Nodes) != 16 || st.HiddenNodeIDs.Len() != 3 {
		t.Errorf("exported %d nodes, %d hidden", len(st.Nodes), st.HiddenNodeIDs.Len())
	}

	if _, err := run(t, c, out, "export", "-f", "gif"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, output, want string
	}{
		{"", "", formatDOT},
		{"", "out.gv", formatDOT},
		{"", "out.SVG", formatSVG},
		{"", "backup.json", formatJSON},
		{"png", "out.svg", formatPNG},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.output)
		if err != nil || got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, %v; want %q", tt.format, tt.output, got, err, tt.want)
		}
	}
	if _, err := resolveFormat("", "out.txt"); err == nil {
		t.Error("txt accepted")
	}
}

func TestMoveDuplicateSelect(t *testing.T) {
	c, out := newTestCLI(t)

	mustRun(t, c, out, "move", "docker", "5", "7")
	if got := mustRun(t, c, out, "show", "docker"); !strings.Contains(got, "5, 7") {
		t.Errorf("position not stored:\n%s", got)
	}
	if _, err := run(t, c, out, "move", "docker", "x", "7"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad coordinate err = %v", err)
	}

	if got := mustRun(t, c, out, "duplicate", "docker"); !strings.Contains(got, "Docker (copy)") {
		t.Errorf("duplicate output = %q", got)
	}

	if got := mustRun(t, c, out, "select", "docker"); !strings.Contains(got, "Docker") {
		t.Errorf("select output = %q", got)
	}
	if _, err := run(t, c, out, "select", "ghost"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("select unknown err = %v", err)
	}
}

func TestStorageCommands(t *testing.T) {
	c, out := newTestCLI(t)

	if got := mustRun(t, c, out, "storage", "info"); !strings.Contains(got, "Nothing stored") {
		t.Errorf("info before write = %q", got)
	}
	mustRun(t, c, out, "status", "react", "completed")

	path := strings.TrimSpace(mustRun(t, c, out, "storage", "path"))
	if _, err := os.Stat(path); err != nil {
		t.Errorf("storage path %q: %v", path, err)
	}
	if got := mustRun(t, c, out, "storage", "info"); !strings.Contains(got, "16 concepts") {
		t.Errorf("info after write = %q", got)
	}

	mustRun(t, c, out, "storage", "clear")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("stored file survives clear: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "roadmap") {
		t.Error("bash completion does not mention roadmap")
	}
}

func TestCompleteArgs(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()
	for name := range conceptArgs {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.ValidArgsFunction == nil {
			t.Errorf("%s has no argument completion", name)
		}
	}

	complete := c.completeArgs(conceptArgs["status"])
	cmd := &cobra.Command{}

	got, dir := complete(cmd, nil, "react")
	want := []string{"react\tReact", "react-hooks\tReact Hooks", "react-patterns\tReact Patterns"}
	if !slices.Equal(got, want) || dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("ids = %q (%v), want %q", got, dir, want)
	}

	if got, _ := complete(cmd, []string{"react"}, "in"); !slices.Equal(got, []string{"in-progress"}) {
		t.Errorf("statuses = %q", got)
	}
	if got, _ := complete(cmd, []string{"react", "completed"}, ""); got != nil {
		t.Errorf("extra argument completed: %q", got)
	}
}

func TestBadConfig(t *testing.T) {
	c, out := newTestCLI(t)
	c.ConfigPath = filepath.Join(t.TempDir(), "settings.ini")
	if err := os.WriteFile(c.ConfigPath, []byte("x=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, c, out, "show"); err == nil {
		t.Error("unsupported settings file accepted")
	}
}
