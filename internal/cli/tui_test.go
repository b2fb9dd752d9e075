package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/store"
)

func newTestBrowser(t *testing.T) (*BrowseModel, *store.Store) {
	t.Helper()
	st := store.New(context.Background(), store.Options{Logger: log.New(io.Discard)})
	m := NewBrowseModel(st)
	t.Cleanup(m.Close)
	return m, st
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and feeds every pending store change back into the model.
func press(m *BrowseModel, msg tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(msg)
	for {
		select {
		case op := <-m.changes:
			m.Update(changedMsg{op: op})
		default:
			return cmd
		}
	}
}

func TestBrowse_InitialRows(t *testing.T) {
	m, _ := newTestBrowser(t)
	if len(m.Rows) != 16 {
		t.Fatalf("rows = %d, want 16", len(m.Rows))
	}
	if m.currentID() != "root" {
		t.Errorf("cursor on %q, want root", m.currentID())
	}
	if !strings.Contains(m.View(), "Full-Stack Web Development") {
		t.Error("view misses the root concept")
	}
}

func TestBrowse_Navigation(t *testing.T) {
	m, _ := newTestBrowser(t)

	press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}
	press(m, runes("j"))
	press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.currentID() != "html-css" {
		t.Errorf("cursor on %q, want html-css", m.currentID())
	}
	press(m, runes("k"))
	if m.currentID() != "frontend" {
		t.Errorf("cursor on %q, want frontend", m.currentID())
	}
}

func TestBrowse_CollapseKeepsCursor(t *testing.T) {
	m, st := newTestBrowser(t)

	press(m, runes("j"))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := st.HiddenNodeIDs().Len(); got != 7 {
		t.Errorf("hidden = %d, want 7", got)
	}
	if len(m.Rows) != 9 {
		t.Errorf("rows = %d, want 9", len(m.Rows))
	}
	if m.currentID() != "frontend" {
		t.Errorf("cursor on %q, want frontend", m.currentID())
	}
	if m.LastOp == "" {
		t.Error("last operation not recorded")
	}
	if !strings.Contains(m.View(), "[+2]") {
		t.Error("collapsed marker missing from view")
	}

	press(m, tea.KeyMsg{Type: tea.KeySpace})
	if len(m.Rows) != 16 {
		t.Errorf("rows after expand = %d, want 16", len(m.Rows))
	}
}

func TestBrowse_StatusAndDirection(t *testing.T) {
	m, st := newTestBrowser(t)

	press(m, runes("s"))
	if n, _ := st.Node("root"); n.Data.Status != roadmap.StatusCompleted {
		t.Errorf("root status = %s, want completed", n.Data.Status)
	}

	press(m, runes("t"))
	if st.LayoutDirection() != roadmap.LeftToRight {
		t.Errorf("direction = %s, want LR", st.LayoutDirection())
	}
	press(m, runes("t"))
	if st.LayoutDirection() != roadmap.TopToBottom {
		t.Errorf("direction = %s, want TB", st.LayoutDirection())
	}
}

func TestBrowse_AddChildPrompt(t *testing.T) {
	m, st := newTestBrowser(t)

	press(m, runes("a"))
	if !m.Adding {
		t.Fatal("prompt not opened")
	}
	press(m, runes("Web"))
	press(m, tea.KeyMsg{Type: tea.KeySpace})
	press(m, runes("APIx"))
	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Input != "Web API" {
		t.Fatalf("input = %q", m.Input)
	}
	if !strings.Contains(m.View(), "New topic: Web API") {
		t.Error("prompt not rendered")
	}
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Adding {
		t.Error("prompt still open")
	}
	if len(st.Nodes()) != 17 || len(m.Rows) != 17 {
		t.Errorf("nodes = %d, rows = %d, want 17", len(st.Nodes()), len(m.Rows))
	}
	if kids := st.ChildIDs("root"); len(kids) != 4 {
		t.Errorf("root children = %v", kids)
	}
}

func TestBrowse_PromptEscCancels(t *testing.T) {
	m, st := newTestBrowser(t)

	press(m, runes("a"))
	press(m, runes("Draft"))
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Adding || len(st.Nodes()) != 16 {
		t.Errorf("adding = %v, nodes = %d", m.Adding, len(st.Nodes()))
	}
}

func TestBrowse_DuplicateAndDelete(t *testing.T) {
	m, st := newTestBrowser(t)

	for range 3 {
		press(m, runes("j"))
	}
	if m.currentID() != "javascript" {
		t.Fatalf("cursor on %q", m.currentID())
	}
	press(m, runes("D"))
	if len(st.Nodes()) != 17 {
		t.Errorf("nodes after duplicate = %d", len(st.Nodes()))
	}

	press(m, runes("x"))
	if _, ok := st.Node("javascript"); ok {
		t.Error("javascript not deleted")
	}
	if m.Cursor >= len(m.Rows) {
		t.Errorf("cursor %d out of %d rows", m.Cursor, len(m.Rows))
	}
}

func TestBrowse_DetailPanel(t *testing.T) {
	m, st := newTestBrowser(t)

	press(m, runes("j"))
	press(m, runes("j"))
	press(m, runes("e"))
	if !m.Detail {
		t.Fatal("detail panel not opened")
	}
	if st.SelectedNodeID() != "html-css" {
		t.Errorf("selected = %q", st.SelectedNodeID())
	}
	if !strings.Contains(m.View(), "Flexbox Froggy") {
		t.Error("detail panel misses resources")
	}
}

func TestBrowse_Quit(t *testing.T) {
	m, _ := newTestBrowser(t)
	cmd := press(m, runes("q"))
	if cmd == nil {
		t.Fatal("no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q does not quit")
	}
}

func TestBrowse_WindowSize(t *testing.T) {
	m, _ := newTestBrowser(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if m.Height != 5 {
		t.Errorf("height = %d, want 5", m.Height)
	}
	for range 10 {
		press(m, runes("j"))
	}
	if m.Offset != m.Cursor-m.Height+1 {
		t.Errorf("offset = %d for cursor %d", m.Offset, m.Cursor)
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		in, want roadmap.Status
	}{
		{roadmap.StatusPending, roadmap.StatusInProgress},
		{roadmap.StatusInProgress, roadmap.StatusCompleted},
		{roadmap.StatusCompleted, roadmap.StatusLocked},
		{roadmap.StatusLocked, roadmap.StatusPending},
		{"bogus", roadmap.StatusPending},
	}
	for _, tt := range tests {
		if got := nextStatus(tt.in); got != tt.want {
			t.Errorf("nextStatus(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
