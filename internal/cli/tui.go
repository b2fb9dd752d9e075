package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/layout"
	"github.com/matzehuels/roadmap/pkg/store"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	detailBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// statusCycle is the order the status key steps through.
var statusCycle = []roadmap.Status{
	roadmap.StatusPending,
	roadmap.StatusInProgress,
	roadmap.StatusCompleted,
	roadmap.StatusLocked,
}

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Explore and edit the roadmap interactively",
		Long: `Open a terminal browser over the visible roadmap.

Keys: ↑/↓ move, enter collapse or expand the subtree, e details, s next
status, a add a child, D duplicate, x delete, l auto-layout, t switch
direction, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				m := NewBrowseModel(s.store)
				defer m.Close()
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			})
		},
	}
}

// =============================================================================
// BrowseModel - Interactive roadmap browser
// =============================================================================

// changedMsg reports a store mutation.
type changedMsg struct{ op string }

// BrowseModel is the bubbletea model for the roadmap browser. It subscribes
// to the store and re-reads the visible roadmap after every mutation.
type BrowseModel struct {
	store       *store.Store
	changes     chan string
	unsubscribe func()

	Rows   []treeRow
	Hidden roadmap.IDSet
	Cursor int
	Height int
	Offset int

	Detail  bool   // detail panel open for the concept under the cursor
	Adding  bool   // label prompt for a new child is open
	Input   string // label typed so far
	LastOp  string // last mutation applied
	Message string // feedback for a refused action
}

// NewBrowseModel creates a browser over st. Close releases the subscription.
func NewBrowseModel(st *store.Store) *BrowseModel {
	m := &BrowseModel{
		store:   st,
		changes: make(chan string, 64),
		Height:  20,
	}
	m.unsubscribe = st.Subscribe(func(op string) {
		// Listeners run inside Update; never block the event loop.
		select {
		case m.changes <- op:
		default:
		}
	})
	m.refresh()
	return m
}

// Close unsubscribes from the store.
func (m *BrowseModel) Close() {
	m.unsubscribe()
}

func (m *BrowseModel) waitForChange() tea.Cmd {
	return func() tea.Msg {
		return changedMsg{op: <-m.changes}
	}
}

// refresh re-reads the visible roadmap, keeping the cursor on the same
// concept when it is still visible.
func (m *BrowseModel) refresh() {
	current := m.currentID()
	snap := m.store.Snapshot()
	m.Rows = flattenTree(snap)
	m.Hidden = snap.HiddenNodeIDs

	for i, r := range m.Rows {
		if r.Node.ID == current && !r.Ref {
			m.Cursor = i
			break
		}
	}
	if m.Cursor >= len(m.Rows) {
		m.Cursor = max(len(m.Rows)-1, 0)
	}
	m.scroll()
}

func (m *BrowseModel) currentID() string {
	if m.Cursor < 0 || m.Cursor >= len(m.Rows) {
		return ""
	}
	return m.Rows[m.Cursor].Node.ID
}

func (m *BrowseModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *BrowseModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.LastOp = msg.op
		m.refresh()
		return m, m.waitForChange()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	case tea.KeyMsg:
		if m.Adding {
			return m.updatePrompt(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *BrowseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Message = ""
	id := m.currentID()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			m.scroll()
		}
	case "down", "j":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
			m.scroll()
		}
	case "enter", " ":
		if id != "" {
			m.store.ToggleNodeCollapse(id)
		}
	case "e":
		if id != "" {
			m.store.SelectNode(id)
			m.Detail = !m.Detail
		}
	case "s":
		if id != "" {
			m.store.SetNodeStatus(id, nextStatus(m.Rows[m.Cursor].Node.Data.Status))
		}
	case "a":
		if id != "" {
			m.Adding = true
			m.Input = ""
		}
	case "D":
		if id != "" {
			m.store.DuplicateNode(id)
		}
	case "x", "delete":
		if id != "" {
			m.store.DeleteNode(id)
		}
	case "l":
		m.store.ApplyLayout(layout.Options{})
	case "t":
		dir := roadmap.LeftToRight
		if m.store.LayoutDirection() == roadmap.LeftToRight {
			dir = roadmap.TopToBottom
		}
		m.store.SetLayoutDirection(dir)
	}
	return m, nil
}

func (m *BrowseModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.Adding = false
	case tea.KeyEnter:
		m.Adding = false
		parent := m.currentID()
		if _, ok := m.store.AddChildNode(parent, strings.TrimSpace(m.Input)); !ok {
			m.Message = fmt.Sprintf("cannot add below %q", parent)
		}
	case tea.KeyBackspace:
		if r := []rune(m.Input); len(r) > 0 {
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.Input += " "
	case tea.KeyRunes:
		m.Input += string(msg.Runes)
	}
	return m, nil
}

func nextStatus(s roadmap.Status) roadmap.Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return roadmap.StatusPending
}

func (m *BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Roadmap"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s · %d visible · %d hidden",
		m.store.LayoutDirection(), len(m.Rows), m.Hidden.Len())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ collapse  e details  s status  a add  D duplicate  x delete  l layout  t direction  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		line := renderTreeRow(m.Rows[i], m.Hidden)
		if i == m.Cursor {
			cursor = listSelectedStyle.Render("▸ ")
		}
		b.WriteString(cursor + line + "\n")
	}
	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (empty roadmap)") + "\n")
	}

	if m.Detail && m.currentID() != "" {
		if n, ok := m.store.Node(m.currentID()); ok {
			var panel strings.Builder
			printConcept(&panel, n)
			b.WriteString("\n")
			b.WriteString(detailBoxStyle.Render(strings.TrimRight(panel.String(), "\n")))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.Adding:
		b.WriteString(StyleHighlight.Render("New topic: ") + m.Input + "█")
	case m.Message != "":
		b.WriteString(listErrorStyle.Render(m.Message))
	case m.LastOp != "":
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s", m.Cursor+1, len(m.Rows), m.LastOp)))
	default:
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	}

	return b.String()
}
