package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/store"
)

// Output formats accepted by show.
const (
	showTree  = "tree"
	showTable = "table"
	showJSON  = "json"
)

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Print the visible roadmap or one concept",
		Long: `Print the visible roadmap. Concepts below a collapsed node are left out
and the collapsed node shows how many are hidden. With an id, print that
concept's details instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				if len(args) == 1 {
					n, ok := s.store.Node(args[0])
					if !ok {
						return notFound(args[0])
					}
					printConcept(c.stdout, n)
					return nil
				}
				return c.show(s.store.Snapshot(), format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", showTree, "output format: tree, table, json")
	return cmd
}

func (c *CLI) show(snap store.Snapshot, format string) error {
	switch format {
	case showTree:
		fmt.Fprint(c.stdout, renderTree(snap))
		printStats(c.stdout, len(snap.Nodes), len(snap.Edges), snap.HiddenNodeIDs.Len())
	case showTable:
		fmt.Fprintln(c.stdout, renderTable(snap))
		printStats(c.stdout, len(snap.Nodes), len(snap.Edges), snap.HiddenNodeIDs.Len())
	case showJSON:
		view := struct {
			Nodes           []roadmap.Node    `json:"nodes"`
			Edges           []roadmap.Edge    `json:"edges"`
			LayoutDirection roadmap.Direction `json:"layoutDirection"`
			HiddenNodeIDs   []string          `json:"hiddenNodeIds"`
		}{snap.VisibleNodes(), snap.VisibleEdges(), snap.LayoutDirection, snap.HiddenNodeIDs.Sorted()}
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	default:
		return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, showTree, showTable, showJSON)
	}
	return nil
}

// treeRow is one line of the visible roadmap drawn as a tree.
type treeRow struct {
	Node   roadmap.Node
	Prefix string // branch drawing before the concept
	Ref    bool   // concept already drawn under another parent
}

// flattenTree walks the visible roadmap depth-first along prerequisite
// edges. A concept reachable from several parents is drawn in full once and
// referenced afterwards.
func flattenTree(snap store.Snapshot) []treeRow {
	visible := snap.VisibleNodes()
	edges := snap.VisibleEdges()

	byID := make(map[string]roadmap.Node, len(visible))
	for _, n := range visible {
		byID[n.ID] = n
	}
	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	for _, e := range edges {
		if e.IsPrerequisite() {
			children[e.Source] = append(children[e.Source], e.Target)
			hasParent[e.Target] = true
		}
	}

	rows := make([]treeRow, 0, len(visible))
	drawn := make(map[string]bool, len(visible))

	var walk func(id, indent string, last, root bool)
	walk = func(id, indent string, last, root bool) {
		branch, next := "", indent
		if !root {
			branch, next = indent+"├─ ", indent+"│  "
			if last {
				branch, next = indent+"└─ ", indent+"   "
			}
		}

		if drawn[id] {
			rows = append(rows, treeRow{Node: byID[id], Prefix: branch, Ref: true})
			return
		}
		drawn[id] = true
		rows = append(rows, treeRow{Node: byID[id], Prefix: branch})

		kids := children[id]
		for i, kid := range kids {
			walk(kid, next, i == len(kids)-1, false)
		}
	}

	for _, n := range visible {
		if !hasParent[n.ID] {
			walk(n.ID, "", true, true)
		}
	}
	// Concepts on a prerequisite cycle have no root; draw them from their
	// first member.
	for _, n := range visible {
		if !drawn[n.ID] {
			walk(n.ID, "", true, true)
		}
	}
	return rows
}

// renderTreeRow draws one tree line.
func renderTreeRow(r treeRow, hidden roadmap.IDSet) string {
	if r.Ref {
		return StyleDim.Render(r.Prefix + r.Node.Data.Label + " " + iconArrow + " " + r.Node.ID)
	}
	return StyleDim.Render(r.Prefix) + treeMarker(r.Node, hidden) + " " + renderConcept(r.Node)
}

// renderTree draws the visible roadmap as an indented prerequisite tree.
func renderTree(snap store.Snapshot) string {
	var b strings.Builder
	for _, r := range flattenTree(snap) {
		b.WriteString(renderTreeRow(r, snap.HiddenNodeIDs))
		b.WriteString("\n")
	}
	return b.String()
}

// treeMarker shows whether a concept is collapsed, has visible children or
// is a leaf.
func treeMarker(n roadmap.Node, hidden roadmap.IDSet) string {
	switch {
	case n.Data.IsCollapsed:
		count := 0
		for _, id := range n.Data.ChildIDs {
			if hidden.Has(id) {
				count++
			}
		}
		marker := StyleHighlight.Render(iconCollapsed)
		if count > 0 {
			marker += StyleDim.Render(fmt.Sprintf(" [+%d]", count))
		}
		return marker
	case len(n.Data.ChildIDs) > 0:
		return StyleHighlight.Render(iconExpanded)
	default:
		return StyleDim.Render(iconLeaf)
	}
}

// renderTable lists the visible concepts with their status and position.
func renderTable(snap store.Snapshot) string {
	visible := snap.VisibleNodes()
	rows := make([][]string, 0, len(visible))
	for _, n := range visible {
		duration := "-"
		if n.Data.Duration != nil {
			duration = strconv.Itoa(*n.Data.Duration) + "m"
		}
		collapsed := ""
		if n.Data.IsCollapsed {
			collapsed = iconCollapsed
		}
		rows = append(rows, []string{
			n.ID,
			n.Data.Label,
			string(n.Data.Status),
			string(n.Data.Category),
			duration,
			strconv.Itoa(len(n.Data.ChildIDs)),
			collapsed,
			fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Concept", "Status", "Category", "Time", "Children", "", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(visible) {
				return cell
			}
			switch col {
			case 0, 7:
				return cell.Foreground(colorDim)
			case 2:
				if style, ok := statusStyles[visible[row].Data.Status]; ok {
					return style.Padding(0, 1)
				}
			}
			return cell
		})

	return t.Render()
}
