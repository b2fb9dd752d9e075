package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// statusStyles colours a concept by its progress.
var statusStyles = map[roadmap.Status]lipgloss.Style{
	roadmap.StatusPending:    lipgloss.NewStyle().Foreground(colorWhite),
	roadmap.StatusInProgress: lipgloss.NewStyle().Foreground(colorYellow),
	roadmap.StatusCompleted:  lipgloss.NewStyle().Foreground(colorGreen),
	roadmap.StatusLocked:     lipgloss.NewStyle().Foreground(colorDim),
}

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess   = "✓"
	iconError     = "✗"
	iconWarning   = "!"
	iconInfo      = "›"
	iconArrow     = "→"
	iconCollapsed = "▸"
	iconExpanded  = "▾"
	iconLeaf      = "·"
)

var statusIcons = map[roadmap.Status]string{
	roadmap.StatusPending:    "○",
	roadmap.StatusInProgress: "◐",
	roadmap.StatusCompleted:  "●",
	roadmap.StatusLocked:     "⊘",
}

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, "  "+StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints roadmap statistics on a single line.
func printStats(w io.Writer, nodeCount, edgeCount, hiddenCount int) {
	parts := []string{
		fmt.Sprintf("%d concepts", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
	}
	if hiddenCount > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", hiddenCount))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(w, line)
}

// =============================================================================
// Concepts
// =============================================================================

// renderStatus returns the coloured icon and name of s.
func renderStatus(s roadmap.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(statusIcons[s] + " " + string(s))
}

// renderConcept returns a one-line summary of n.
func renderConcept(n roadmap.Node) string {
	style, ok := statusStyles[n.Data.Status]
	if !ok {
		style = StyleValue
	}
	return style.Render(statusIcons[n.Data.Status]+" "+n.Data.Label) + " " + StyleDim.Render(n.ID)
}

// printConcept prints the detail panel of n.
func printConcept(w io.Writer, n roadmap.Node) {
	fmt.Fprintln(w, StyleTitle.Render(n.Data.Label))
	printKeyValue(w, "id", n.ID)
	printKeyValue(w, "status", renderStatus(n.Data.Status))
	printKeyValue(w, "category", string(n.Data.Category))
	if n.Data.Duration != nil {
		printKeyValue(w, "duration", fmt.Sprintf("%d min", *n.Data.Duration))
	}
	if len(n.Data.Tags) > 0 {
		printKeyValue(w, "tags", strings.Join(n.Data.Tags, ", "))
	}
	if n.Data.ParentID != "" {
		printKeyValue(w, "parent", n.Data.ParentID)
	}
	if len(n.Data.ChildIDs) > 0 {
		printKeyValue(w, "children", strings.Join(n.Data.ChildIDs, ", "))
	}
	printKeyValue(w, "position", fmt.Sprintf("%.0f, %.0f", n.Position.X, n.Position.Y))
	if n.Data.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, n.Data.Description)
	}
	if len(n.Data.Resources) > 0 {
		fmt.Fprintln(w)
		for _, r := range n.Data.Resources {
			fmt.Fprintln(w, "  "+StyleDim.Render(string(r.Type))+" "+r.Title+" "+StyleLink.Render(r.URL))
		}
	}
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(w io.Writer, description, cmd string) {
	fmt.Fprintln(w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}
