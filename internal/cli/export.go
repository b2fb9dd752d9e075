package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/persist"
	"github.com/matzehuels/roadmap/pkg/render/nodelink"
	"github.com/matzehuels/roadmap/pkg/store"
)

// Export formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatJSON = "json"
)

var exportFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG, formatJSON}

// exportOpts holds export command options.
type exportOpts struct {
	format   string
	output   string
	detailed bool
	all      bool
	scale    float64
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the roadmap as DOT, SVG, PDF, PNG or JSON",
		Long: `Write the visible roadmap as a Graphviz diagram, or the whole roadmap in
its stored JSON form. The format defaults to the output file's extension,
or DOT on stdout.

PDF and PNG need rsvg-convert (librsvg) on the PATH.`,
		Example: `  roadmap export -o roadmap.svg
  roadmap export --format dot --detailed | dot -Tpng > roadmap.png
  roadmap export -o backup.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			opts.format = format
			return c.withSession(cmd.Context(), func(s *session) error {
				return c.export(cmd.Context(), s.store.Snapshot(), opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(exportFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show status, category and duration in diagram labels")
	cmd.Flags().BoolVar(&opts.all, "all", false, "include concepts hidden by collapsed subtrees in diagrams")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")
	return cmd
}

// resolveFormat picks the explicit format, else the output extension, else DOT.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "" || format == "gv" {
			format = formatDOT
		}
	}
	for _, f := range exportFormats {
		if f == format {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(exportFormats, ", "))
}

func (c *CLI) export(ctx context.Context, snap store.Snapshot, opts exportOpts) error {
	data, err := c.encode(ctx, snap, opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := c.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(c.stderr, "Exported %s", strings.ToUpper(opts.format))
	printFile(c.stderr, opts.output)
	return nil
}

func (c *CLI) encode(ctx context.Context, snap store.Snapshot, opts exportOpts) ([]byte, error) {
	if opts.format == formatJSON {
		return persist.Serialize(persist.State{
			Nodes:           snap.Nodes,
			Edges:           snap.Edges,
			LayoutDirection: snap.LayoutDirection,
			HiddenNodeIDs:   snap.HiddenNodeIDs,
		})
	}

	nodes, edges := snap.VisibleNodes(), snap.VisibleEdges()
	if opts.all {
		nodes, edges = snap.Nodes, snap.Edges
	}
	dot := nodelink.ToDOT(nodes, edges, nodelink.Options{
		Direction: snap.LayoutDirection,
		Detailed:  opts.detailed,
	})
	if opts.format == formatDOT {
		return []byte(dot), nil
	}

	spinner := newSpinnerWithContext(ctx, c.stderr, "Rendering "+strings.ToUpper(opts.format)+"...")
	spinner.Start()
	defer spinner.Stop()

	switch opts.format {
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	default:
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	}
}
