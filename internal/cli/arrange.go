package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/layout"
	"github.com/matzehuels/roadmap/pkg/roadmap/viewport"
)

// directionCommand creates the direction command.
func (c *CLI) directionCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "direction [TB|LR]",
		Short:     "Print or set the layout direction",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(roadmap.TopToBottom), string(roadmap.LeftToRight)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				if len(args) == 0 {
					fmt.Fprintln(c.stdout, s.store.LayoutDirection())
					return nil
				}
				dir, err := errors.ValidateDirection(args[0])
				if err != nil {
					return err
				}
				s.store.SetLayoutDirection(dir)
				printSuccess(c.stdout, "Layout direction %s", dir)
				printNextStep(c.stdout, "Re-arrange the roadmap", "roadmap layout")
				return nil
			})
		},
	}
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		direction        string
		nodeSep, rankSep float64
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Auto-arrange every concept",
		Long: `Place every concept with the layered layout: prerequisites rank above
(or left of) the concepts they unlock, crossings are reduced and long edges
routed around. Collapsed concepts keep their place in the layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				opts := layout.Options{
					NodeSep: s.cfg.Layout.NodeSep,
					RankSep: s.cfg.Layout.RankSep,
				}
				if direction != "" {
					dir, err := errors.ValidateDirection(direction)
					if err != nil {
						return err
					}
					opts.Direction = dir
				}
				if cmd.Flags().Changed("node-sep") {
					opts.NodeSep = nodeSep
				}
				if cmd.Flags().Changed("rank-sep") {
					opts.RankSep = rankSep
				}

				prog := newProgress(loggerFromContext(cmd.Context()))
				res := s.store.ApplyLayout(opts)
				prog.done("Layout computed")

				printSuccess(c.stdout, "Laid out %d concepts in %d ranks", len(res.Nodes), res.Ranks)
				printDetail(c.stdout, "%d crossings, %d long edges split, %d cyclic edges reversed",
					res.Crossings, res.Virtual, res.Reversed)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", "TB or LR (default: the roadmap's direction)")
	cmd.Flags().Float64Var(&nodeSep, "node-sep", 0, "gap between concepts in a rank (default from settings)")
	cmd.Flags().Float64Var(&rankSep, "rank-sep", 0, "gap between ranks (default from settings)")
	return cmd
}

// fitCommand creates the fit command.
func (c *CLI) fitCommand() *cobra.Command {
	var width, height, padding float64

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Compute the viewport transform that frames the visible roadmap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				vp := s.cfg.Viewport
				if cmd.Flags().Changed("width") {
					vp.Width = width
				}
				if cmd.Flags().Changed("height") {
					vp.Height = height
				}
				if cmd.Flags().Changed("padding") {
					vp.Padding = padding
				}
				if vp.Width <= 0 || vp.Height <= 0 {
					return errors.New(errors.ErrCodeInvalidInput, "viewport width and height must be positive")
				}

				visible := s.store.VisibleNodes()
				t := viewport.Fit(visible, vp.Width, vp.Height, vp.Padding)
				printKeyValue(c.stdout, "viewport", fmt.Sprintf("%.0f × %.0f (padding %.0f)", vp.Width, vp.Height, vp.Padding))
				if b, ok := viewport.BoundingBox(visible); ok {
					printKeyValue(c.stdout, "bounds", fmt.Sprintf("%.0f,%.0f → %.0f,%.0f", b.MinX, b.MinY, b.MaxX, b.MaxY))
				}
				printKeyValue(c.stdout, "pan", fmt.Sprintf("%.2f, %.2f", t.X, t.Y))
				printKeyValue(c.stdout, "zoom", fmt.Sprintf("%.3f", t.Zoom))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "viewport width (default from settings)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height (default from settings)")
	cmd.Flags().Float64Var(&padding, "padding", 0, "margin on every side (default from settings)")
	return cmd
}

// resetCommand creates the reset command.
func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the roadmap with the built-in example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), func(s *session) error {
				s.store.ResetToDefault()
				snap := s.store.Snapshot()
				printSuccess(c.stdout, "Roadmap reset")
				printStats(c.stdout, len(snap.Nodes), len(snap.Edges), snap.HiddenNodeIDs.Len())
				return nil
			})
		},
	}
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the roadmap with a generated one",
		Long: `Read a generated roadmap ({"title","description","nodes","edges"}) from a
file or stdin and replace the current roadmap with it. Edges that dangle,
repeat or would close a prerequisite cycle are skipped. The result is laid
out in the roadmap's direction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			resp, err := roadmap.ReadAIRoadmap(r)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", err)
			}

			return c.withSession(cmd.Context(), func(s *session) error {
				prog := newProgress(loggerFromContext(cmd.Context()))
				res, err := s.store.ImportRoadmap(resp)
				if err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Imported %q", resp.Title))

				printSuccess(c.stdout, "Imported %d concepts and %d edges", res.Nodes, res.Edges)
				if res.Skipped > 0 {
					printWarning(c.stdout, "Skipped %d edges", res.Skipped)
				}
				printNextStep(c.stdout, "View it", "roadmap show")
				return nil
			})
		},
	}
}
