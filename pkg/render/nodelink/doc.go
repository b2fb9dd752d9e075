// Package nodelink renders roadmaps as Graphviz node-link diagrams.
//
// # Overview
//
// This is a file export of the roadmap, not the interactive canvas. Nodes
// appear as rounded boxes filled by learning status; edges are styled by
// relationship (solid prerequisites, dashed related links, dotted optional
// links). Collapsed nodes carry a marker with the number of children they hide.
//
// # Usage
//
// Export the visible part of a store:
//
//	snap := st.Snapshot()
//	dot := nodelink.ToDOT(snap.VisibleNodes(), snap.VisibleEdges(), nodelink.Options{
//	    Direction: snap.LayoutDirection,
//	})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Direction: rankdir of the diagram (TB or LR)
//   - Detailed: adds status, category and duration to node labels
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
