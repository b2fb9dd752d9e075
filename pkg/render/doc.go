// Package render exports roadmaps as static images.
//
// The [nodelink] subpackage turns the visible roadmap into Graphviz DOT and
// SVG. [ToPDF] and [ToPNG] convert any SVG further using the external
// rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(nodes, edges, nodelink.Options{Direction: roadmap.TopToBottom})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/roadmap/pkg/render/nodelink
package render
