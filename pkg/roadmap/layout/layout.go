package layout

import (
	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// Default spacing between nodes in a rank and between consecutive ranks.
const (
	DefaultNodeSep = 80.0
	DefaultRankSep = 120.0
)

// Options controls the layout.
type Options struct {
	Direction roadmap.Direction
	NodeSep   float64 // gap between neighbours within a rank
	RankSep   float64 // gap between consecutive ranks
}

// WithDefaults fills zero or negative fields with their defaults.
func (o Options) WithDefaults() Options {
	if !o.Direction.Valid() {
		o.Direction = roadmap.TopToBottom
	}
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
	return o
}

// Result is a layout together with statistics about how it was produced.
type Result struct {
	Nodes     []roadmap.Node
	Ranks     int // number of ranks
	Reversed  int // prerequisite edges reversed to break cycles
	Virtual   int // virtual nodes inserted for long edges
	Crossings int // edge crossings after ordering
}

// Layout returns a copy of g.Nodes with positions assigned by the layered
// algorithm. Output order matches input order.
func Layout(g roadmap.Graph, opts Options) []roadmap.Node {
	return Run(g, opts).Nodes
}

// Run is like [Layout] but also reports layout statistics.
func Run(g roadmap.Graph, opts Options) Result {
	opts = opts.WithDefaults()

	out := make([]roadmap.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Clone()
	}
	if len(out) == 0 {
		return Result{Nodes: out}
	}

	lg := newGraph(g.Nodes, g.Edges, opts.Direction)
	reversed := lg.breakCycles()
	lg.assignRanks()
	virtual := lg.subdivide()
	layers, crossings := lg.order()
	pos := lg.place(layers, opts)

	for i := range out {
		out[i].Position = pos[i]
	}
	return Result{
		Nodes:     out,
		Ranks:     len(layers),
		Reversed:  reversed,
		Virtual:   virtual,
		Crossings: crossings,
	}
}
