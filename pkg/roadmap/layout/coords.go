package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// alignPasses is the number of median alignment passes, alternating between
// parents and children.
const alignPasses = 4

// place assigns top-left positions to the real nodes.
func (g *graph) place(layers [][]int, opts Options) []roadmap.Position {
	// Rank axis: each rank is as thick as its thickest node.
	rankCentre := make([]float64, len(layers))
	offset := 0.0
	for r, layer := range layers {
		thick := 0.0
		for _, u := range layer {
			thick = max(thick, g.along[u])
		}
		rankCentre[r] = offset + thick/2
		offset += thick + opts.RankSep
	}

	// Cross axis: pack, then pull toward neighbour medians.
	centre := make([]float64, g.size())
	for _, layer := range layers {
		x := 0.0
		for i, u := range layer {
			if i > 0 {
				x += g.gap(layer[i-1], u, opts.NodeSep)
			} else {
				x = g.cross[u] / 2
			}
			centre[u] = x
		}
	}

	for pass := range alignPasses {
		if pass%2 == 0 {
			for r := 1; r < len(layers); r++ {
				g.align(layers[r], g.parents, centre, opts.NodeSep)
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				g.align(layers[r], g.children, centre, opts.NodeSep)
			}
		}
	}

	out := make([]roadmap.Position, g.real)
	minX, minY := math.Inf(1), math.Inf(1)
	for u := range g.real {
		c := centre[u]
		a := rankCentre[g.rank[u]]
		var p roadmap.Position
		if opts.Direction == roadmap.LeftToRight {
			p = roadmap.Position{X: a - g.along[u]/2, Y: c - g.cross[u]/2}
		} else {
			p = roadmap.Position{X: c - g.cross[u]/2, Y: a - g.along[u]/2}
		}
		out[u] = p
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
	}
	for u := range out {
		out[u].X -= minX
		out[u].Y -= minY
	}
	return out
}

// gap is the minimum distance between the centres of two neighbours.
func (g *graph) gap(left, right int, sep float64) float64 {
	return g.cross[left]/2 + sep + g.cross[right]/2
}

// align moves each node of layer toward the median centre of its neighbours
// while keeping the order and minimum separation. It computes the tightest
// left-packed and right-packed placements around the desired centres and
// takes their midpoint, which satisfies the same separation constraints.
func (g *graph) align(layer []int, nbrs [][]int, centre []float64, sep float64) {
	n := len(layer)
	if n == 0 {
		return
	}
	desired := make([]float64, n)
	for i, u := range layer {
		desired[i] = centre[u]
		if len(nbrs[u]) > 0 {
			desired[i] = median(nbrs[u], centre)
		}
	}

	left := make([]float64, n)
	right := make([]float64, n)
	left[0] = desired[0]
	for i := 1; i < n; i++ {
		left[i] = max(desired[i], left[i-1]+g.gap(layer[i-1], layer[i], sep))
	}
	right[n-1] = desired[n-1]
	for i := n - 2; i >= 0; i-- {
		right[i] = min(desired[i], right[i+1]-g.gap(layer[i], layer[i+1], sep))
	}
	for i, u := range layer {
		centre[u] = (left[i] + right[i]) / 2
	}
}

func median(ids []int, centre []float64) float64 {
	vals := make([]float64, len(ids))
	for i, v := range ids {
		vals[i] = centre[v]
	}
	slices.Sort(vals)
	m := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[m]
	}
	return (vals[m-1] + vals[m]) / 2
}
