package layout

import (
	"slices"
)

// maxSweeps bounds the number of barycenter sweeps. Even sweeps go down the
// ranks, odd sweeps go up.
const maxSweeps = 12

// order groups nodes into ranks and reorders each rank to reduce edge
// crossings. It returns the best ordering seen and its crossing count.
func (g *graph) order() ([][]int, int) {
	ranks := 0
	for _, r := range g.rank {
		ranks = max(ranks, r+1)
	}
	layers := make([][]int, ranks)
	for u := range g.size() {
		layers[g.rank[u]] = append(layers[g.rank[u]], u)
	}

	pos := make([]int, g.size())
	index := func(layer []int) {
		for i, u := range layer {
			pos[u] = i
		}
	}
	for _, layer := range layers {
		index(layer)
	}

	best := cloneLayers(layers)
	bestCrossings := g.crossings(layers, pos)

	for sweep := 0; sweep < maxSweeps && bestCrossings > 0; sweep++ {
		if sweep%2 == 0 {
			for r := 1; r < len(layers); r++ {
				sortByBarycenter(layers[r], g.parents, pos)
				index(layers[r])
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				sortByBarycenter(layers[r], g.children, pos)
				index(layers[r])
			}
		}
		if c := g.crossings(layers, pos); c < bestCrossings {
			bestCrossings = c
			best = cloneLayers(layers)
		}
	}
	return best, bestCrossings
}

// sortByBarycenter orders layer by the mean position of each node's
// neighbours in the adjacent rank. Nodes without neighbours keep their
// current position as key; ties fall back to the current position.
func sortByBarycenter(layer []int, nbrs [][]int, pos []int) {
	type keyed struct {
		u    int
		bary float64
		prev int
	}
	keys := make([]keyed, len(layer))
	for i, u := range layer {
		k := keyed{u: u, bary: float64(i), prev: i}
		if len(nbrs[u]) > 0 {
			sum := 0
			for _, v := range nbrs[u] {
				sum += pos[v]
			}
			k.bary = float64(sum) / float64(len(nbrs[u]))
		}
		keys[i] = k
	}
	slices.SortStableFunc(keys, func(a, b keyed) int {
		switch {
		case a.bary < b.bary:
			return -1
		case a.bary > b.bary:
			return 1
		}
		return a.prev - b.prev
	})
	for i, k := range keys {
		layer[i] = k.u
	}
}

// crossings sums the edge crossings between every pair of adjacent ranks.
func (g *graph) crossings(layers [][]int, pos []int) int {
	total := 0
	for r := 0; r+1 < len(layers); r++ {
		total += g.layerCrossings(layers[r], len(layers[r+1]), pos)
	}
	return total
}

// layerCrossings counts crossings between upper and the rank below it.
// Two edges (u1,v1) and (u2,v2) cross when pos(u1) < pos(u2) and
// pos(v1) > pos(v2), so sorting edges by source and counting inversions of
// the target positions with a Fenwick tree gives the answer.
func (g *graph) layerCrossings(upper []int, lowerLen int, pos []int) int {
	if len(upper) == 0 || lowerLen == 0 {
		return 0
	}

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, u := range upper {
		for _, v := range g.children[u] {
			edges = append(edges, edge{i, pos[v]})
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, lowerLen+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, l := range layers {
		out[i] = slices.Clone(l)
	}
	return out
}
