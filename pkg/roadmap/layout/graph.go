package layout

import (
	"slices"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// graph is the index-based working graph. Indices below real refer to input
// nodes in input order; the rest are virtual nodes added by subdivide.
type graph struct {
	real     int
	cross    []float64 // footprint across a rank
	along    []float64 // footprint along the rank axis
	rank     []int
	children [][]int
	parents  [][]int
}

func newGraph(nodes []roadmap.Node, edges []roadmap.Edge, dir roadmap.Direction) *graph {
	g := &graph{
		real:     len(nodes),
		cross:    make([]float64, len(nodes)),
		along:    make([]float64, len(nodes)),
		rank:     make([]int, len(nodes)),
		children: make([][]int, len(nodes)),
		parents:  make([][]int, len(nodes)),
	}

	idx := roadmap.IndexNodes(nodes)
	for i, n := range nodes {
		w, h := roadmap.Footprint(n)
		if dir == roadmap.LeftToRight {
			w, h = h, w
		}
		g.cross[i], g.along[i] = w, h
	}

	for _, e := range edges {
		if !e.IsPrerequisite() {
			continue
		}
		u, ok := idx[e.Source]
		if !ok {
			continue
		}
		v, ok := idx[e.Target]
		if !ok || u == v || g.hasEdge(u, v) {
			continue
		}
		g.addEdge(u, v)
	}
	return g
}

func (g *graph) size() int { return len(g.rank) }

func (g *graph) hasEdge(u, v int) bool { return slices.Contains(g.children[u], v) }

func (g *graph) addEdge(u, v int) {
	g.children[u] = append(g.children[u], v)
	g.parents[v] = append(g.parents[v], u)
}

func (g *graph) removeEdge(u, v int) {
	if i := slices.Index(g.children[u], v); i >= 0 {
		g.children[u] = slices.Delete(g.children[u], i, i+1)
	}
	if i := slices.Index(g.parents[v], u); i >= 0 {
		g.parents[v] = slices.Delete(g.parents[v], i, i+1)
	}
}

func (g *graph) addVirtual(rank int) int {
	g.cross = append(g.cross, 0)
	g.along = append(g.along, 0)
	g.rank = append(g.rank, rank)
	g.children = append(g.children, nil)
	g.parents = append(g.parents, nil)
	return len(g.rank) - 1
}

// breakCycles reverses every back edge found by a depth-first search that
// starts from the sources and then from any node still unvisited, both in
// input order. It returns the number of reversed edges.
func (g *graph) breakCycles() int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, g.size())
	var backEdges [][2]int

	var dfs func(u int)
	dfs = func(u int) {
		color[u] = gray
		for _, v := range g.children[u] {
			switch color[v] {
			case white:
				dfs(v)
			case gray:
				backEdges = append(backEdges, [2]int{u, v})
			}
		}
		color[u] = black
	}

	for u := range g.size() {
		if len(g.parents[u]) == 0 && color[u] == white {
			dfs(u)
		}
	}
	for u := range g.size() {
		if color[u] == white {
			dfs(u)
		}
	}

	for _, e := range backEdges {
		g.removeEdge(e[0], e[1])
		if !g.hasEdge(e[1], e[0]) {
			g.addEdge(e[1], e[0])
		}
	}
	return len(backEdges)
}

// assignRanks places every node one rank below its deepest parent using
// Kahn's algorithm. The graph must be acyclic.
func (g *graph) assignRanks() {
	inDegree := make([]int, g.size())
	queue := make([]int, 0, g.size())
	for u := range g.size() {
		g.rank[u] = 0
		inDegree[u] = len(g.parents[u])
		if inDegree[u] == 0 {
			queue = append(queue, u)
		}
	}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.children[u] {
			if r := g.rank[u] + 1; r > g.rank[v] {
				g.rank[v] = r
			}
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
}

// subdivide splits edges spanning more than one rank into chains of virtual
// nodes and returns the number of virtual nodes created.
func (g *graph) subdivide() int {
	type edge struct{ u, v int }
	var long []edge
	for u := range g.real {
		for _, v := range g.children[u] {
			if g.rank[v]-g.rank[u] > 1 {
				long = append(long, edge{u, v})
			}
		}
	}

	created := 0
	for _, e := range long {
		g.removeEdge(e.u, e.v)
		prev := e.u
		for r := g.rank[e.u] + 1; r < g.rank[e.v]; r++ {
			x := g.addVirtual(r)
			g.addEdge(prev, x)
			prev = x
			created++
		}
		g.addEdge(prev, e.v)
	}
	return created
}
