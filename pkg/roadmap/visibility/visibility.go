// Package visibility decides which roadmap nodes are hidden by collapsed
// subtrees. All functions are pure and safe for concurrent use.
//
// Only prerequisite edges define a subtree. Every traversal keeps a visited
// set, so cyclic prerequisite edges terminate.
package visibility

import (
	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// CollapsedDescendants returns every node reachable from nodeID by following
// prerequisite edges from source to target. The start node is never part of
// the result, even when a cycle leads back to it.
func CollapsedDescendants(nodeID string, edges []roadmap.Edge) roadmap.IDSet {
	out := roadmap.NewIDSet()
	descendants(nodeID, children(edges), out)
	return out
}

// HiddenBy returns the union of the descendants of every collapsed node.
// A collapsed node inside another collapsed subtree adds nothing new, since
// its descendants are descendants of the outer node too.
func HiddenBy(nodes []roadmap.Node, edges []roadmap.Edge) roadmap.IDSet {
	adj := children(edges)
	out := roadmap.NewIDSet()
	for _, n := range nodes {
		if n.Data.IsCollapsed {
			descendants(n.ID, adj, out)
		}
	}
	return out
}

// descendants adds every node reachable from nodeID to out, excluding
// nodeID itself.
func descendants(nodeID string, adj map[string][]string, out roadmap.IDSet) {
	visited := roadmap.NewIDSet(nodeID)
	queue := []string{nodeID}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, next := range adj[curr] {
			if visited.Has(next) {
				continue
			}
			visited.Add(next)
			out.Add(next)
			queue = append(queue, next)
		}
	}
}

// Reaches reports whether to is reachable from from over prerequisite edges.
// A node reaches itself.
func Reaches(from, to string, edges []roadmap.Edge) bool {
	return from == to || CollapsedDescendants(from, edges).Has(to)
}

// WouldCycle reports whether adding a prerequisite edge source→target would
// close a cycle among the prerequisite edges.
func WouldCycle(source, target string, edges []roadmap.Edge) bool {
	return Reaches(target, source, edges)
}

// HasCycle reports whether the prerequisite edges contain a cycle, using a
// three-colour depth-first search.
func HasCycle(edges []roadmap.Edge) bool {
	adj := children(edges)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for _, e := range edges {
		if e.IsPrerequisite() && state[e.Source] == unvisited && dfs(e.Source) {
			return true
		}
	}
	return false
}

// FilterNodes returns the nodes whose IDs are not hidden, preserving order.
func FilterNodes(nodes []roadmap.Node, hidden roadmap.IDSet) []roadmap.Node {
	out := make([]roadmap.Node, 0, len(nodes))
	for _, n := range nodes {
		if !hidden.Has(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// FilterEdges returns the edges with neither endpoint hidden, preserving order.
func FilterEdges(edges []roadmap.Edge, hidden roadmap.IDSet) []roadmap.Edge {
	out := make([]roadmap.Edge, 0, len(edges))
	for _, e := range edges {
		if !hidden.Has(e.Source) && !hidden.Has(e.Target) {
			out = append(out, e)
		}
	}
	return out
}

func children(edges []roadmap.Edge) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		if e.IsPrerequisite() {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	return adj
}
