package visibility

import (
	"slices"
	"testing"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

func prereq(src, tgt string) roadmap.Edge {
	return roadmap.Edge{ID: roadmap.EdgeID(src, tgt), Source: src, Target: tgt,
		Data: roadmap.EdgeData{Relationship: roadmap.Prerequisite}}
}

func TestCollapsedDescendants_SeedFrontend(t *testing.T) {
	g := roadmap.DefaultGraph()
	got := CollapsedDescendants("frontend", g.Edges)
	want := roadmap.NewIDSet("html-css", "javascript", "react", "state-management",
		"react-hooks", "react-patterns", "typescript")
	if !got.Equal(want) {
		t.Errorf("CollapsedDescendants(frontend) = %v, want %v", got.Sorted(), want.Sorted())
	}
}

func TestCollapsedDescendants(t *testing.T) {
	tests := []struct {
		name  string
		start string
		edges []roadmap.Edge
		want  []string
	}{
		{"leaf", "a", []roadmap.Edge{prereq("b", "a")}, nil},
		{"unknown", "x", []roadmap.Edge{prereq("a", "b")}, nil},
		{"chain", "a", []roadmap.Edge{prereq("a", "b"), prereq("b", "c")}, []string{"b", "c"}},
		{"diamond", "a", []roadmap.Edge{prereq("a", "b"), prereq("a", "c"), prereq("b", "d"), prereq("c", "d")},
			[]string{"b", "c", "d"}},
		{"cycle excludes start", "a", []roadmap.Edge{prereq("a", "b"), prereq("b", "c"), prereq("c", "a")},
			[]string{"b", "c"}},
		{"self loop", "a", []roadmap.Edge{prereq("a", "a")}, nil},
		{"ignores related", "a", []roadmap.Edge{
			prereq("a", "b"),
			{ID: "r", Source: "a", Target: "c", Data: roadmap.EdgeData{Relationship: roadmap.Related}},
			{ID: "o", Source: "b", Target: "d", Data: roadmap.EdgeData{Relationship: roadmap.Optional}},
		}, []string{"b"}},
		{"direction matters", "b", []roadmap.Edge{prereq("a", "b")}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollapsedDescendants(tt.start, tt.edges).Sorted()
			if !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("CollapsedDescendants(%s) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestHiddenBy(t *testing.T) {
	node := func(id string, collapsed bool) roadmap.Node {
		return roadmap.Node{ID: id, Data: roadmap.NodeData{IsCollapsed: collapsed}}
	}
	edges := []roadmap.Edge{prereq("a", "b"), prereq("b", "c"), prereq("a", "d"), prereq("e", "f")}

	tests := []struct {
		name  string
		nodes []roadmap.Node
		want  []string
	}{
		{"none collapsed", []roadmap.Node{node("a", false), node("b", false)}, nil},
		{"inner only", []roadmap.Node{node("a", false), node("b", true)}, []string{"c"}},
		{"nested", []roadmap.Node{node("a", true), node("b", true)}, []string{"b", "c", "d"}},
		{"disjoint", []roadmap.Node{node("b", true), node("e", true)}, []string{"c", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HiddenBy(tt.nodes, edges).Sorted()
			if !slices.Equal(got, tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("HiddenBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWouldCycle(t *testing.T) {
	edges := []roadmap.Edge{prereq("a", "b"), prereq("b", "c")}
	if !WouldCycle("c", "a", edges) {
		t.Error("c→a should close a cycle")
	}
	if !WouldCycle("a", "a", edges) {
		t.Error("a self loop should count as a cycle")
	}
	if WouldCycle("a", "c", edges) {
		t.Error("a→c is a shortcut, not a cycle")
	}
}

func TestHasCycle(t *testing.T) {
	if HasCycle(roadmap.DefaultGraph().Edges) {
		t.Error("seed graph should be acyclic")
	}
	if !HasCycle([]roadmap.Edge{prereq("a", "b"), prereq("b", "a")}) {
		t.Error("two-node cycle not detected")
	}
	related := roadmap.Edge{ID: "r", Source: "b", Target: "a", Data: roadmap.EdgeData{Relationship: roadmap.Related}}
	if HasCycle([]roadmap.Edge{prereq("a", "b"), related}) {
		t.Error("related edges must not form cycles")
	}
}

func TestFilter(t *testing.T) {
	g := roadmap.DefaultGraph()
	hidden := CollapsedDescendants("frontend", g.Edges)

	nodes := FilterNodes(g.Nodes, hidden)
	if len(nodes)+hidden.Len() != len(g.Nodes) {
		t.Errorf("visible %d + hidden %d != total %d", len(nodes), hidden.Len(), len(g.Nodes))
	}
	for _, n := range nodes {
		if hidden.Has(n.ID) {
			t.Errorf("hidden node %s is visible", n.ID)
		}
	}

	edges := FilterEdges(g.Edges, hidden)
	for _, e := range edges {
		if hidden.Has(e.Source) || hidden.Has(e.Target) {
			t.Errorf("edge %s touches a hidden node", e.ID)
		}
	}
	// frontend itself stays visible along with its incoming edge
	if !slices.ContainsFunc(edges, func(e roadmap.Edge) bool { return e.ID == "e-root-frontend" }) {
		t.Error("e-root-frontend should remain visible")
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	nodes := []roadmap.Node{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	got := FilterNodes(nodes, roadmap.NewIDSet("a"))
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("FilterNodes() = %v", got)
	}
	if got := FilterNodes(nodes, nil); len(got) != 3 {
		t.Errorf("FilterNodes(nil) dropped nodes: %v", got)
	}
}
