package layout

import (
	"reflect"
	"testing"

	"github.com/matzehuels/roadmap/pkg/roadmap"
)

func node(id string) roadmap.Node {
	return roadmap.Node{ID: id, Data: roadmap.NodeData{Label: id, Status: roadmap.StatusPending, Category: roadmap.CategoryCore}}
}

func edge(src, tgt string, rel roadmap.Relationship) roadmap.Edge {
	return roadmap.Edge{ID: roadmap.EdgeID(src, tgt), Source: src, Target: tgt, Data: roadmap.EdgeData{Relationship: rel}}
}

func chain(ids ...string) roadmap.Graph {
	var g roadmap.Graph
	for i, id := range ids {
		g.Nodes = append(g.Nodes, node(id))
		if i > 0 {
			g.Edges = append(g.Edges, edge(ids[i-1], id, roadmap.Prerequisite))
		}
	}
	return g
}

func TestLayout_Empty(t *testing.T) {
	got := Layout(roadmap.Graph{}, Options{})
	if len(got) != 0 {
		t.Errorf("Layout(empty) returned %d nodes", len(got))
	}
}

func TestLayout_ChainTopToBottom(t *testing.T) {
	got := Layout(chain("a", "b", "c"), Options{Direction: roadmap.TopToBottom})

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Position.Y <= got[i-1].Position.Y {
			t.Errorf("%s.y = %v, not below %s.y = %v", got[i].ID, got[i].Position.Y, got[i-1].ID, got[i-1].Position.Y)
		}
		if got[i].Position.X != got[0].Position.X {
			t.Errorf("%s.x = %v, want %v", got[i].ID, got[i].Position.X, got[0].Position.X)
		}
	}
}

func TestLayout_ChainLeftToRight(t *testing.T) {
	got := Layout(chain("a", "b", "c"), Options{Direction: roadmap.LeftToRight})

	for i := 1; i < len(got); i++ {
		if got[i].Position.X <= got[i-1].Position.X {
			t.Errorf("%s.x = %v, not right of %s.x = %v", got[i].ID, got[i].Position.X, got[i-1].ID, got[i-1].Position.X)
		}
		if got[i].Position.Y != got[0].Position.Y {
			t.Errorf("%s.y = %v, want %v", got[i].ID, got[i].Position.Y, got[0].Position.Y)
		}
	}
}

func TestLayout_RankSpacing(t *testing.T) {
	got := Layout(chain("a", "b"), Options{RankSep: 50})
	// compact nodes are 100 tall
	if dy := got[1].Position.Y - got[0].Position.Y; dy != 150 {
		t.Errorf("rank distance = %v, want 150", dy)
	}
}

func TestLayout_ExpandedNodeWidensRank(t *testing.T) {
	g := chain("a", "b")
	g.Nodes[0].Data.IsExpanded = true
	got := Layout(g, Options{RankSep: 50})
	if dy := got[1].Position.Y - got[0].Position.Y; dy != 370 {
		t.Errorf("rank distance = %v, want 370", dy)
	}
}

func TestLayout_SiblingsSeparated(t *testing.T) {
	g := roadmap.Graph{
		Nodes: []roadmap.Node{node("root"), node("a"), node("b"), node("c")},
		Edges: []roadmap.Edge{
			edge("root", "a", roadmap.Prerequisite),
			edge("root", "b", roadmap.Prerequisite),
			edge("root", "c", roadmap.Prerequisite),
		},
	}
	got := Layout(g, Options{NodeSep: 20})

	for i := 2; i < 4; i++ {
		if got[i].Position.Y != got[1].Position.Y {
			t.Errorf("%s not on the same rank as a", got[i].ID)
		}
		if d := got[i].Position.X - got[i-1].Position.X; d < roadmap.NodeWidth+20 {
			t.Errorf("%s and %s overlap: dx = %v", got[i-1].ID, got[i].ID, d)
		}
	}
	// root sits above the middle child
	if got[0].Position.X != got[2].Position.X {
		t.Errorf("root.x = %v, want %v", got[0].Position.X, got[2].Position.X)
	}
}

func TestLayout_IgnoresNonPrerequisiteEdges(t *testing.T) {
	g := roadmap.Graph{
		Nodes: []roadmap.Node{node("a"), node("b")},
		Edges: []roadmap.Edge{
			edge("a", "b", roadmap.Related),
			edge("b", "a", roadmap.Optional),
		},
	}
	got := Layout(g, Options{})
	if got[0].Position.Y != got[1].Position.Y {
		t.Errorf("unranked nodes should share rank 0: %v vs %v", got[0].Position, got[1].Position)
	}
}

func TestLayout_IsolatedNodesPlaced(t *testing.T) {
	g := chain("a", "b")
	g.Nodes = append(g.Nodes, node("lonely"))
	got := Layout(g, Options{})
	if got[2].ID != "lonely" {
		t.Fatalf("output order changed: %v", got[2].ID)
	}
	if got[2].Position == got[0].Position {
		t.Error("isolated node overlaps a")
	}
}

func TestLayout_CycleTerminates(t *testing.T) {
	g := chain("a", "b", "c")
	g.Edges = append(g.Edges, edge("c", "a", roadmap.Prerequisite))
	res := Run(g, Options{})
	if len(res.Nodes) != 3 {
		t.Fatalf("len = %d, want 3", len(res.Nodes))
	}
	if res.Reversed != 1 {
		t.Errorf("Reversed = %d, want 1", res.Reversed)
	}
}

func TestLayout_DanglingAndSelfLoopEdgesDropped(t *testing.T) {
	g := chain("a", "b")
	g.Edges = append(g.Edges,
		edge("a", "missing", roadmap.Prerequisite),
		edge("b", "b", roadmap.Prerequisite),
		edge("a", "b", roadmap.Prerequisite),
	)
	res := Run(g, Options{})
	if res.Ranks != 2 {
		t.Errorf("Ranks = %d, want 2", res.Ranks)
	}
}

func TestLayout_LongEdgeSubdivided(t *testing.T) {
	g := chain("a", "b", "c")
	g.Edges = append(g.Edges, edge("a", "c", roadmap.Prerequisite))
	res := Run(g, Options{})
	if res.Virtual != 1 {
		t.Errorf("Virtual = %d, want 1", res.Virtual)
	}
}

func TestLayout_OnlyPositionsChange(t *testing.T) {
	g := roadmap.DefaultGraph()
	got := Layout(g, Options{})
	for i := range got {
		if got[i].ID != g.Nodes[i].ID {
			t.Fatalf("order changed at %d: %s vs %s", i, got[i].ID, g.Nodes[i].ID)
		}
		if !reflect.DeepEqual(got[i].Data, g.Nodes[i].Data) {
			t.Errorf("%s: data changed", got[i].ID)
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	g := roadmap.DefaultGraph()
	a := Layout(g, Options{Direction: roadmap.LeftToRight})
	b := Layout(g, Options{Direction: roadmap.LeftToRight})
	if !reflect.DeepEqual(a, b) {
		t.Error("two layouts of the same input differ")
	}
}

func TestLayout_ParentsAboveChildren(t *testing.T) {
	g := roadmap.DefaultGraph()
	got := Layout(g, Options{})
	idx := roadmap.IndexNodes(got)
	for _, e := range g.Edges {
		if !e.IsPrerequisite() {
			continue
		}
		if got[idx[e.Source]].Position.Y >= got[idx[e.Target]].Position.Y {
			t.Errorf("edge %s: source not above target", e.ID)
		}
	}
}

func TestLayout_NoOverlapWithinRank(t *testing.T) {
	got := Layout(roadmap.DefaultGraph(), Options{})
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			a, b := got[i].Position, got[j].Position
			if a.Y != b.Y {
				continue
			}
			dx := a.X - b.X
			if dx < 0 {
				dx = -dx
			}
			if dx < roadmap.NodeWidth {
				t.Errorf("%s and %s overlap (dx = %v)", got[i].ID, got[j].ID, dx)
			}
		}
	}
}

func TestLayoutCrossings(t *testing.T) {
	// a b
	// |X|
	// d c   initial order puts c after d so a->c, b->d cross.
	g := roadmap.Graph{
		Nodes: []roadmap.Node{node("a"), node("b"), node("d"), node("c")},
		Edges: []roadmap.Edge{
			edge("a", "c", roadmap.Prerequisite),
			edge("b", "d", roadmap.Prerequisite),
		},
	}
	res := Run(g, Options{})
	if res.Crossings != 0 {
		t.Errorf("Crossings = %d, want 0", res.Crossings)
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{Direction: "XX", NodeSep: -1}.WithDefaults()
	want := Options{Direction: roadmap.TopToBottom, NodeSep: DefaultNodeSep, RankSep: DefaultRankSep}
	if o != want {
		t.Errorf("WithDefaults() = %+v, want %+v", o, want)
	}
}
