package roadmap

import (
	"fmt"
	"slices"
)

// Node dimensions used by layout and viewport fitting.
const (
	NodeWidth          = 280.0
	NodeHeight         = 100.0
	ExpandedNodeHeight = 320.0
)

// Position is a 2D coordinate. Node positions use the top-left corner convention.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Resource is a learning resource attached to a concept.
type Resource struct {
	Title string       `json:"title" bson:"title"`
	URL   string       `json:"url" bson:"url"`
	Type  ResourceType `json:"type" bson:"type"`
}

// NodeData holds the attributes of a learning concept.
//
// ChildIDs is a read-only projection of outgoing prerequisite edges. It is
// never persisted and writes to it are ignored by the store.
type NodeData struct {
	Label       string     `json:"label" bson:"label"`
	Description string     `json:"description" bson:"description"`
	Status      Status     `json:"status" bson:"status"`
	Category    Category   `json:"category" bson:"category"`
	Duration    *int       `json:"duration,omitempty" bson:"duration,omitempty"` // minutes
	Tags        []string   `json:"tags" bson:"tags"`
	IsExpanded  bool       `json:"isExpanded" bson:"isExpanded"`
	IsCollapsed bool       `json:"isCollapsed" bson:"isCollapsed"`
	ParentID    string     `json:"parentId,omitempty" bson:"parentId,omitempty"`
	ChildIDs    []string   `json:"-" bson:"-"`
	Resources   []Resource `json:"resources" bson:"resources"`
}

// Clone returns a deep copy of the data.
func (d NodeData) Clone() NodeData {
	out := d
	if d.Duration != nil {
		v := *d.Duration
		out.Duration = &v
	}
	out.Tags = slices.Clone(d.Tags)
	out.ChildIDs = slices.Clone(d.ChildIDs)
	out.Resources = slices.Clone(d.Resources)
	return out
}

// Validate checks the invariants of a node payload: a non-empty label, known
// enum values, a non-negative duration and well-typed resources.
func (d NodeData) Validate() error {
	if d.Label == "" {
		return fmt.Errorf("label must not be empty")
	}
	if !d.Status.Valid() {
		return fmt.Errorf("invalid status %q", d.Status)
	}
	if !d.Category.Valid() {
		return fmt.Errorf("invalid category %q", d.Category)
	}
	if d.Duration != nil && *d.Duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	for i, r := range d.Resources {
		if !r.Type.Valid() {
			return fmt.Errorf("resource %d: invalid type %q", i, r.Type)
		}
	}
	return nil
}

// Node is a learning concept placed on the roadmap canvas.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Position Position `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

// EdgeData is the payload of an edge.
type EdgeData struct {
	Relationship Relationship `json:"relationship" bson:"relationship"`
}

// Edge is a directed relationship between two nodes.
type Edge struct {
	ID     string   `json:"id" bson:"id"`
	Source string   `json:"source" bson:"source"`
	Target string   `json:"target" bson:"target"`
	Data   EdgeData `json:"data" bson:"data"`
}

// IsPrerequisite reports whether the edge takes part in ranking and collapse.
func (e Edge) IsPrerequisite() bool { return e.Data.Relationship == Prerequisite }

// EdgeID returns the conventional edge identifier for a source/target pair.
// Deriving the ID from the endpoints makes repeated connect calls collide
// instead of piling up duplicate edges.
func EdgeID(source, target string) string {
	return "e-" + source + "-" + target
}

// Graph is an ordered collection of nodes and edges.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: slices.Clone(g.Edges),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	return out
}

// Footprint returns the width and height a node occupies on the canvas.
// Expanded nodes are taller because their detail panel is open.
func Footprint(n Node) (w, h float64) {
	if n.Data.IsExpanded {
		return NodeWidth, ExpandedNodeHeight
	}
	return NodeWidth, NodeHeight
}

// ChildIDs returns the targets of the prerequisite edges leaving id, in edge
// order. It is the projection used for [NodeData.ChildIDs].
func ChildIDs(id string, edges []Edge) []string {
	var out []string
	for _, e := range edges {
		if e.Source == id && e.IsPrerequisite() {
			out = append(out, e.Target)
		}
	}
	return out
}

// ParentIDs returns the sources of the prerequisite edges entering id, in edge order.
func ParentIDs(id string, edges []Edge) []string {
	var out []string
	for _, e := range edges {
		if e.Target == id && e.IsPrerequisite() {
			out = append(out, e.Source)
		}
	}
	return out
}

// IndexNodes maps node IDs to their position in nodes. When an id repeats,
// the first occurrence wins.
func IndexNodes(nodes []Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := idx[n.ID]; !dup {
			idx[n.ID] = i
		}
	}
	return idx
}
