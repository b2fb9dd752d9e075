package store

import (
	"slices"
	"strings"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/visibility"
)

// Operation names passed to listeners and metrics.
const (
	OpAddNode            = "addNode"
	OpDeleteNode         = "deleteNode"
	OpAddChildNode       = "addChildNode"
	OpUpdateNodeData     = "updateNodeData"
	OpToggleNodeExpanded = "toggleNodeExpanded"
	OpToggleNodeCollapse = "toggleNodeCollapse"
	OpSetNodeStatus      = "setNodeStatus"
	OpConnect            = "connect"
	OpSetLayoutDirection = "setLayoutDirection"
	OpResetToDefault     = "resetToDefault"
	OpUpdateNodePosition = "updateNodePosition"
	OpSelectNode         = "selectNode"
	OpDuplicateNode      = "duplicateNode"
	OpDeleteEdge         = "deleteEdge"
	OpApplyLayout        = "applyLayout"
	OpImportRoadmap      = "importRoadmap"
)

// AddNode appends n. ChildIDs on n is ignored. A node whose id is empty or
// already present is refused.
func (s *Store) AddNode(n roadmap.Node) {
	s.mutate(OpAddNode, true, func(st *state) bool {
		return s.addNode(st, n)
	})
}

func (s *Store) addNode(st *state, n roadmap.Node) bool {
	if n.ID == "" || st.index(n.ID) >= 0 {
		s.logger.Warn("refusing node with empty or duplicate id", "id", n.ID)
		return false
	}
	n = n.Clone()
	n.Data.ChildIDs = nil
	st.nodes = append(st.nodes, n)
	return true
}

// DeleteNode removes the node and every edge touching it. It also drops the
// id from the hidden set, unhides nodes no collapsed node reaches any more
// and clears the selection when it pointed at the node.
func (s *Store) DeleteNode(id string) {
	s.mutate(OpDeleteNode, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		st.nodes = slices.Delete(st.nodes, i, i+1)
		st.edges = slices.DeleteFunc(st.edges, func(e roadmap.Edge) bool {
			return e.Source == id || e.Target == id
		})
		st.hidden.Remove(id)
		pruneHidden(st)
		if st.selected == id {
			st.selected = ""
		}
		return true
	})
}

// DefaultChildLabel is used by AddChildNode when the label is blank.
const DefaultChildLabel = "New Topic"

// AddChildNode creates a pending node labelled label next to the parent and
// links it with a prerequisite edge. It returns the new id, or false when
// the parent does not exist.
func (s *Store) AddChildNode(parentID, label string) (string, bool) {
	if strings.TrimSpace(label) == "" {
		label = DefaultChildLabel
	}
	var id string
	ok := s.mutate(OpAddChildNode, true, func(st *state) bool {
		pi := st.index(parentID)
		if pi < 0 {
			return false
		}
		parent := st.nodes[pi]
		id = s.newID()
		st.nodes = append(st.nodes, roadmap.Node{
			ID: id,
			Position: roadmap.Position{
				X: parent.Position.X + s.childOffset.X,
				Y: parent.Position.Y + s.childOffset.Y,
			},
			Data: roadmap.NodeData{
				Label:    label,
				Status:   roadmap.StatusPending,
				Category: parent.Data.Category,
				ParentID: parentID,
			},
		})
		s.link(st, parentID, id, roadmap.Prerequisite)
		return true
	})
	if !ok {
		return "", false
	}
	return id, true
}

// link appends an edge and keeps the hidden set consistent: a prerequisite
// edge below a collapsed or hidden node hides everything it brings in.
func (s *Store) link(st *state, source, target string, rel roadmap.Relationship) string {
	id := roadmap.EdgeID(source, target)
	st.edges = append(st.edges, roadmap.Edge{
		ID:     id,
		Source: source,
		Target: target,
		Data:   roadmap.EdgeData{Relationship: rel},
	})
	if rel != roadmap.Prerequisite {
		return id
	}
	if i := st.index(source); st.hidden.Has(source) || (i >= 0 && st.nodes[i].Data.IsCollapsed) {
		for d := range visibility.CollapsedDescendants(source, st.edges) {
			st.hidden.Add(d)
		}
	}
	return id
}

// UpdateNodeData merges patch into the node's data. Changing IsCollapsed
// through a patch updates the hidden set the same way ToggleNodeCollapse
// does. A patch that would leave the node invalid is refused.
func (s *Store) UpdateNodeData(id string, patch roadmap.NodePatch) {
	if patch.IsEmpty() {
		return
	}
	s.mutate(OpUpdateNodeData, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		prev := st.nodes[i].Data
		next := patch.Apply(prev)
		if err := next.Validate(); err != nil {
			s.logger.Warn("refusing node update", "id", id, "error", err)
			return false
		}
		st.nodes[i].Data = next
		if prev.IsCollapsed != next.IsCollapsed {
			setCollapsed(st, id, next.IsCollapsed)
		}
		return true
	})
}

// ToggleNodeExpanded flips the node's detail panel.
func (s *Store) ToggleNodeExpanded(id string) {
	s.mutate(OpToggleNodeExpanded, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		st.nodes[i].Data.IsExpanded = !st.nodes[i].Data.IsExpanded
		return true
	})
}

// ToggleNodeCollapse flips the node's collapsed flag. Collapsing hides every
// prerequisite descendant; expanding unhides the current descendants except
// those still under another collapsed node.
func (s *Store) ToggleNodeCollapse(id string) {
	s.mutate(OpToggleNodeCollapse, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		collapsed := !st.nodes[i].Data.IsCollapsed
		st.nodes[i].Data.IsCollapsed = collapsed
		setCollapsed(st, id, collapsed)
		return true
	})
}

func setCollapsed(st *state, id string, collapsed bool) {
	desc := visibility.CollapsedDescendants(id, st.edges)
	if collapsed {
		for d := range desc {
			st.hidden.Add(d)
		}
		return
	}
	for d := range desc {
		st.hidden.Remove(d)
	}
	// Subtrees of inner nodes that are still collapsed stay hidden.
	for d := range visibility.HiddenBy(st.nodes, st.edges) {
		if desc.Has(d) {
			st.hidden.Add(d)
		}
	}
}

// pruneHidden unhides nodes that no collapsed node reaches any more, after
// an edge or node removal cut them off.
func pruneHidden(st *state) {
	reached := visibility.HiddenBy(st.nodes, st.edges)
	for id := range st.hidden {
		if !reached.Has(id) {
			st.hidden.Remove(id)
		}
	}
}

// SetNodeStatus sets the node's progress status. Unknown statuses are ignored.
func (s *Store) SetNodeStatus(id string, status roadmap.Status) {
	if !status.Valid() {
		s.logger.Warn("ignoring invalid status", "id", id, "status", status)
		return
	}
	s.mutate(OpSetNodeStatus, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 || st.nodes[i].Data.Status == status {
			return false
		}
		st.nodes[i].Data.Status = status
		return true
	})
}

// Connect adds a related edge from source to target with the id
// e-<source>-<target>. It returns false when an endpoint is unknown, the
// endpoints are equal or an edge with that id already exists.
func (s *Store) Connect(source, target string) (string, bool) {
	var id string
	ok := s.mutate(OpConnect, true, func(st *state) bool {
		if source == target || st.index(source) < 0 || st.index(target) < 0 {
			return false
		}
		if st.edgeIndex(roadmap.EdgeID(source, target)) >= 0 {
			return false
		}
		id = s.link(st, source, target, roadmap.Related)
		return true
	})
	return id, ok
}

// ConnectWith adds an edge with an explicit relationship. Unlike Connect it
// reports why an edge was refused: NODE_NOT_FOUND for unknown endpoints,
// INVALID_RELATIONSHIP, INVALID_INPUT for a non-prerequisite self edge and
// CYCLE_WOULD_FORM for a prerequisite edge closing a cycle. Connecting an
// existing pair returns the existing edge id.
func (s *Store) ConnectWith(source, target string, rel roadmap.Relationship) (string, error) {
	var (
		id  string
		err error
	)
	s.mutate(OpConnect, true, func(st *state) bool {
		id, err = s.connectWith(st, source, target, rel)
		return err == nil && id != ""
	})
	if err != nil {
		return "", err
	}
	if id == "" {
		return roadmap.EdgeID(source, target), nil
	}
	return id, nil
}

// connectWith returns "" with a nil error when the edge already exists.
func (s *Store) connectWith(st *state, source, target string, rel roadmap.Relationship) (string, error) {
	if !rel.Valid() {
		return "", errors.New(errors.ErrCodeInvalidRelationship, "invalid relationship %q", rel)
	}
	if st.index(source) < 0 {
		return "", errors.New(errors.ErrCodeNodeNotFound, "node %q not found", source)
	}
	if st.index(target) < 0 {
		return "", errors.New(errors.ErrCodeNodeNotFound, "node %q not found", target)
	}
	if st.edgeIndex(roadmap.EdgeID(source, target)) >= 0 {
		return "", nil
	}
	if rel == roadmap.Prerequisite {
		if visibility.WouldCycle(source, target, st.edges) {
			return "", errors.Cycle(source, target)
		}
	} else if source == target {
		return "", errors.New(errors.ErrCodeInvalidInput, "cannot connect %q to itself", source)
	}
	return s.link(st, source, target, rel), nil
}

// DeleteEdge removes the edge with id. Nodes hidden only because of that
// edge become visible.
func (s *Store) DeleteEdge(id string) {
	s.mutate(OpDeleteEdge, true, func(st *state) bool {
		i := st.edgeIndex(id)
		if i < 0 {
			return false
		}
		st.edges = slices.Delete(st.edges, i, i+1)
		pruneHidden(st)
		return true
	})
}

// SetLayoutDirection records the preferred layout direction. Positions are
// not changed until the next ApplyLayout.
func (s *Store) SetLayoutDirection(d roadmap.Direction) {
	if !d.Valid() {
		s.logger.Warn("ignoring invalid layout direction", "direction", d)
		return
	}
	s.mutate(OpSetLayoutDirection, true, func(st *state) bool {
		if st.direction == d {
			return false
		}
		st.direction = d
		return true
	})
}

// ResetToDefault replaces the graph with the seed and clears the hidden set
// and the selection. The layout direction is kept.
func (s *Store) ResetToDefault() {
	s.mutate(OpResetToDefault, true, func(st *state) bool {
		*st = s.seedState(st.direction)
		return true
	})
}

// UpdateNodePosition moves a node, typically at the end of a drag.
func (s *Store) UpdateNodePosition(id string, pos roadmap.Position) {
	s.mutate(OpUpdateNodePosition, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 || st.nodes[i].Position == pos {
			return false
		}
		st.nodes[i].Position = pos
		return true
	})
}

// SelectNode marks id as selected. The selection is not persisted.
func (s *Store) SelectNode(id string) {
	s.mutate(OpSelectNode, false, func(st *state) bool {
		if st.index(id) < 0 || st.selected == id {
			return false
		}
		st.selected = id
		return true
	})
}

// ClearSelection deselects the current node.
func (s *Store) ClearSelection() {
	s.mutate(OpSelectNode, false, func(st *state) bool {
		if st.selected == "" {
			return false
		}
		st.selected = ""
		return true
	})
}

// DuplicateNode copies a node next to the original. The copy is attached
// with a prerequisite edge to the original's first prerequisite parent,
// falling back to its ParentID when that node still exists; otherwise it is
// left unattached. Collapse and expand flags are cleared on the copy.
func (s *Store) DuplicateNode(id string) (string, bool) {
	var newID string
	ok := s.mutate(OpDuplicateNode, true, func(st *state) bool {
		i := st.index(id)
		if i < 0 {
			return false
		}
		orig := st.nodes[i]

		parent := ""
		if parents := roadmap.ParentIDs(id, st.edges); len(parents) > 0 {
			parent = parents[0]
		} else if orig.Data.ParentID != "" && st.index(orig.Data.ParentID) >= 0 {
			parent = orig.Data.ParentID
		}

		data := orig.Data.Clone()
		data.Label += " (copy)"
		data.IsCollapsed = false
		data.IsExpanded = false
		data.ChildIDs = nil
		data.ParentID = parent

		newID = s.newID()
		st.nodes = append(st.nodes, roadmap.Node{
			ID: newID,
			Position: roadmap.Position{
				X: orig.Position.X + DuplicateOffset.X,
				Y: orig.Position.Y + DuplicateOffset.Y,
			},
			Data: data,
		})
		if parent != "" {
			s.link(st, parent, newID, roadmap.Prerequisite)
		}
		return true
	})
	if !ok {
		return "", false
	}
	return newID, true
}
