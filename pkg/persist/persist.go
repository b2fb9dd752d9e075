// Package persist converts roadmap store state to and from its durable form.
//
// The durable form is a versioned JSON envelope:
//
//	{
//	  "state": {
//	    "nodes": [...],
//	    "edges": [...],
//	    "layoutDirection": "TB",
//	    "hiddenNodeIds": ["a", "b"]
//	  },
//	  "version": 1
//	}
//
// JSON has no set type, so the hidden-id set is written as a sorted array
// and rebuilt into a set on read. Selection and other transient fields are
// not part of the durable form.
package persist

import (
	"bytes"
	"encoding/json"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// Version is the durable form version written by [Serialize].
const Version = 1

// State holds the durable fields of the store.
type State struct {
	Nodes           []roadmap.Node
	Edges           []roadmap.Edge
	LayoutDirection roadmap.Direction
	HiddenNodeIDs   roadmap.IDSet
}

type envelope struct {
	State   *durableState `json:"state"`
	Version int           `json:"version"`
}

type durableState struct {
	Nodes           []roadmap.Node    `json:"nodes"`
	Edges           []roadmap.Edge    `json:"edges"`
	LayoutDirection roadmap.Direction `json:"layoutDirection"`
	HiddenNodeIDs   []string          `json:"hiddenNodeIds"`
}

// Serialize encodes s into the durable form. Hidden ids are written sorted,
// so equal states produce identical bytes.
func Serialize(s State) ([]byte, error) {
	ds := durableState{
		Nodes:           s.Nodes,
		Edges:           s.Edges,
		LayoutDirection: s.LayoutDirection,
		HiddenNodeIDs:   s.HiddenNodeIDs.Sorted(),
	}
	if ds.Nodes == nil {
		ds.Nodes = []roadmap.Node{}
	}
	if ds.Edges == nil {
		ds.Edges = []roadmap.Edge{}
	}
	if ds.HiddenNodeIDs == nil {
		ds.HiddenNodeIDs = []string{}
	}
	if ds.LayoutDirection == "" {
		ds.LayoutDirection = roadmap.TopToBottom
	}
	data, err := json.Marshal(envelope{State: &ds, Version: Version})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode state")
	}
	return data, nil
}

// wire types accept the legacy childIds field, which is derived from edges
// and therefore discarded.
type wireEnvelope struct {
	State   *wireState `json:"state"`
	Version int        `json:"version"`
}

type wireState struct {
	Nodes           []wireNode        `json:"nodes"`
	Edges           []roadmap.Edge    `json:"edges"`
	LayoutDirection roadmap.Direction `json:"layoutDirection"`
	HiddenNodeIDs   []string          `json:"hiddenNodeIds"`
}

type wireNode struct {
	ID       string           `json:"id"`
	Position roadmap.Position `json:"position"`
	Data     wireNodeData     `json:"data"`
}

type wireNodeData struct {
	roadmap.NodeData
	ChildIDs []string `json:"childIds,omitempty"`
}

// Deserialize decodes and validates a durable form. Unknown fields, a
// missing state or node or edge list, invalid enums, empty or duplicate ids and dangling edge
// endpoints are rejected with MALFORMED_STATE; any version other than
// [Version] is rejected with UNSUPPORTED_VERSION. Hidden ids that name no
// node are dropped.
func Deserialize(data []byte) (State, error) {
	var env wireEnvelope
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&env); err != nil {
		return State{}, errors.Wrap(errors.ErrCodeMalformedState, err, "decode state")
	}
	if dec.More() {
		return State{}, errors.New(errors.ErrCodeMalformedState, "trailing data after state")
	}
	if env.Version != Version {
		return State{}, errors.New(errors.ErrCodeUnsupportedVersion, "unsupported state version %d (want %d)", env.Version, Version)
	}
	if env.State == nil {
		return State{}, errors.New(errors.ErrCodeMalformedState, "missing state")
	}

	ws := env.State
	if ws.Nodes == nil {
		return State{}, errors.New(errors.ErrCodeMalformedState, "missing nodes")
	}
	if ws.Edges == nil {
		return State{}, errors.New(errors.ErrCodeMalformedState, "missing edges")
	}
	s := State{
		Nodes:           make([]roadmap.Node, len(ws.Nodes)),
		Edges:           ws.Edges,
		LayoutDirection: ws.LayoutDirection,
		HiddenNodeIDs:   roadmap.NewIDSet(),
	}
	if s.LayoutDirection == "" {
		s.LayoutDirection = roadmap.TopToBottom
	}
	if !s.LayoutDirection.Valid() {
		return State{}, errors.New(errors.ErrCodeMalformedState, "invalid layout direction %q", s.LayoutDirection)
	}

	ids := roadmap.NewIDSet()
	for i, wn := range ws.Nodes {
		if wn.ID == "" {
			return State{}, errors.New(errors.ErrCodeMalformedState, "node %d has no id", i)
		}
		if ids.Has(wn.ID) {
			return State{}, errors.New(errors.ErrCodeMalformedState, "duplicate node id %q", wn.ID)
		}
		if err := wn.Data.NodeData.Validate(); err != nil {
			return State{}, errors.Wrap(errors.ErrCodeMalformedState, err, "node %q", wn.ID)
		}
		ids.Add(wn.ID)
		d := wn.Data.NodeData
		d.ChildIDs = nil
		s.Nodes[i] = roadmap.Node{ID: wn.ID, Position: wn.Position, Data: d}
	}

	edgeIDs := roadmap.NewIDSet()
	for i, e := range s.Edges {
		if e.ID == "" {
			return State{}, errors.New(errors.ErrCodeMalformedState, "edge %d has no id", i)
		}
		if edgeIDs.Has(e.ID) {
			return State{}, errors.New(errors.ErrCodeMalformedState, "duplicate edge id %q", e.ID)
		}
		edgeIDs.Add(e.ID)
		if !e.Data.Relationship.Valid() {
			return State{}, errors.New(errors.ErrCodeMalformedState, "edge %q: invalid relationship %q", e.ID, e.Data.Relationship)
		}
		if !ids.Has(e.Source) || !ids.Has(e.Target) {
			return State{}, errors.New(errors.ErrCodeMalformedState, "edge %q references an unknown node", e.ID)
		}
	}

	for _, id := range ws.HiddenNodeIDs {
		if ids.Has(id) {
			s.HiddenNodeIDs.Add(id)
		}
	}
	return s, nil
}
