package store

import (
	"context"
	"time"

	"github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/observability"
	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/layout"
)

// ApplyLayout runs the layered layout over every node, hidden ones
// included, and writes the positions back in one mutation. An empty
// opts.Direction uses the store's layout direction.
func (s *Store) ApplyLayout(opts layout.Options) layout.Result {
	var res layout.Result
	s.mutate(OpApplyLayout, true, func(st *state) bool {
		res = s.layout(st, opts)
		return len(st.nodes) > 0
	})
	return res
}

func (s *Store) layout(st *state, opts layout.Options) layout.Result {
	if opts.Direction == "" {
		opts.Direction = st.direction
	}
	start := time.Now()
	res := layout.Run(roadmap.Graph{Nodes: st.nodes, Edges: st.edges}, opts)
	observability.Layout().OnLayout(context.Background(), string(opts.WithDefaults().Direction), len(st.nodes), res.Crossings, time.Since(start))
	for i := range st.nodes {
		st.nodes[i].Position = res.Nodes[i].Position
	}
	return res
}

// ImportResult summarises an ImportRoadmap call.
type ImportResult struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Skipped int `json:"skipped"` // edges refused as dangling, duplicate or cyclic
}

// ImportRoadmap replaces the graph with a generated roadmap. Nodes are
// added one at a time, then edges through the same checks as ConnectWith;
// refused edges are skipped and counted. The hidden set and the selection
// are cleared and the result is laid out in the store's direction.
//
// The response is validated before anything changes: it must contain at
// least one node, and every node needs a valid unique id and label.
func (s *Store) ImportRoadmap(resp roadmap.AIRoadmapResponse) (ImportResult, error) {
	if err := validateImport(resp); err != nil {
		return ImportResult{}, err
	}

	var res ImportResult
	s.mutate(OpImportRoadmap, true, func(st *state) bool {
		st.nodes = nil
		st.edges = nil
		st.hidden = roadmap.NewIDSet()
		st.selected = ""

		for _, an := range resp.Nodes {
			if s.addNode(st, an.ToNode(roadmap.Position{})) {
				res.Nodes++
			}
		}
		for _, ae := range resp.Edges {
			id, err := s.connectWith(st, ae.Source, ae.Target, ae.EffectiveRelationship())
			if err != nil || id == "" {
				s.logger.Debug("skipping imported edge", "source", ae.Source, "target", ae.Target, "error", err)
				res.Skipped++
				continue
			}
			res.Edges++
		}
		s.layout(st, layout.Options{})
		return true
	})
	s.logger.Info("imported roadmap", "title", resp.Title, "nodes", res.Nodes, "edges", res.Edges, "skipped", res.Skipped)
	return res, nil
}

func validateImport(resp roadmap.AIRoadmapResponse) error {
	if len(resp.Nodes) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "roadmap has no nodes")
	}
	seen := roadmap.NewIDSet()
	for i, an := range resp.Nodes {
		if err := errors.ValidateNodeID(an.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if seen.Has(an.ID) {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", an.ID)
		}
		seen.Add(an.ID)
		if err := errors.ValidateLabel(an.Label); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", an.ID)
		}
		if err := an.ToNode(roadmap.Position{}).Data.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", an.ID)
		}
	}
	return nil
}
