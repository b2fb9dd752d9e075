package roadmap

import (
	"encoding/json"
	"fmt"
	"io"
)

// AIRoadmapResponse is the shape produced by an external roadmap generator.
// The store ingests it one node and one edge at a time.
type AIRoadmapResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Nodes       []AINode `json:"nodes"`
	Edges       []AIEdge `json:"edges"`
}

// AINode is a generated concept payload.
type AINode struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Status      Status     `json:"status,omitempty"`
	Category    Category   `json:"category,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Resources   []Resource `json:"resources,omitempty"`
}

// AIEdge is a generated edge descriptor.
type AIEdge struct {
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Relationship Relationship `json:"relationship,omitempty"`
}

// ReadAIRoadmap decodes a generator response from r.
func ReadAIRoadmap(r io.Reader) (AIRoadmapResponse, error) {
	var resp AIRoadmapResponse
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&resp); err != nil {
		return AIRoadmapResponse{}, fmt.Errorf("decode roadmap: %w", err)
	}
	return resp, nil
}

// ToNode converts a generated concept into a Node at pos. Missing status
// defaults to pending and missing category to core.
func (a AINode) ToNode(pos Position) Node {
	status := a.Status
	if status == "" {
		status = StatusPending
	}
	cat := a.Category
	if cat == "" {
		cat = CategoryCore
	}
	n := Node{
		ID:       a.ID,
		Position: pos,
		Data: NodeData{
			Label:       a.Label,
			Description: a.Description,
			Status:      status,
			Category:    cat,
			Tags:        a.Tags,
			Resources:   a.Resources,
		},
	}
	if a.Duration != nil {
		d := *a.Duration
		n.Data.Duration = &d
	}
	return n
}

// EffectiveRelationship returns the edge relationship, defaulting to prerequisite.
func (a AIEdge) EffectiveRelationship() Relationship {
	if a.Relationship == "" {
		return Prerequisite
	}
	return a.Relationship
}
