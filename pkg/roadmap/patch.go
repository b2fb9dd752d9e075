package roadmap

import "slices"

// NodePatch is a partial NodeData. Nil fields are left unchanged; non-nil
// slices replace the whole slice. ChildIDs cannot be patched because it is
// derived from edges.
type NodePatch struct {
	Label       *string     `json:"label,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Category    *Category   `json:"category,omitempty"`
	Duration    *int        `json:"duration,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	IsExpanded  *bool       `json:"isExpanded,omitempty"`
	IsCollapsed *bool       `json:"isCollapsed,omitempty"`
	ParentID    *string     `json:"parentId,omitempty"`
	Resources   *[]Resource `json:"resources,omitempty"`
}

// Apply shallow-merges the patch into d and returns the result.
func (p NodePatch) Apply(d NodeData) NodeData {
	if p.Label != nil {
		d.Label = *p.Label
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Duration != nil {
		v := *p.Duration
		d.Duration = &v
	}
	if p.Tags != nil {
		d.Tags = slices.Clone(*p.Tags)
	}
	if p.IsExpanded != nil {
		d.IsExpanded = *p.IsExpanded
	}
	if p.IsCollapsed != nil {
		d.IsCollapsed = *p.IsCollapsed
	}
	if p.ParentID != nil {
		d.ParentID = *p.ParentID
	}
	if p.Resources != nil {
		d.Resources = slices.Clone(*p.Resources)
	}
	return d
}

// IsEmpty reports whether the patch changes nothing.
func (p NodePatch) IsEmpty() bool {
	return p == NodePatch{}
}
