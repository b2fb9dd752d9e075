package roadmap

import "fmt"

// Status is the learning progress of a concept.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	// StatusLocked means the concept is not yet reachable.
	StatusLocked Status = "locked"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusLocked}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusLocked:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid status %q (must be pending, in-progress, completed or locked)", s)
	}
	return st, nil
}

// Category groups concepts visually. It has no behavioral effect.
type Category string

const (
	CategoryFoundation Category = "foundation"
	CategoryCore       Category = "core"
	CategoryAdvanced   Category = "advanced"
	CategoryPractice   Category = "practice"
	CategoryProject    Category = "project"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFoundation, CategoryCore, CategoryAdvanced, CategoryPractice, CategoryProject:
		return true
	}
	return false
}

// ResourceType classifies a learning resource.
type ResourceType string

const (
	ResourceVideo         ResourceType = "video"
	ResourceArticle       ResourceType = "article"
	ResourceDocumentation ResourceType = "documentation"
	ResourceExercise      ResourceType = "exercise"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceVideo, ResourceArticle, ResourceDocumentation, ResourceExercise:
		return true
	}
	return false
}

// Relationship is the meaning of an edge.
type Relationship string

const (
	// Prerequisite edges mean "target should be learned after source".
	Prerequisite Relationship = "prerequisite"
	Related      Relationship = "related"
	Optional     Relationship = "optional"
)

// Valid reports whether r is a known relationship.
func (r Relationship) Valid() bool {
	switch r {
	case Prerequisite, Related, Optional:
		return true
	}
	return false
}

// ParseRelationship converts a string into a Relationship.
func ParseRelationship(s string) (Relationship, error) {
	r := Relationship(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid relationship %q (must be prerequisite, related or optional)", s)
	}
	return r, nil
}

// Direction is the main axis of the layered layout.
type Direction string

const (
	TopToBottom Direction = "TB"
	LeftToRight Direction = "LR"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == TopToBottom || d == LeftToRight }

// ParseDirection converts a string into a Direction.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("invalid direction %q (must be TB or LR)", s)
	}
	return d, nil
}
