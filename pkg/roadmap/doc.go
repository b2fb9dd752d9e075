// Package roadmap defines the data model of a knowledge roadmap: learning-concept
// nodes connected by directed, typed edges.
//
// # Overview
//
// A roadmap is a directed graph. Each [Node] carries a [NodeData] payload that
// describes one concept (label, status, category, resources). Each [Edge] links
// two nodes and carries a [Relationship]:
//
//   - [Prerequisite]: the target should be learned after the source. These are
//     the only edges used for layout ranking and subtree collapse.
//   - [Related], [Optional]: associative edges, ignored by traversals.
//
// Node identity is the ID string alone. Functions in this module never compare
// nodes structurally.
//
// # Child Projection
//
// [NodeData.ChildIDs] is not stored state. It is a projection of the outgoing
// prerequisite edges of a node, filled in by [ChildIDs] when a node is read
// from the store. [NodeData.ParentID] is a stored back-reference set when a
// node is created through "add child".
//
// # Footprints
//
// Layout and viewport fitting both need node sizes. [Footprint] returns the
// rectangle a node occupies: a fixed width, and a height that grows when the
// node's detail panel is expanded.
//
// # Seed Graph
//
// [DefaultGraph] returns the built-in full-stack roadmap used when no persisted
// state exists. Every call returns an independent copy.
package roadmap
