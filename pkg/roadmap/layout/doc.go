// Package layout computes layered ("rank/file") positions for a roadmap.
//
// # Overview
//
// [Layout] is a pure function: it takes the roadmap's nodes and edges and
// returns a copy of the nodes with new positions. Nothing else about a node
// changes, and the output keeps the input order. Two calls with identical
// input produce identical output.
//
// Only prerequisite edges take part. Related and optional edges are
// associative decorations and would distort the ranking if they were
// included.
//
// # Pipeline
//
// The engine runs the classic layered drawing phases over an internal graph:
//
//  1. Cycle breaking: a depth-first search marks back edges and reverses
//     them so the remaining phases see an acyclic graph.
//  2. Ranking: longest-path layering via Kahn's algorithm. Sources and
//     isolated nodes sit on rank 0.
//  3. Subdivision: edges spanning several ranks are split by virtual nodes so
//     every edge connects adjacent ranks.
//  4. Ordering: barycenter sweeps reorder each rank. A sweep is kept only if
//     it lowers the crossing count, which is computed with a Fenwick tree.
//  5. Placement: ranks are stacked along the main axis using the tallest
//     footprint in each rank, nodes are packed across the rank and pulled
//     toward the median of their neighbours.
//
// The engine works with node centres and converts them into the top-left
// convention of [roadmap.Position] at the end.
//
// # Direction
//
// [roadmap.TopToBottom] stacks ranks vertically. [roadmap.LeftToRight] swaps
// the axes so ranks become columns.
package layout
