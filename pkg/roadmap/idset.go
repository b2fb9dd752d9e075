package roadmap

import (
	"maps"
	"slices"
)

// IDSet is a set of node IDs.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Remove deletes id.
func (s IDSet) Remove(id string) { delete(s, id) }

// Len returns the number of ids.
func (s IDSet) Len() int { return len(s) }

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Clone returns an independent copy. Cloning a nil set returns an empty set.
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	maps.Copy(out, s)
	return out
}

// Equal reports set equality.
func (s IDSet) Equal(o IDSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}
