// Package store holds the mutable roadmap graph.
//
// A [Store] owns the ordered node and edge collections, the set of node ids
// hidden by collapsed subtrees, the layout direction and the current
// selection. Every mutation is applied atomically, written through to the
// configured [Persister] on a best-effort basis and then announced to
// subscribers, all before the mutating call returns.
//
// Edges are the single source of truth for hierarchy. [roadmap.NodeData.ChildIDs]
// is filled in on read from the prerequisite edges and is never stored.
//
// Mutations addressing unknown ids are no-ops: they neither persist nor
// notify.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/roadmap/pkg/observability"
	"github.com/matzehuels/roadmap/pkg/persist"
	"github.com/matzehuels/roadmap/pkg/roadmap"
	"github.com/matzehuels/roadmap/pkg/roadmap/visibility"
)

// DefaultChildOffset is where AddChildNode places a child relative to its parent.
var DefaultChildOffset = roadmap.Position{X: 50, Y: 180}

// DuplicateOffset is where DuplicateNode places a copy relative to the original.
var DuplicateOffset = roadmap.Position{X: 40, Y: 40}

// Persister loads and saves the durable part of the store.
// [persist.Adapter] is the production implementation.
type Persister interface {
	Load(ctx context.Context) (persist.State, bool)
	Save(ctx context.Context, s persist.State) error
}

// Listener is called after every applied mutation with the operation name.
// Listeners run synchronously on the mutating goroutine; they may read from
// the store but must not mutate it.
type Listener func(op string)

// Options configures a Store.
type Options struct {
	// Persister receives a write after every durable mutation. Nil disables
	// persistence.
	Persister Persister

	// Seed builds the initial graph when nothing is stored and on reset.
	// Defaults to [roadmap.DefaultGraph].
	Seed func() roadmap.Graph

	// NewID generates ids for created nodes. Defaults to random UUIDs.
	NewID func() string

	// Logger defaults to log.Default().
	Logger *log.Logger

	// ChildOffset defaults to [DefaultChildOffset].
	ChildOffset *roadmap.Position
}

type state struct {
	nodes     []roadmap.Node
	edges     []roadmap.Edge
	hidden    roadmap.IDSet
	direction roadmap.Direction
	selected  string
}

func (st *state) index(id string) int {
	return slices.IndexFunc(st.nodes, func(n roadmap.Node) bool { return n.ID == id })
}

func (st *state) edgeIndex(id string) int {
	return slices.IndexFunc(st.edges, func(e roadmap.Edge) bool { return e.ID == id })
}

// Store is the roadmap graph store. It is safe for concurrent use; writers
// are serialised and readers never observe a partially applied mutation.
type Store struct {
	persister   Persister
	seed        func() roadmap.Graph
	newID       func() string
	logger      *log.Logger
	childOffset roadmap.Position

	// writeMu is held across mutate, persist and notify, so mutations are
	// applied and announced in call order.
	writeMu sync.Mutex
	mu      sync.RWMutex
	st      state

	listenerMu sync.Mutex
	listeners  []subscription
	nextSub    int
}

type subscription struct {
	id int
	fn Listener
}

// New creates a store. It loads the persisted state once and falls back to
// the seed graph when nothing is stored or the stored form is unusable.
func New(ctx context.Context, opts Options) *Store {
	s := &Store{
		persister:   opts.Persister,
		seed:        opts.Seed,
		newID:       opts.NewID,
		logger:      opts.Logger,
		childOffset: DefaultChildOffset,
	}
	if s.seed == nil {
		s.seed = roadmap.DefaultGraph
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if opts.ChildOffset != nil {
		s.childOffset = *opts.ChildOffset
	}

	if s.persister != nil {
		if ps, ok := s.persister.Load(ctx); ok {
			s.st = state{
				nodes:     ps.Nodes,
				edges:     ps.Edges,
				hidden:    ps.HiddenNodeIDs.Clone(),
				direction: ps.LayoutDirection,
			}
			observability.Store().OnLoad(ctx, "storage", nil)
			if visibility.HasCycle(ps.Edges) {
				s.logger.Warn("stored roadmap has cyclic prerequisites; layout ranks are best effort")
			}
			s.logger.Debug("loaded roadmap", "nodes", len(ps.Nodes), "edges", len(ps.Edges))
			return s
		}
	}

	s.st = s.seedState(roadmap.TopToBottom)
	observability.Store().OnLoad(ctx, "seed", nil)
	s.logger.Debug("using seed roadmap", "nodes", len(s.st.nodes))
	return s
}

func (s *Store) seedState(dir roadmap.Direction) state {
	g := s.seed().Clone()
	return state{
		nodes:     g.Nodes,
		edges:     g.Edges,
		hidden:    roadmap.NewIDSet(),
		direction: dir,
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenerMu.Lock()
			defer s.listenerMu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
		})
	}
}

func (s *Store) notify(op string) {
	s.listenerMu.Lock()
	subs := slices.Clone(s.listeners)
	s.listenerMu.Unlock()
	for _, sub := range subs {
		sub.fn(op)
	}
}

// mutate applies fn under the state lock. When fn reports a change the
// mutation is recorded, persisted if durable, and announced.
func (s *Store) mutate(op string, durable bool, fn func(st *state) bool) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	s.mu.Lock()
	changed := fn(&s.st)
	s.mu.Unlock()
	if !changed {
		return false
	}

	ctx := context.Background()
	observability.Store().OnMutation(ctx, op, time.Since(start))
	s.logger.Debug("mutation", "op", op)
	if durable {
		s.save(ctx)
	}
	s.notify(op)
	return true
}

// save writes the current durable state. Only writers modify the state and
// writeMu is held, so it can be read here without copying.
func (s *Store) save(ctx context.Context) {
	if s.persister == nil {
		return
	}
	err := s.persister.Save(ctx, persist.State{
		Nodes:           s.st.nodes,
		Edges:           s.st.edges,
		LayoutDirection: s.st.direction,
		HiddenNodeIDs:   s.st.hidden,
	})
	if err != nil {
		s.logger.Warn("persist failed, keeping in-memory state", "error", err)
	}
}

// Snapshot is a consistent copy of the whole store.
type Snapshot struct {
	Nodes           []roadmap.Node    `json:"nodes"`
	Edges           []roadmap.Edge    `json:"edges"`
	HiddenNodeIDs   roadmap.IDSet     `json:"-"`
	LayoutDirection roadmap.Direction `json:"layoutDirection"`
	SelectedNodeID  string            `json:"selectedNodeId,omitempty"`
}

// VisibleNodes returns the snapshot's nodes that are not hidden.
func (sn Snapshot) VisibleNodes() []roadmap.Node {
	return visibility.FilterNodes(sn.Nodes, sn.HiddenNodeIDs)
}

// VisibleEdges returns the snapshot's edges whose endpoints are both visible.
func (sn Snapshot) VisibleEdges() []roadmap.Edge {
	return visibility.FilterEdges(sn.Edges, sn.HiddenNodeIDs)
}

// Snapshot returns a copy of the full state taken under one read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Nodes:           s.copyNodes(),
		Edges:           s.copyEdges(),
		HiddenNodeIDs:   s.st.hidden.Clone(),
		LayoutDirection: s.st.direction,
		SelectedNodeID:  s.st.selected,
	}
}

// Nodes returns a copy of all nodes with ChildIDs filled in.
func (s *Store) Nodes() []roadmap.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyNodes()
}

// Edges returns a copy of all edges.
func (s *Store) Edges() []roadmap.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyEdges()
}

// Node returns a copy of the node with id.
func (s *Store) Node(id string) (roadmap.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.st.index(id)
	if i < 0 {
		return roadmap.Node{}, false
	}
	n := s.st.nodes[i].Clone()
	n.Data.ChildIDs = roadmap.ChildIDs(id, s.st.edges)
	return n, true
}

// ChildIDs returns the targets of prerequisite edges leaving id.
func (s *Store) ChildIDs(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return roadmap.ChildIDs(id, s.st.edges)
}

// HiddenNodeIDs returns a copy of the hidden set.
func (s *Store) HiddenNodeIDs() roadmap.IDSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.hidden.Clone()
}

// LayoutDirection returns the current layout direction.
func (s *Store) LayoutDirection() roadmap.Direction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.direction
}

// SelectedNodeID returns the selected node id, or "" when nothing is selected.
func (s *Store) SelectedNodeID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.selected
}

// VisibleNodes returns the nodes not hidden by a collapsed ancestor,
// recomputed on every call.
func (s *Store) VisibleNodes() []roadmap.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return visibility.FilterNodes(s.copyNodes(), s.st.hidden)
}

// VisibleEdges returns the edges whose endpoints are both visible.
func (s *Store) VisibleEdges() []roadmap.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return visibility.FilterEdges(s.copyEdges(), s.st.hidden)
}

func (s *Store) copyNodes() []roadmap.Node {
	children := make(map[string][]string)
	for _, e := range s.st.edges {
		if e.IsPrerequisite() {
			children[e.Source] = append(children[e.Source], e.Target)
		}
	}
	out := make([]roadmap.Node, len(s.st.nodes))
	for i, n := range s.st.nodes {
		out[i] = n.Clone()
		out[i].Data.ChildIDs = slices.Clone(children[n.ID])
	}
	return out
}

func (s *Store) copyEdges() []roadmap.Edge {
	out := slices.Clone(s.st.edges)
	if out == nil {
		out = []roadmap.Edge{}
	}
	return out
}
