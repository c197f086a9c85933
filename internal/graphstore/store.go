package graphstore

import (
	"slices"
	"time"

	"github.com/vk/recipemap/internal/cycle"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

// Store is the build-scoped graph store.
type Store struct {
	nodes     map[ruleid.ID]*node.RuleNode
	edges     []graph.Edge
	resources map[node.Resource][]ruleid.ID
	deps      map[node.Resource]map[node.Resource]struct{} // Key: resource, Value: resources it enables
	processed map[graph.EdgeKey]struct{}
}

// New creates a new, empty store.
func New() *Store {
	s := &Store{}
	s.Clear()
	return s
}

// Clear resets every collection. It is called once at the start of a build.
func (s *Store) Clear() {
	s.nodes = make(map[ruleid.ID]*node.RuleNode)
	s.edges = nil
	s.resources = make(map[node.Resource][]ruleid.ID)
	s.deps = make(map[node.Resource]map[node.Resource]struct{})
	s.processed = make(map[graph.EdgeKey]struct{})
}

// AddNode inserts n, overwriting any node with the same id.
func (s *Store) AddNode(n *node.RuleNode) {
	s.nodes[n.ID()] = n
}

// Node retrieves a node by id.
func (s *Store) Node(id ruleid.ID) (*node.RuleNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns every node ordered by id.
func (s *Store) Nodes() []*node.RuleNode {
	out := make([]*node.RuleNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *node.RuleNode) int { return ruleid.Compare(a.ID(), b.ID()) })
	return out
}

// NodeCount returns the number of stored nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// AddEdge appends e. Duplicates are not checked here.
func (s *Store) AddEdge(e graph.Edge) {
	s.edges = append(s.edges, e)
}

// Edges returns a copy of the raw edge list in insertion order.
func (s *Store) Edges() []graph.Edge {
	return slices.Clone(s.edges)
}

// ReplaceEdges swaps the raw edge list, used after validation.
func (s *Store) ReplaceEdges(edges []graph.Edge) {
	s.edges = slices.Clone(edges)
}

// RegisterResourceMapping records that rule id uses r as an input or output.
// Registering the same pair twice has no effect.
func (s *Store) RegisterResourceMapping(r node.Resource, id ruleid.ID) {
	if slices.Contains(s.resources[r], id) {
		return
	}
	s.resources[r] = append(s.resources[r], id)
}

// RulesForResource returns the rules registered for r in registration order.
func (s *Store) RulesForResource(r node.Resource) []ruleid.ID {
	return slices.Clone(s.resources[r])
}

// Resources returns every indexed resource in ascending order.
func (s *Store) Resources() []node.Resource {
	out := make([]node.Resource, 0, len(s.resources))
	for r := range s.resources {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// RecordDependency notes that resource a enables resource b. It reports
// whether the entry is new.
func (s *Store) RecordDependency(a, b node.Resource) bool {
	set, ok := s.deps[a]
	if !ok {
		set = make(map[node.Resource]struct{})
		s.deps[a] = set
	}
	if _, exists := set[b]; exists {
		return false
	}
	set[b] = struct{}{}
	return true
}

// HasDependencyPath reports whether target is reachable from start in the
// resource dependency index. It does not mutate the store.
func (s *Store) HasDependencyPath(start, target node.Resource) bool {
	return cycle.PathExists(start, target, s.dependents)
}

func (s *Store) dependents(r node.Resource) []node.Resource {
	set := s.deps[r]
	if len(set) == 0 {
		return nil
	}
	out := make([]node.Resource, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// MarkProcessed records that an edge with key k has been emitted.
func (s *Store) MarkProcessed(k graph.EdgeKey) {
	s.processed[k] = struct{}{}
}

// IsProcessed reports whether an edge with key k has been emitted.
func (s *Store) IsProcessed(k graph.EdgeKey) bool {
	_, ok := s.processed[k]
	return ok
}

// Snapshot produces an immutable copy of the current nodes and edges.
func (s *Store) Snapshot(buildID string, builtAt time.Time) *graph.Snapshot {
	return graph.NewSnapshot(buildID, builtAt, s.nodes, s.edges)
}
