package graph

import (
	"slices"
	"time"

	"github.com/vk/recipemap/internal/cycle"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

// Snapshot is an immutable, fully built recipe graph.
type Snapshot struct {
	buildID   string
	builtAt   time.Time
	nodes     map[ruleid.ID]*node.RuleNode
	order     []ruleid.ID
	edges     []Edge
	hasCycles bool
}

// NewSnapshot copies nodes and edges into a new snapshot and runs the
// whole-graph cycle diagnostic over every edge kind.
func NewSnapshot(buildID string, builtAt time.Time, nodes map[ruleid.ID]*node.RuleNode, edges []Edge) *Snapshot {
	s := &Snapshot{
		buildID: buildID,
		builtAt: builtAt,
		nodes:   make(map[ruleid.ID]*node.RuleNode, len(nodes)),
		order:   make([]ruleid.ID, 0, len(nodes)),
		edges:   slices.Clone(edges),
	}
	for id, n := range nodes {
		s.nodes[id] = n
		s.order = append(s.order, id)
	}
	slices.SortFunc(s.order, ruleid.Compare)

	adjacency := make(map[ruleid.ID][]ruleid.ID, len(s.nodes))
	for _, e := range s.edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}
	s.hasCycles = cycle.HasCycle(s.order, func(id ruleid.ID) []ruleid.ID {
		return adjacency[id]
	})
	return s
}

// Empty returns a snapshot with no nodes or edges.
func Empty(buildID string, builtAt time.Time) *Snapshot {
	return NewSnapshot(buildID, builtAt, nil, nil)
}

// BuildID identifies the build that produced the snapshot.
func (s *Snapshot) BuildID() string { return s.buildID }

// BuiltAt is the build completion time.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// NodeCount returns the number of rule nodes.
func (s *Snapshot) NodeCount() int { return len(s.order) }

// EdgeCount returns the number of relationship edges.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

// HasCycles reports whether the graph contains a cycle over any edge kind.
// This is diagnostic: sibling, alternative and conversion edges form cycles
// by construction.
func (s *Snapshot) HasCycles() bool { return s.hasCycles }

// Node looks up a rule by id.
func (s *Snapshot) Node(id ruleid.ID) (*node.RuleNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// IDs returns every rule id in ascending order.
func (s *Snapshot) IDs() []ruleid.ID {
	return slices.Clone(s.order)
}

// Nodes returns every rule node ordered by id.
func (s *Snapshot) Nodes() []*node.RuleNode {
	out := make([]*node.RuleNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// Edges returns a copy of the edge list in build order.
func (s *Snapshot) Edges() []Edge {
	return slices.Clone(s.edges)
}

// EdgesFrom returns the edges leaving id.
func (s *Snapshot) EdgesFrom(id ruleid.ID) []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges entering id.
func (s *Snapshot) EdgesTo(id ruleid.ID) []Edge {
	var out []Edge
	for _, e := range s.edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// NodesByInput returns the rules consuming r, ordered by id.
func (s *Snapshot) NodesByInput(r node.Resource) []*node.RuleNode {
	var out []*node.RuleNode
	for _, id := range s.order {
		if n := s.nodes[id]; n.HasInput(r) {
			out = append(out, n)
		}
	}
	return out
}

// NodesByOutput returns the rules producing r, ordered by id.
func (s *Snapshot) NodesByOutput(r node.Resource) []*node.RuleNode {
	var out []*node.RuleNode
	for _, id := range s.order {
		if n := s.nodes[id]; n.Output() == r {
			out = append(out, n)
		}
	}
	return out
}

// KindCounts tallies edges per relationship kind.
func (s *Snapshot) KindCounts() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, e := range s.edges {
		counts[e.Kind]++
	}
	return counts
}
