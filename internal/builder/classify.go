package builder

import (
	"context"
	"slices"

	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/graphstore"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

// classify derives every relationship kind from the nodes in s.
func classify(ctx context.Context, s *graphstore.Store) {
	logger := ctxlog.FromContext(ctx)
	nodes := s.Nodes()

	linkConsumers(s, nodes)
	logger.Debug("Classify: direct and bidirectional links complete.", "edges", len(s.Edges()))

	linkSiblings(s)
	logger.Debug("Classify: shared-input links complete.", "edges", len(s.Edges()))

	linkAlternatives(s, nodes)
	logger.Debug("Classify: alternative-output links complete.", "edges", len(s.Edges()))

	linkChains(s)
	logger.Debug("Classify: indirect chains complete.", "edges", len(s.Edges()))
}

// createEdge adds an edge unless its key was already emitted in this build.
func createEdge(s *graphstore.Store, from, to ruleid.ID, kind graph.Kind, weight float64) bool {
	e := graph.Edge{From: from, To: to, Kind: kind, Weight: weight}
	if s.IsProcessed(e.Key()) {
		return false
	}
	s.AddEdge(e)
	s.MarkProcessed(e.Key())
	return true
}

// consumersOf returns the rules other than self whose inputs contain r,
// ordered by id.
func consumersOf(s *graphstore.Store, r node.Resource, self ruleid.ID) []*node.RuleNode {
	var out []*node.RuleNode
	for _, id := range s.RulesForResource(r) {
		if id == self {
			continue
		}
		n, ok := s.Node(id)
		if !ok || !n.HasInput(r) {
			continue
		}
		out = append(out, n)
	}
	slices.SortFunc(out, byID)
	return out
}

func byID(a, b *node.RuleNode) int { return ruleid.Compare(a.ID(), b.ID()) }

// linkConsumers emits direct consumption edges, vetoing any that would close
// a resource dependency cycle, and bidirectional conversion pairs.
func linkConsumers(s *graphstore.Store, nodes []*node.RuleNode) {
	for _, a := range nodes {
		out := a.Output()
		for _, b := range consumersOf(s, out, a.ID()) {
			if !s.HasDependencyPath(b.Output(), out) {
				s.RecordDependency(out, b.Output())
				createEdge(s, a.ID(), b.ID(), graph.KindDirectConsumption, graph.WeightDirectConsumption)
			}

			if a.HasInput(b.Output()) {
				createEdge(s, a.ID(), b.ID(), graph.KindBidirectionalConversion, graph.WeightBidirectionalConversion)
				createEdge(s, b.ID(), a.ID(), graph.KindBidirectionalConversion, graph.WeightBidirectionalConversion)
			}
		}
	}
}

// siblingWeight scales the shared-input ratio into [0, WeightSharedInputMax].
func siblingWeight(a, b *node.RuleNode) float64 {
	shared := float64(a.SharedInputs(b))
	if shared == 0 {
		return 0
	}
	return graph.WeightSharedInputMax * min(shared/float64(a.InputCount()), shared/float64(b.InputCount()))
}

// linkSiblings emits shared-input edges in both directions.
func linkSiblings(s *graphstore.Store) {
	for _, r := range s.Resources() {
		if len(s.RulesForResource(r)) < 2 {
			continue
		}
		consumers := consumersOf(s, r, ruleid.ID{})
		for i, a := range consumers {
			for _, b := range consumers[i+1:] {
				w := siblingWeight(a, b)
				if w <= 0 {
					continue
				}
				createEdge(s, a.ID(), b.ID(), graph.KindSharedInput, w)
				createEdge(s, b.ID(), a.ID(), graph.KindSharedInput, w)
			}
		}
	}
}

// linkAlternatives emits alternative-output edges in both directions between
// rules that produce the same resource.
func linkAlternatives(s *graphstore.Store, nodes []*node.RuleNode) {
	groups := make(map[node.Resource][]*node.RuleNode)
	var outputs []node.Resource
	for _, n := range nodes {
		if _, ok := groups[n.Output()]; !ok {
			outputs = append(outputs, n.Output())
		}
		groups[n.Output()] = append(groups[n.Output()], n)
	}
	slices.Sort(outputs)

	for _, out := range outputs {
		group := groups[out]
		for i, a := range group {
			for _, b := range group[i+1:] {
				w := graph.WeightAlternativeOther
				if a.Category() == b.Category() {
					w = graph.WeightAlternativeSameCategory
				}
				createEdge(s, a.ID(), b.ID(), graph.KindAlternativeOutput, w)
				createEdge(s, b.ID(), a.ID(), graph.KindAlternativeOutput, w)
			}
		}
	}
}

// linkChains emits one-hop indirect chain edges A -> C for every pair of
// direct edges A -> B and B -> C present when the pass starts.
func linkChains(s *graphstore.Store) {
	var direct []graph.Edge
	next := make(map[ruleid.ID][]graph.Edge)
	for _, e := range s.Edges() {
		if e.Kind != graph.KindDirectConsumption {
			continue
		}
		direct = append(direct, e)
		next[e.From] = append(next[e.From], e)
	}

	for _, first := range direct {
		for _, second := range next[first.To] {
			from, to := first.From, second.To
			if from == to {
				continue
			}
			if s.IsProcessed(graph.EdgeKey{From: from, To: to, Kind: graph.KindDirectConsumption}) ||
				s.IsProcessed(graph.EdgeKey{From: from, To: to, Kind: graph.KindIndirectChain}) {
				continue
			}
			if !chainSupported(s, from, to) {
				continue
			}
			createEdge(s, from, to, graph.KindIndirectChain, graph.WeightIndirectChain)
		}
	}
}

// chainSupported reports whether target depends on source: either target
// consumes source's output directly, or some intermediate rule consumes
// source's output and produces something target consumes.
func chainSupported(s *graphstore.Store, source, target ruleid.ID) bool {
	a, ok := s.Node(source)
	if !ok {
		return false
	}
	c, ok := s.Node(target)
	if !ok {
		return false
	}
	if c.HasInput(a.Output()) {
		return true
	}
	for _, m := range consumersOf(s, a.Output(), a.ID()) {
		if c.HasInput(m.Output()) {
			return true
		}
	}
	return false
}
