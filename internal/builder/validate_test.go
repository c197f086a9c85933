package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/graphstore"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

func storeWith(t *testing.T, specs ...node.Spec) *graphstore.Store {
	t.Helper()
	s := graphstore.New()
	for _, spec := range specs {
		if spec.OutputCount == 0 {
			spec.OutputCount = 1
		}
		n, err := node.New(spec)
		require.NoError(t, err)
		s.AddNode(n)
		s.RegisterResourceMapping(n.Output(), n.ID())
		for _, in := range n.Inputs() {
			s.RegisterResourceMapping(in, n.ID())
		}
	}
	return s
}

func TestValidate(t *testing.T) {
	a, b, c, ghost := id("a"), id("b"), id("c"), id("ghost")
	s := storeWith(t,
		node.Spec{ID: a, Output: "x"},
		node.Spec{ID: b, Output: "y", Inputs: []node.Resource{"x"}},
		node.Spec{ID: c, Output: "z", Inputs: []node.Resource{"y"}},
	)

	edges := []graph.Edge{
		{From: a, To: b, Kind: graph.KindDirectConsumption, Weight: 1},
		{From: a, To: a, Kind: graph.KindSharedInput, Weight: 0.5},
		{From: a, To: ghost, Kind: graph.KindDirectConsumption, Weight: 1},
		{From: ghost, To: b, Kind: graph.KindAlternativeOutput, Weight: 0.2},
		{From: a, To: b, Kind: graph.KindDirectConsumption, Weight: 0.3},
		{From: a, To: c, Kind: graph.KindIndirectChain, Weight: 0.2},
		{From: c, To: a, Kind: graph.KindIndirectChain, Weight: 0.2},
		{From: b, To: c, Kind: graph.KindDirectConsumption, Weight: 1},
	}
	for _, e := range edges {
		s.AddEdge(e)
	}

	rep := validate(context.Background(), s)

	assert.Equal(t, Report{
		Received:          8,
		Kept:              3,
		SelfLoops:         1,
		InvalidReferences: 2,
		Duplicates:        1,
		UnsupportedChains: 1,
	}, rep)
	assert.Equal(t, 5, rep.Removed())

	kept := s.Edges()
	require.Len(t, kept, 3)
	assert.Equal(t, 1.0, kept[0].Weight, "first duplicate wins")
	assert.Equal(t, graph.KindIndirectChain, kept[1].Kind)
	assert.Equal(t, []ruleid.ID{b, c}, []ruleid.ID{kept[2].From, kept[2].To})
}

func TestValidateEmpty(t *testing.T) {
	s := graphstore.New()
	rep := validate(context.Background(), s)
	assert.Equal(t, Report{}, rep)
	assert.Empty(t, s.Edges())
}

func TestChainSupported(t *testing.T) {
	a, b, c, d := id("a"), id("b"), id("c"), id("d")
	s := storeWith(t,
		node.Spec{ID: a, Output: "x"},
		node.Spec{ID: b, Output: "y", Inputs: []node.Resource{"x"}},
		node.Spec{ID: c, Output: "z", Inputs: []node.Resource{"y"}},
		node.Spec{ID: d, Output: "w", Inputs: []node.Resource{"z"}},
	)

	assert.True(t, chainSupported(s, a, b), "direct consumption")
	assert.True(t, chainSupported(s, a, c), "one intermediate")
	assert.False(t, chainSupported(s, a, d), "two intermediates is beyond one hop")
	assert.False(t, chainSupported(s, c, a))
	assert.False(t, chainSupported(s, id("missing"), a))
}

func TestSiblingWeight(t *testing.T) {
	mk := func(name string, out node.Resource, in ...node.Resource) *node.RuleNode {
		n, err := node.New(node.Spec{ID: id(name), Output: out, Inputs: in, OutputCount: 1})
		require.NoError(t, err)
		return n
	}
	tests := []struct {
		name string
		a, b *node.RuleNode
		want float64
	}{
		{"identical inputs", mk("a", "o1", "x", "y"), mk("b", "o2", "x", "y"), 0.5},
		{"half overlap", mk("a", "o1", "x", "y"), mk("b", "o2", "y", "z"), 0.25},
		{"asymmetric", mk("a", "o1", "x"), mk("b", "o2", "x", "y", "z", "w"), 0.125},
		{"disjoint", mk("a", "o1", "x"), mk("b", "o2", "y"), 0},
		{"no inputs", mk("a", "o1"), mk("b", "o2", "y"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, siblingWeight(tt.a, tt.b), 1e-12)
			assert.InDelta(t, tt.want, siblingWeight(tt.b, tt.a), 1e-12)
		})
	}
}
