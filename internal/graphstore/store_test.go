package graphstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

func rule(t *testing.T, id string, out node.Resource, in ...node.Resource) *node.RuleNode {
	t.Helper()
	n, err := node.New(node.Spec{ID: ruleid.MustParse(id), Inputs: in, Output: out, OutputCount: 1})
	require.NoError(t, err)
	return n
}

func TestAddAndGetNode(t *testing.T) {
	s := New()
	a := rule(t, "a", "x")
	s.AddNode(a)

	got, ok := s.Node(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = s.Node(ruleid.MustParse("missing"))
	assert.False(t, ok)
}

func TestAddNodeOverwrites(t *testing.T) {
	s := New()
	s.AddNode(rule(t, "a", "x"))
	replacement := rule(t, "a", "y")
	s.AddNode(replacement)

	assert.Equal(t, 1, s.NodeCount())
	got, _ := s.Node(replacement.ID())
	assert.Equal(t, node.Resource("y"), got.Output())
}

func TestNodesSorted(t *testing.T) {
	s := New()
	s.AddNode(rule(t, "c", "z"))
	s.AddNode(rule(t, "a", "x"))
	s.AddNode(rule(t, "b", "y"))

	var ids []string
	for _, n := range s.Nodes() {
		ids = append(ids, n.ID().Path)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestAddEdgeKeepsDuplicates(t *testing.T) {
	s := New()
	e := graph.Edge{From: ruleid.MustParse("a"), To: ruleid.MustParse("b"), Kind: graph.KindDirectConsumption, Weight: 1}
	s.AddEdge(e)
	s.AddEdge(e)
	assert.Len(t, s.Edges(), 2)

	s.ReplaceEdges([]graph.Edge{e})
	assert.Len(t, s.Edges(), 1)
}

func TestRegisterResourceMappingIsIdempotent(t *testing.T) {
	s := New()
	a, b := ruleid.MustParse("a"), ruleid.MustParse("b")
	s.RegisterResourceMapping("x", b)
	s.RegisterResourceMapping("x", a)
	s.RegisterResourceMapping("x", b)

	assert.Equal(t, []ruleid.ID{b, a}, s.RulesForResource("x"))
	assert.Empty(t, s.RulesForResource("unknown"))
	assert.Equal(t, []node.Resource{"x"}, s.Resources())
}

func TestDependencies(t *testing.T) {
	s := New()

	assert.True(t, s.RecordDependency("x", "y"))
	assert.False(t, s.RecordDependency("x", "y"), "second insert is not new")
	assert.True(t, s.RecordDependency("y", "z"))

	assert.True(t, s.HasDependencyPath("x", "z"))
	assert.False(t, s.HasDependencyPath("z", "x"))
	assert.True(t, s.HasDependencyPath("q", "q"), "a resource reaches itself")
	assert.False(t, s.HasDependencyPath("q", "x"))
}

func TestProcessedKeys(t *testing.T) {
	s := New()
	k := graph.EdgeKey{From: ruleid.MustParse("a"), To: ruleid.MustParse("b"), Kind: graph.KindIndirectChain}
	assert.False(t, s.IsProcessed(k))
	s.MarkProcessed(k)
	assert.True(t, s.IsProcessed(k))

	other := k
	other.Kind = graph.KindDirectConsumption
	assert.False(t, s.IsProcessed(other))
}

func TestClear(t *testing.T) {
	s := New()
	a := rule(t, "a", "x")
	s.AddNode(a)
	s.AddEdge(graph.Edge{From: a.ID(), To: a.ID(), Kind: graph.KindSharedInput})
	s.RegisterResourceMapping("x", a.ID())
	s.RecordDependency("x", "y")
	s.MarkProcessed(graph.EdgeKey{From: a.ID(), To: a.ID()})

	s.Clear()

	assert.Zero(t, s.NodeCount())
	assert.Empty(t, s.Edges())
	assert.Empty(t, s.Resources())
	assert.False(t, s.HasDependencyPath("x", "y"))
	assert.False(t, s.IsProcessed(graph.EdgeKey{From: a.ID(), To: a.ID()}))
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New()
	a := rule(t, "a", "x")
	b := rule(t, "b", "y", "x")
	s.AddNode(a)
	s.AddNode(b)
	s.AddEdge(graph.Edge{From: a.ID(), To: b.ID(), Kind: graph.KindDirectConsumption, Weight: 1})

	snap := s.Snapshot("build", time.Unix(0, 0))
	s.Clear()

	assert.Equal(t, 2, snap.NodeCount())
	assert.Equal(t, 1, snap.EdgeCount())
	assert.False(t, snap.HasCycles())
}
