package layout

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

func snapshot(t *testing.T, edges []graph.Edge, ids ...string) *graph.Snapshot {
	t.Helper()
	nodes := make(map[ruleid.ID]*node.RuleNode)
	for i, raw := range ids {
		n, err := node.New(node.Spec{
			ID:          ruleid.MustParse(raw),
			Output:      node.Resource(raw + "_out"),
			OutputCount: 1 + i,
		})
		require.NoError(t, err)
		nodes[n.ID()] = n
	}
	return graph.NewSnapshot("test", time.Time{}, nodes, edges)
}

func pair(t *testing.T, connected bool, ax, bx float64) (*Simulator, ruleid.ID, ruleid.ID) {
	t.Helper()
	a, b := ruleid.MustParse("a"), ruleid.MustParse("b")
	var edges []graph.Edge
	if connected {
		edges = []graph.Edge{{From: a, To: b, Kind: graph.KindDirectConsumption, Weight: 1}}
	}
	sim, err := New(DefaultConfig())
	require.NoError(t, err)
	sim.Initialize(snapshot(t, edges, "a", "b"))
	require.True(t, sim.SetPosition(a, Point{X: ax}))
	require.True(t, sim.SetPosition(b, Point{X: bx}))
	return sim, a, b
}

func distance(t *testing.T, sim *Simulator, a, b ruleid.ID) float64 {
	t.Helper()
	pa, ok := sim.Position(a)
	require.True(t, ok)
	pb, ok := sim.Position(b)
	require.True(t, ok)
	return pa.sub(pb).length()
}

func TestStepBeforeInitialize(t *testing.T) {
	sim, err := New(DefaultConfig())
	require.NoError(t, err)

	_, err = sim.Step()
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, _, err = sim.Settle(context.Background(), 10, 0)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestUnconnectedNodesRepel(t *testing.T) {
	sim, a, b := pair(t, false, -10, 10)

	prev := distance(t, sim, a, b)
	for i := 0; i < 300; i++ {
		_, err := sim.Step()
		require.NoError(t, err)
		d := distance(t, sim, a, b)
		require.Greater(t, d, prev, "step %d", i)
		prev = d
	}
	assert.Greater(t, prev, 400.0)
}

func TestConnectedNodesConverge(t *testing.T) {
	sim, a, b := pair(t, true, -1000, 1000)

	prev := distance(t, sim, a, b)
	for i := 0; i < 2000; i++ {
		_, err := sim.Step()
		require.NoError(t, err)
		d := distance(t, sim, a, b)
		require.Less(t, d, prev, "step %d", i)
		require.Greater(t, d, 250.0, "step %d overshot", i)
		prev = d
	}

	var energy float64
	for i := 0; i < 1000; i++ {
		var err error
		energy, err = sim.Step()
		require.NoError(t, err)
	}
	assert.InDelta(t, 289.1, distance(t, sim, a, b), 0.5)
	assert.Less(t, energy, 1e-9)
}

func TestCoincidentNodesSeparate(t *testing.T) {
	sim, a, b := pair(t, false, 0, 0)
	_, err := sim.Step()
	require.NoError(t, err)

	pa, _ := sim.Position(a)
	pb, _ := sim.Position(b)
	assert.Greater(t, pa.X, pb.X)
	assert.Zero(t, pa.Y)
	assert.False(t, math.IsNaN(pa.X))
}

func TestSpeedIsCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSpeed = 1
	sim, err := New(cfg)
	require.NoError(t, err)

	a, b := ruleid.MustParse("a"), ruleid.MustParse("b")
	sim.Initialize(snapshot(t, nil, "a", "b"))
	sim.SetPosition(a, Point{X: -1})
	sim.SetPosition(b, Point{X: 1})

	energy, err := sim.Step()
	require.NoError(t, err)

	pa, _ := sim.Position(a)
	pb, _ := sim.Position(b)
	assert.InDelta(t, -2, pa.X, 1e-9)
	assert.InDelta(t, 2, pb.X, 1e-9)
	assert.InDelta(t, 1.0, energy, 1e-9)
}

func TestInitializeIsDeterministic(t *testing.T) {
	snap := snapshot(t, nil, "a", "b", "c", "d")

	first, err := New(DefaultConfig())
	require.NoError(t, err)
	first.Initialize(snap)
	second, err := New(DefaultConfig())
	require.NoError(t, err)
	second.Initialize(snap)

	assert.Equal(t, first.Positions(), second.Positions())
	for _, p := range first.Positions() {
		assert.LessOrEqual(t, math.Abs(p.X), 500.0)
		assert.LessOrEqual(t, math.Abs(p.Y), 500.0)
	}

	for i := 0; i < 25; i++ {
		e1, err := first.Step()
		require.NoError(t, err)
		e2, err := second.Step()
		require.NoError(t, err)
		require.Equal(t, e1, e2)
	}
	assert.Equal(t, first.Positions(), second.Positions())
	assert.Equal(t, 25, first.Steps())

	assert.NotEqual(t, snapshotPositions(t, snap, 1), snapshotPositions(t, snap, 99))
}

func snapshotPositions(t *testing.T, snap *graph.Snapshot, seed int64) map[ruleid.ID]Point {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = seed
	sim, err := New(cfg)
	require.NoError(t, err)
	sim.Initialize(snap)
	return sim.Positions()
}

func TestSettle(t *testing.T) {
	sim, _, _ := pair(t, true, -1000, 1000)

	steps, energy, err := sim.Settle(context.Background(), 10000, 1e-6)
	require.NoError(t, err)
	assert.Less(t, steps, 10000)
	assert.Less(t, energy, 1e-6)

	sim, _, _ = pair(t, true, -1000, 1000)
	steps, _, err = sim.Settle(context.Background(), 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, steps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	steps, _, err = sim.Settle(ctx, 5, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, steps)
}

func TestBounds(t *testing.T) {
	sim, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, Bounds{}, sim.Bounds())

	sim.Initialize(snapshot(t, nil, "a", "b", "c"))
	sim.SetPosition(ruleid.MustParse("a"), Point{X: -5, Y: 2})
	sim.SetPosition(ruleid.MustParse("b"), Point{X: 7, Y: -3})
	sim.SetPosition(ruleid.MustParse("c"), Point{X: 1, Y: 9})

	b := sim.Bounds()
	assert.Equal(t, Bounds{Min: Point{X: -5, Y: -3}, Max: Point{X: 7, Y: 9}}, b)
	assert.Equal(t, 12.0, b.Width())
	assert.Equal(t, 12.0, b.Height())
}

func TestPresentationFlags(t *testing.T) {
	a, b, c := ruleid.MustParse("a"), ruleid.MustParse("b"), ruleid.MustParse("c")
	ab := graph.Edge{From: a, To: b, Kind: graph.KindDirectConsumption, Weight: 1}
	bc := graph.Edge{From: b, To: c, Kind: graph.KindDirectConsumption, Weight: 1}

	sim, err := New(DefaultConfig())
	require.NoError(t, err)
	sim.Initialize(snapshot(t, []graph.Edge{ab, bc}, "a", "b", "c"))

	sim.SetVisited(a, true)
	sim.SetVisited(ruleid.MustParse("unknown"), true)
	assert.True(t, sim.Visited(a))
	assert.False(t, sim.Visited(b))
	assert.False(t, sim.Visited(ruleid.MustParse("unknown")))
	sim.ClearVisited()
	assert.False(t, sim.Visited(a))

	sim.HighlightNeighbourhood(a)
	assert.True(t, sim.Highlighted(ab.Key()))
	assert.False(t, sim.Highlighted(bc.Key()))

	sim.SetHighlighted(bc.Key(), true)
	sim.SetHighlighted(ab.Key(), false)
	assert.False(t, sim.Highlighted(ab.Key()))
	assert.True(t, sim.Highlighted(bc.Key()))

	sim.Initialize(sim.Snapshot())
	assert.False(t, sim.Highlighted(bc.Key()), "flags reset on initialize")
}

func TestUnknownNode(t *testing.T) {
	sim, err := New(DefaultConfig())
	require.NoError(t, err)
	sim.Initialize(snapshot(t, nil, "a"))

	_, ok := sim.Position(ruleid.MustParse("zzz"))
	assert.False(t, ok)
	assert.False(t, sim.SetPosition(ruleid.MustParse("zzz"), Point{}))
}
