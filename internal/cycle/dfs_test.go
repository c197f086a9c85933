package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func adjacency(edges map[string][]string) Neighbors[string] {
	return func(v string) []string { return edges[v] }
}

func TestPathExists(t *testing.T) {
	next := adjacency(map[string][]string{
		"a": {"b"},
		"b": {"c", "d"},
		"d": {"b"}, // loop that must not hang the search
	})

	t.Run("direct edge", func(t *testing.T) {
		assert.True(t, PathExists("a", "b", next))
	})
	t.Run("transitive path", func(t *testing.T) {
		assert.True(t, PathExists("a", "c", next))
	})
	t.Run("no reverse path", func(t *testing.T) {
		assert.False(t, PathExists("c", "a", next))
	})
	t.Run("vertex reaches itself", func(t *testing.T) {
		assert.True(t, PathExists("z", "z", next))
	})
	t.Run("unknown start", func(t *testing.T) {
		assert.False(t, PathExists("z", "a", next))
	})
	t.Run("terminates on loops", func(t *testing.T) {
		assert.False(t, PathExists("d", "a", next))
	})
}

func TestHasCycle(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		assert.False(t, HasCycle(nil, adjacency(nil)))
	})

	t.Run("vertices without edges", func(t *testing.T) {
		assert.False(t, HasCycle([]string{"a", "b"}, adjacency(nil)))
	})

	t.Run("diamond is acyclic", func(t *testing.T) {
		next := adjacency(map[string][]string{
			"a": {"b", "c"},
			"b": {"d"},
			"c": {"d"},
		})
		assert.False(t, HasCycle([]string{"a", "b", "c", "d"}, next))
		// Start order must not matter for acyclic graphs.
		assert.False(t, HasCycle([]string{"d", "c", "b", "a"}, next))
	})

	t.Run("two-vertex cycle", func(t *testing.T) {
		next := adjacency(map[string][]string{"a": {"b"}, "b": {"a"}})
		culprit, found := FindCycle([]string{"a", "b"}, next)
		assert.True(t, found)
		assert.Equal(t, "a", culprit)
	})

	t.Run("self loop", func(t *testing.T) {
		next := adjacency(map[string][]string{"a": {"a"}})
		assert.True(t, HasCycle([]string{"a"}, next))
	})

	t.Run("cycle reachable only from later start", func(t *testing.T) {
		next := adjacency(map[string][]string{
			"x": {"y"},
			"b": {"c"},
			"c": {"d"},
			"d": {"b"},
		})
		culprit, found := FindCycle([]string{"x", "y", "b", "c", "d"}, next)
		assert.True(t, found)
		assert.Equal(t, "b", culprit)
	})
}
