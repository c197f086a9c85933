package cycle

// Neighbors returns the successors of a vertex. Returning nil means the vertex
// has no outgoing edges.
type Neighbors[T comparable] func(T) []T

// visitor carries the optional traversal hooks. Any hook returning true stops
// the whole search.
type visitor[T comparable] struct {
	enter func(v T) bool
	edge  func(from, to T) bool
	leave func(v T)
}

// dfs walks every vertex reachable from start that is not already in visited.
// It reports whether a hook asked to stop.
func dfs[T comparable](start T, next Neighbors[T], visited map[T]struct{}, v visitor[T]) bool {
	visited[start] = struct{}{}
	if v.enter != nil && v.enter(start) {
		return true
	}

	for _, n := range next(start) {
		if v.edge != nil && v.edge(start, n) {
			return true
		}
		if _, seen := visited[n]; seen {
			continue
		}
		if dfs(n, next, visited, v) {
			return true
		}
	}

	if v.leave != nil {
		v.leave(start)
	}
	return false
}

// PathExists reports whether target is reachable from start by following
// next. A vertex always reaches itself.
func PathExists[T comparable](start, target T, next Neighbors[T]) bool {
	visited := make(map[T]struct{})
	return dfs(start, next, visited, visitor[T]{
		enter: func(v T) bool { return v == target },
	})
}

// FindCycle searches the graph formed by vertices and next for a back-edge into
// the current recursion stack. It returns the vertex the back-edge points to
// and true when a cycle exists. Vertices are tried as start points in the
// order given, so the result is deterministic for a deterministic input.
func FindCycle[T comparable](vertices []T, next Neighbors[T]) (T, bool) {
	visited := make(map[T]struct{}, len(vertices))
	onStack := make(map[T]struct{})

	var culprit T
	v := visitor[T]{
		enter: func(v T) bool {
			onStack[v] = struct{}{}
			return false
		},
		edge: func(_, to T) bool {
			if _, ok := onStack[to]; ok {
				culprit = to
				return true
			}
			return false
		},
		leave: func(v T) {
			delete(onStack, v)
		},
	}

	for _, start := range vertices {
		if _, seen := visited[start]; seen {
			continue
		}
		if dfs(start, next, visited, v) {
			return culprit, true
		}
	}

	var zero T
	return zero, false
}

// HasCycle reports whether any cycle exists among vertices.
func HasCycle[T comparable](vertices []T, next Neighbors[T]) bool {
	_, found := FindCycle(vertices, next)
	return found
}
