// Package cycle holds the depth-first search used for both cycle-related
// questions the graph builder asks:
//
//   - PathExists answers "is target reachable from start?" over any adjacency
//     function. The builder uses it on the resource dependency index to veto
//     direct-consumption edges that would close a resource-level loop.
//   - HasCycle / FindCycle run the classic recursion-stack search over a whole
//     vertex set. Snapshots use it as a diagnostic only.
//
// Both share one traversal primitive parameterized by a Neighbors function,
// so callers never duplicate traversal logic. Nothing here mutates the
// structures being searched.
package cycle
