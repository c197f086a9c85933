// Package graph defines the published form of the recipe graph: typed,
// weighted relationship edges and the immutable Snapshot that carries them.
//
// # Relationship kinds
//
// Five kinds of edges connect production rules:
//
//	DIRECT_CONSUMPTION        A -> B when B consumes A's output (weight 1.0)
//	BIDIRECTIONAL_CONVERSION  A <-> B when each consumes the other's output (0.8)
//	SHARED_INPUT              A <-> B when the rules share inputs (0..0.5, by overlap)
//	ALTERNATIVE_OUTPUT        A <-> B when both produce the same resource (0.2 or 0.4)
//	INDIRECT_CHAIN            A -> C for a two-step A -> B -> C production chain (0.2)
//
// Edge identity is the EdgeKey (from, to, kind). Weight never takes part in
// equality.
//
// # Snapshots
//
// A Snapshot is created once per build by the graph store and is never
// mutated afterwards. Every accessor returns copies or immutable values, so a
// snapshot can be read from any number of goroutines without locking.
package graph
