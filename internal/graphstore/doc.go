// Package graphstore holds the mutable working state of a single graph
// build: rule nodes, the raw edge list, the resource-to-rule index, the
// resource dependency index used for cycle vetoes, and the set of edge keys
// already emitted.
//
// A Store is an explicit value owned by one build invocation and passed by
// reference to each stage. It performs no locking; callers must not share it
// between goroutines. Every operation is total: absent keys yield empty
// results, never errors.
package graphstore
