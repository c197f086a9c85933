/*
Package builder turns a host catalogue into an immutable graph.Snapshot.

A build is a multi-phase process over a fresh graphstore.Store:

 1. Ingestion: host rules are converted to rule nodes. A rule that cannot be
    converted is skipped and a Diagnostic is recorded; the build continues.
    Every kept rule registers its output and inputs in the store's
    resource-to-rule index.

 2. Classification: relationship edges are derived in a fixed order, because
    later stages depend on edges produced by earlier ones:
    a. direct consumption, vetoed when the resource dependency index already
    holds a path back to the producer's output, plus bidirectional conversion
    pairs which are never vetoed;
    b. shared-input siblings;
    c. alternative outputs;
    d. one-hop indirect chains over the direct edges from (a).
    Every edge key is emitted at most once per build.

 3. Validation: self-loops, dangling references and duplicate keys are
    removed and every chain edge is re-checked against the rules it joins.
    Removals are counted and logged, never treated as errors.

 4. Publication: the store is copied into a Snapshot, whose cycle diagnostic
    is logged.

The only failure surfaced to callers is a catalogue that fails while being
enumerated, reported as a *BuildFailedError. An empty catalogue produces a
valid, empty snapshot.
*/
package builder
