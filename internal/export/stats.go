package export

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/vk/recipemap/internal/graph"
)

// TopOutputs is how many output resources the statistics report lists.
const TopOutputs = 20

// WriteStatistics writes a plain-text report of snap: totals, the
// distribution of edge kinds and the most produced resources.
func WriteStatistics(w io.Writer, snap *graph.Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "=== Recipe graph statistics ===")
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Totals:")
	fmt.Fprintf(bw, "  Build: %s\n", snap.BuildID())
	fmt.Fprintf(bw, "  Nodes: %d\n", snap.NodeCount())
	fmt.Fprintf(bw, "  Edges: %d\n", snap.EdgeCount())
	fmt.Fprintf(bw, "  Built at: %s\n", snap.BuiltAt().Format(time.RFC3339))
	fmt.Fprintf(bw, "  Has cycles: %s\n", yesNo(snap.HasCycles()))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Edge kinds:")
	counts := snap.KindCounts()
	for _, k := range graph.Kinds {
		n := counts[k]
		if n == 0 {
			continue
		}
		fmt.Fprintf(bw, "  %s: %d (%.1f%%)\n", k, n, float64(n)*100/float64(snap.EdgeCount()))
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Most produced resources (top %d):\n", TopOutputs)
	for i, rc := range topOutputs(snap, TopOutputs) {
		fmt.Fprintf(bw, "  %d. %s: %d rules\n", i+1, rc.resource, rc.count)
	}

	return bw.Flush()
}

type resourceCount struct {
	resource string
	count    int
}

// topOutputs ranks output resources by the number of rules producing them,
// ties broken by name.
func topOutputs(snap *graph.Snapshot, limit int) []resourceCount {
	counts := make(map[string]int)
	for _, n := range snap.Nodes() {
		counts[string(n.Output())]++
	}
	out := make([]resourceCount, 0, len(counts))
	for r, c := range counts {
		out = append(out, resourceCount{resource: r, count: c})
	}
	slices.SortFunc(out, func(a, b resourceCount) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.resource, b.resource)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
