package builder

import (
	"context"
	"fmt"

	"github.com/vk/recipemap/internal/catalogue"
	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/graphstore"
	"github.com/vk/recipemap/internal/metrics"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

// Diagnostic records why a host rule was skipped or replaced.
type Diagnostic struct {
	Index  int    // Position in the catalogue listing.
	Rule   string // Raw identifier as supplied by the host.
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("rule #%d %q: %s", d.Index, d.Rule, d.Reason)
}

// convert turns host rules into rule nodes. Later rules win over earlier ones
// with the same identifier. The returned nodes keep first-seen order.
func convert(rules []catalogue.Rule) ([]*node.RuleNode, []Diagnostic) {
	var diags []Diagnostic
	var order []ruleid.ID
	byID := make(map[ruleid.ID]*node.RuleNode, len(rules))

	for i, r := range rules {
		skip := func(format string, args ...any) {
			diags = append(diags, Diagnostic{Index: i, Rule: r.ID, Reason: fmt.Sprintf(format, args...)})
		}

		if r.Problem != "" {
			skip("%s", r.Problem)
			continue
		}
		id, err := ruleid.Parse(r.ID)
		if err != nil {
			skip("bad identifier: %v", err)
			continue
		}

		n, err := node.New(node.Spec{
			ID:          id,
			Category:    r.Category,
			Inputs:      representatives(r.Ingredients),
			Output:      r.Output,
			OutputCount: r.OutputCount,
		})
		if err != nil {
			skip("%v", err)
			continue
		}

		if _, dup := byID[id]; dup {
			skip("duplicate identifier %s, replacing earlier rule", id)
		} else {
			order = append(order, id)
		}
		byID[id] = n
	}

	nodes := make([]*node.RuleNode, 0, len(order))
	for _, id := range order {
		nodes = append(nodes, byID[id])
	}
	return nodes, diags
}

// representatives picks the first accepted resource of every non-empty slot.
func representatives(slots [][]node.Resource) []node.Resource {
	out := make([]node.Resource, 0, len(slots))
	for _, slot := range slots {
		if len(slot) == 0 || slot[0] == "" {
			continue
		}
		out = append(out, slot[0])
	}
	return out
}

// ingest converts rules and loads the result into s.
func ingest(ctx context.Context, s *graphstore.Store, rules []catalogue.Rule) []Diagnostic {
	logger := ctxlog.FromContext(ctx)

	nodes, diags := convert(rules)
	for _, n := range nodes {
		s.AddNode(n)
		s.RegisterResourceMapping(n.Output(), n.ID())
		for _, in := range n.Inputs() {
			s.RegisterResourceMapping(in, n.ID())
		}
	}

	for _, d := range diags {
		logger.Warn("Skipped catalogue rule.", "index", d.Index, "rule", d.Rule, "reason", d.Reason)
	}
	metrics.IngestSkippedTotal.Add(float64(len(diags)))
	logger.Debug("Ingestion complete.", "rules", len(rules), "nodes", s.NodeCount(), "diagnostics", len(diags))
	return diags
}
