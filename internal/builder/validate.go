package builder

import (
	"context"

	"github.com/vk/recipemap/internal/ctxlog"
	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/graphstore"
	"github.com/vk/recipemap/internal/metrics"
)

// Removal reasons, also used as metric labels.
const (
	removedSelfLoop         = "self_loop"
	removedInvalidReference = "invalid_reference"
	removedDuplicate        = "duplicate"
	removedUnsupportedChain = "unsupported_chain"
)

// Report counts what the validation pass removed.
type Report struct {
	Received          int
	Kept              int
	SelfLoops         int
	InvalidReferences int
	Duplicates        int
	UnsupportedChains int
}

// Removed returns the total number of dropped edges.
func (r Report) Removed() int {
	return r.SelfLoops + r.InvalidReferences + r.Duplicates + r.UnsupportedChains
}

// validate filters the raw edge list of s in place. Of several edges with the
// same key the first one is kept, including its weight.
func validate(ctx context.Context, s *graphstore.Store) Report {
	logger := ctxlog.FromContext(ctx)

	raw := s.Edges()
	rep := Report{Received: len(raw)}
	kept := make([]graph.Edge, 0, len(raw))
	seen := make(map[graph.EdgeKey]struct{}, len(raw))

	for _, e := range raw {
		if e.IsSelfLoop() {
			rep.SelfLoops++
			continue
		}
		_, fromOK := s.Node(e.From)
		_, toOK := s.Node(e.To)
		if !fromOK || !toOK {
			rep.InvalidReferences++
			continue
		}
		if _, dup := seen[e.Key()]; dup {
			rep.Duplicates++
			continue
		}
		if e.Kind == graph.KindIndirectChain && !chainSupported(s, e.From, e.To) {
			rep.UnsupportedChains++
			continue
		}
		seen[e.Key()] = struct{}{}
		kept = append(kept, e)
	}

	s.ReplaceEdges(kept)
	rep.Kept = len(kept)

	metrics.EdgesRemovedTotal.WithLabelValues(removedSelfLoop).Add(float64(rep.SelfLoops))
	metrics.EdgesRemovedTotal.WithLabelValues(removedInvalidReference).Add(float64(rep.InvalidReferences))
	metrics.EdgesRemovedTotal.WithLabelValues(removedDuplicate).Add(float64(rep.Duplicates))
	metrics.EdgesRemovedTotal.WithLabelValues(removedUnsupportedChain).Add(float64(rep.UnsupportedChains))

	attrs := []any{
		"received", rep.Received,
		"kept", rep.Kept,
		"self_loops", rep.SelfLoops,
		"invalid_references", rep.InvalidReferences,
		"duplicates", rep.Duplicates,
		"unsupported_chains", rep.UnsupportedChains,
	}
	if rep.Removed() > 0 {
		logger.Info("Validation removed edges.", attrs...)
	} else {
		logger.Debug("Validation complete.", attrs...)
	}
	return rep
}
