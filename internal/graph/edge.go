package graph

import (
	"fmt"

	"github.com/vk/recipemap/internal/ruleid"
)

// Kind classifies a derived relationship between two rules.
type Kind string

const (
	KindDirectConsumption       Kind = "DIRECT_CONSUMPTION"
	KindBidirectionalConversion Kind = "BIDIRECTIONAL_CONVERSION"
	KindSharedInput             Kind = "SHARED_INPUT"
	KindAlternativeOutput       Kind = "ALTERNATIVE_OUTPUT"
	KindIndirectChain           Kind = "INDIRECT_CHAIN"
)

// Kinds lists every relationship kind in classification order.
var Kinds = []Kind{
	KindDirectConsumption,
	KindBidirectionalConversion,
	KindSharedInput,
	KindAlternativeOutput,
	KindIndirectChain,
}

// Default weights for the kinds whose weight does not depend on the rules involved.
const (
	WeightDirectConsumption       = 1.0
	WeightBidirectionalConversion = 0.8
	WeightSharedInputMax          = 0.5
	WeightAlternativeSameCategory = 0.4
	WeightAlternativeOther        = 0.2
	WeightIndirectChain           = 0.2
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// EdgeKey is the identity of an edge for deduplication purposes.
type EdgeKey struct {
	From ruleid.ID
	To   ruleid.ID
	Kind Kind
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%s->%s:%s", k.From, k.To, k.Kind)
}

// Edge is a directed, typed, weighted relationship between two rules.
type Edge struct {
	From   ruleid.ID
	To     ruleid.ID
	Kind   Kind
	Weight float64
}

// Key returns the deduplication identity of e.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To, Kind: e.Kind}
}

// IsSelfLoop reports whether the edge starts and ends at the same rule.
func (e Edge) IsSelfLoop() bool {
	return e.From == e.To
}

func (e Edge) String() string {
	return fmt.Sprintf("Edge{%s, weight=%.3f}", e.Key(), e.Weight)
}
