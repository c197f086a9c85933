package catalogue

import (
	"context"
	"slices"

	"github.com/vk/recipemap/internal/node"
)

// Rule is a production rule as exposed by the host catalogue.
type Rule struct {
	ID          string
	Category    string
	Output      node.Resource
	OutputCount int
	// Ingredients lists the input slots. Each slot holds the resources it
	// accepts, in preference order.
	Ingredients [][]node.Resource
	// Problem is set when the host could not read the rule completely. The
	// builder skips such rules and records Problem as the diagnostic.
	Problem string
}

// Catalogue enumerates host rules. Implementations may return the rules read
// so far together with a non-nil error when enumeration fails part way.
type Catalogue interface {
	Rules(ctx context.Context) ([]Rule, error)
}

// Static is a fixed, in-memory catalogue.
type Static []Rule

// Rules returns a copy of the static rule list.
func (s Static) Rules(ctx context.Context) ([]Rule, error) {
	return slices.Clone(s), nil
}

// Func adapts an ordinary function to the Catalogue interface.
type Func func(ctx context.Context) ([]Rule, error)

// Rules calls f(ctx).
func (f Func) Rules(ctx context.Context) ([]Rule, error) {
	return f(ctx)
}

// Simple builds a rule whose every slot accepts exactly one resource.
func Simple(id string, output node.Resource, inputs ...node.Resource) Rule {
	r := Rule{ID: id, Output: output, OutputCount: 1}
	for _, in := range inputs {
		r.Ingredients = append(r.Ingredients, []node.Resource{in})
	}
	return r
}
