package export

import (
	"time"

	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/node"
)

// ResourceDetails describes how one resource is produced and consumed.
type ResourceDetails struct {
	ItemID           string     `json:"itemId"`
	ExportTime       time.Time  `json:"exportTime"`
	ProducingRecipes []Producer `json:"producingRecipes"`
	ConsumingRecipes []string   `json:"consumingRecipes"`
	RelatedEdges     []Edge     `json:"relatedEdges"`
}

// Producer is a rule that outputs the resource.
type Producer struct {
	RecipeID    string   `json:"recipeId"`
	OutputCount int      `json:"outputCount"`
	Inputs      []string `json:"inputs"`
}

// NewResourceDetails collects the producers and consumers of r and every
// edge leaving a producer. Edges between the same two rules are listed once.
func NewResourceDetails(snap *graph.Snapshot, r node.Resource, exportTime time.Time) ResourceDetails {
	d := ResourceDetails{
		ItemID:           string(r),
		ExportTime:       exportTime,
		ProducingRecipes: []Producer{},
		ConsumingRecipes: []string{},
		RelatedEdges:     []Edge{},
	}

	type pair struct{ from, to string }
	seen := make(map[pair]struct{})

	for _, p := range snap.NodesByOutput(r) {
		n := newNode(p)
		d.ProducingRecipes = append(d.ProducingRecipes, Producer{
			RecipeID:    n.RecipeID,
			OutputCount: n.Output.Count,
			Inputs:      n.Inputs,
		})
		for _, e := range snap.EdgesFrom(p.ID()) {
			k := pair{e.From.String(), e.To.String()}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			d.RelatedEdges = append(d.RelatedEdges, newEdge(e))
		}
	}
	for _, c := range snap.NodesByInput(r) {
		d.ConsumingRecipes = append(d.ConsumingRecipes, c.ID().String())
	}
	return d
}
