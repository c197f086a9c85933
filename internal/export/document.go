package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vk/recipemap/internal/graph"
	"github.com/vk/recipemap/internal/layout"
	"github.com/vk/recipemap/internal/node"
	"github.com/vk/recipemap/internal/ruleid"
)

// FormatVersion is written into every document.
const FormatVersion = "1.0"

// Document is the structured export of one snapshot.
type Document struct {
	Version        string    `json:"version"`
	ExportTime     time.Time `json:"exportTime"`
	BuildID        string    `json:"buildId"`
	NodeCount      int       `json:"nodeCount"`
	EdgeCount      int       `json:"edgeCount"`
	HasCycles      bool      `json:"hasCycles"`
	BuildTimestamp time.Time `json:"buildTimestamp"`
	Nodes          []Node    `json:"nodes"`
	Edges          []Edge    `json:"edges"`
	Indices        Indices   `json:"indices"`
}

// Node is the export form of a rule node.
type Node struct {
	RecipeID   string   `json:"recipeId"`
	RecipeType string   `json:"recipeType"`
	Output     Output   `json:"output"`
	Inputs     []string `json:"inputs"`
	InputCount int      `json:"inputCount"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
}

// Output is the produced resource and count.
type Output struct {
	ItemID string `json:"itemId"`
	Count  int    `json:"count"`
}

// Edge is the export form of a relationship edge.
type Edge struct {
	FromRecipeID     string  `json:"fromRecipeId"`
	ToRecipeID       string  `json:"toRecipeId"`
	RelationshipType string  `json:"relationshipType"`
	Weight           float64 `json:"weight"`
}

// Indices carries lookup tables for consumers of the document.
type Indices struct {
	OutputToRecipes map[string][]string `json:"outputToRecipes"`
}

// NewDocument builds the export document for snap. positions may be nil;
// when set, nodes carry their layout coordinates.
func NewDocument(snap *graph.Snapshot, exportTime time.Time, positions map[ruleid.ID]layout.Point) Document {
	doc := Document{
		Version:        FormatVersion,
		ExportTime:     exportTime,
		BuildID:        snap.BuildID(),
		NodeCount:      snap.NodeCount(),
		EdgeCount:      snap.EdgeCount(),
		HasCycles:      snap.HasCycles(),
		BuildTimestamp: snap.BuiltAt(),
		Nodes:          make([]Node, 0, snap.NodeCount()),
		Edges:          make([]Edge, 0, snap.EdgeCount()),
		Indices:        Indices{OutputToRecipes: make(map[string][]string)},
	}

	for _, n := range snap.Nodes() {
		out := newNode(n)
		if p, ok := positions[n.ID()]; ok {
			x, y := p.X, p.Y
			out.X, out.Y = &x, &y
		}
		doc.Nodes = append(doc.Nodes, out)

		key := string(n.Output())
		doc.Indices.OutputToRecipes[key] = append(doc.Indices.OutputToRecipes[key], n.ID().String())
	}
	for _, e := range snap.Edges() {
		doc.Edges = append(doc.Edges, newEdge(e))
	}
	return doc
}

func newNode(n *node.RuleNode) Node {
	inputs := make([]string, 0, n.InputCount())
	for _, in := range n.Inputs() {
		inputs = append(inputs, string(in))
	}
	return Node{
		RecipeID:   n.ID().String(),
		RecipeType: n.Category(),
		Output:     Output{ItemID: string(n.Output()), Count: n.OutputCount()},
		Inputs:     inputs,
		InputCount: len(inputs),
	}
}

func newEdge(e graph.Edge) Edge {
	return Edge{
		FromRecipeID:     e.From.String(),
		ToRecipeID:       e.To.String(),
		RelationshipType: string(e.Kind),
		Weight:           e.Weight,
	}
}

// WriteJSON writes v as indented JSON without HTML escaping.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
