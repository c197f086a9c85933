package export

import (
	"io"
	"time"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// WriteHCL renders doc as HCL: one graph block with the metadata, then a
// node block per rule and an edge block per relationship.
func WriteHCL(w io.Writer, doc Document) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	meta := root.AppendNewBlock("graph", []string{doc.BuildID}).Body()
	meta.SetAttributeValue("version", cty.StringVal(doc.Version))
	meta.SetAttributeValue("export_time", cty.StringVal(doc.ExportTime.Format(time.RFC3339)))
	meta.SetAttributeValue("build_timestamp", cty.StringVal(doc.BuildTimestamp.Format(time.RFC3339)))
	meta.SetAttributeValue("node_count", cty.NumberIntVal(int64(doc.NodeCount)))
	meta.SetAttributeValue("edge_count", cty.NumberIntVal(int64(doc.EdgeCount)))
	meta.SetAttributeValue("has_cycles", cty.BoolVal(doc.HasCycles))

	for _, n := range doc.Nodes {
		root.AppendNewline()
		b := root.AppendNewBlock("rule", []string{n.RecipeID}).Body()
		b.SetAttributeValue("category", cty.StringVal(n.RecipeType))
		b.SetAttributeValue("inputs", stringTuple(n.Inputs))
		if n.X != nil && n.Y != nil {
			b.SetAttributeValue("position", cty.ObjectVal(map[string]cty.Value{
				"x": cty.NumberFloatVal(*n.X),
				"y": cty.NumberFloatVal(*n.Y),
			}))
		}
		out := b.AppendNewBlock("output", nil).Body()
		out.SetAttributeValue("resource", cty.StringVal(n.Output.ItemID))
		out.SetAttributeValue("count", cty.NumberIntVal(int64(n.Output.Count)))
	}

	for _, e := range doc.Edges {
		root.AppendNewline()
		b := root.AppendNewBlock("edge", []string{e.FromRecipeID, e.ToRecipeID}).Body()
		b.SetAttributeValue("kind", cty.StringVal(e.RelationshipType))
		b.SetAttributeValue("weight", cty.NumberFloatVal(e.Weight))
	}

	_, err := f.WriteTo(w)
	return err
}

func stringTuple(ss []string) cty.Value {
	vals := make([]cty.Value, 0, len(ss))
	for _, s := range ss {
		vals = append(vals, cty.StringVal(s))
	}
	return cty.TupleVal(vals)
}
