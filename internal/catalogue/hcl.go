package catalogue

import (
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/recipemap/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

type hclRoot struct {
	Rules  []*hclRule `hcl:"rule,block"`
	Remain hcl.Body   `hcl:",remain"`
}

type hclRule struct {
	ID       string         `hcl:"id,label"`
	Category hcl.Expression `hcl:"category,optional"`
	Inputs   hcl.Expression `hcl:"inputs,optional"`
	Output   *hclOutput     `hcl:"output,block"`
	Remain   hcl.Body       `hcl:",remain"`
}

// Attribute values are evaluated per rule so a bad value only skips its rule.
type hclOutput struct {
	Resource hcl.Expression `hcl:"resource,optional"`
	Count    hcl.Expression `hcl:"count,optional"`
	Remain   hcl.Body       `hcl:",remain"`
}

func loadHCLFile(parser *hclparse.Parser, path string) ([]Rule, error) {
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	rules := make([]Rule, 0, len(root.Rules))
	for _, r := range root.Rules {
		rules = append(rules, translateHCLRule(r))
	}
	return rules, nil
}

func translateHCLRule(r *hclRule) Rule {
	rule := Rule{ID: r.ID}
	if err := noExtraContent(r.Remain); err != nil {
		rule.Problem = err.Error()
		return rule
	}
	if r.Output != nil {
		if err := noExtraContent(r.Output.Remain); err != nil {
			rule.Problem = fmt.Sprintf("output: %s", err)
			return rule
		}
	}

	category, err := stringFromExpr(r.Category)
	if err != nil {
		rule.Problem = fmt.Sprintf("unreadable category: %s", err)
		return rule
	}
	rule.Category = category

	if r.Output != nil {
		resource, err := stringFromExpr(r.Output.Resource)
		if err != nil {
			rule.Problem = fmt.Sprintf("unreadable output resource: %s", err)
			return rule
		}
		count, err := countFromExpr(r.Output.Count)
		if err != nil {
			rule.Problem = fmt.Sprintf("unreadable output count: %s", err)
			return rule
		}
		rule.Output = node.Resource(resource)
		rule.OutputCount = count
	}

	if r.Inputs == nil {
		return rule
	}
	val, diags := r.Inputs.Value(nil)
	if diags.HasErrors() {
		rule.Problem = fmt.Sprintf("unreadable inputs: %s", diags.Error())
		return rule
	}
	slots, err := ingredientsFromCty(val)
	if err != nil {
		rule.Problem = fmt.Sprintf("unreadable inputs: %s", err)
		return rule
	}
	rule.Ingredients = slots
	return rule
}

// noExtraContent reports arguments or blocks the rule schema does not know.
func noExtraContent(body hcl.Body) error {
	if body == nil {
		return nil
	}
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("unsupported content: %s", diags.Error())
	}
	if len(attrs) > 0 {
		names := make([]string, 0, len(attrs))
		for name := range attrs {
			names = append(names, name)
		}
		slices.Sort(names)
		return fmt.Errorf("unsupported arguments: %s", strings.Join(names, ", "))
	}
	return nil
}

func exprValue(expr hcl.Expression) (cty.Value, error) {
	if expr == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !val.IsKnown() {
		return cty.NilVal, fmt.Errorf("value must be known")
	}
	return val, nil
}

func stringFromExpr(expr hcl.Expression) (string, error) {
	val, err := exprValue(expr)
	if err != nil || val.IsNull() {
		return "", err
	}
	s, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}

// countFromExpr reads an output count. A missing count means 1.
func countFromExpr(expr hcl.Expression) (int, error) {
	val, err := exprValue(expr)
	if err != nil {
		return 0, err
	}
	if val.IsNull() {
		return 1, nil
	}
	n, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, err
	}
	bf := n.AsBigFloat()
	if !bf.IsInt() {
		return 0, fmt.Errorf("value must be a whole number, got %s", bf.Text('f', -1))
	}
	i, acc := bf.Int64()
	if acc != big.Exact || i > math.MaxInt32 || i < math.MinInt32 {
		return 0, fmt.Errorf("value %s is out of range", bf.Text('f', -1))
	}
	return int(i), nil
}

// ingredientsFromCty reads a list whose elements are either a resource name
// or a list of alternative resource names.
func ingredientsFromCty(val cty.Value) ([][]node.Resource, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("inputs must be known")
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, fmt.Errorf("inputs must be a list, got %s", ty.FriendlyName())
	}

	var slots [][]node.Resource
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() {
			slots = append(slots, nil)
			continue
		}
		et := elem.Type()
		if et.IsListType() || et.IsTupleType() || et.IsSetType() {
			var slot []node.Resource
			for inner := elem.ElementIterator(); inner.Next(); {
				_, alt := inner.Element()
				s, err := resourceFromCty(alt)
				if err != nil {
					return nil, err
				}
				slot = append(slot, s)
			}
			slots = append(slots, slot)
			continue
		}
		s, err := resourceFromCty(elem)
		if err != nil {
			return nil, err
		}
		slots = append(slots, []node.Resource{s})
	}
	return slots, nil
}

func resourceFromCty(v cty.Value) (node.Resource, error) {
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to a resource name: %w", v.Type().FriendlyName(), err)
	}
	if s.IsNull() || !s.IsKnown() {
		return "", nil
	}
	return node.Resource(s.AsString()), nil
}
