package catalogue

import (
	"fmt"
	"os"

	"github.com/vk/recipemap/internal/node"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Rules []yaml.Node `yaml:"rules"`
}

type yamlRule struct {
	ID       string      `yaml:"id"`
	Category string      `yaml:"category"`
	Inputs   []yamlSlot  `yaml:"inputs"`
	Output   *yamlOutput `yaml:"output"`
}

type yamlOutput struct {
	Resource string `yaml:"resource"`
	Count    *int   `yaml:"count"`
}

// yamlSlot accepts either a scalar resource name or a sequence of
// alternatives. A null slot is empty.
type yamlSlot []node.Resource

func (s *yamlSlot) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if isNull(value) {
			*s = nil
			return nil
		}
		*s = yamlSlot{node.Resource(value.Value)}
		return nil
	case yaml.SequenceNode:
		out := make(yamlSlot, 0, len(value.Content))
		for _, alt := range value.Content {
			if alt.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: alternative must be a name", alt.Line)
			}
			if isNull(alt) {
				continue
			}
			out = append(out, node.Resource(alt.Value))
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("line %d: ingredient must be a name or a list of names", value.Line)
	}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func loadYAMLFile(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file %s: %w", path, err)
	}

	var f yamlFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i := range f.Rules {
		rules = append(rules, decodeYAMLRule(&f.Rules[i]))
	}
	return rules, nil
}

// decodeYAMLRule decodes one rule entry. Decode failures are kept on the
// rule as a Problem so the rest of the file still loads.
func decodeYAMLRule(n *yaml.Node) Rule {
	var r yamlRule
	if err := n.Decode(&r); err != nil {
		var head struct {
			ID string `yaml:"id"`
		}
		_ = n.Decode(&head)
		return Rule{ID: head.ID, Problem: fmt.Sprintf("unreadable rule at line %d: %s", n.Line, err)}
	}

	rule := Rule{ID: r.ID, Category: r.Category}
	if r.Output != nil {
		rule.Output = node.Resource(r.Output.Resource)
		rule.OutputCount = 1
		if r.Output.Count != nil {
			rule.OutputCount = *r.Output.Count
		}
	}
	for _, slot := range r.Inputs {
		rule.Ingredients = append(rule.Ingredients, []node.Resource(slot))
	}
	return rule
}
