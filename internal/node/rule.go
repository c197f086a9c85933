// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import (
	"errors"
	"fmt"

	"github.com/vk/recipemap/internal/ruleid"
)

// ErrSelfReferential is returned when a rule lists its own output among its inputs.
var ErrSelfReferential = errors.New("rule consumes its own output")

// RuleNode represents one production rule in the graph.
type RuleNode struct {
	id          ruleid.ID
	category    string
	inputs      ResourceSet
	output      Resource
	outputCount int
}

// Spec carries the raw fields used to construct a RuleNode.
type Spec struct {
	ID          ruleid.ID
	Category    string
	Inputs      []Resource
	Output      Resource
	OutputCount int
}

// New validates spec and returns an immutable rule node. Inputs are
// deduplicated; a rule whose output appears in its own inputs is rejected.
func New(spec Spec) (*RuleNode, error) {
	if spec.ID.IsZero() {
		return nil, errors.New("rule identifier is required")
	}
	if spec.Output == "" {
		return nil, fmt.Errorf("rule %s has no output resource", spec.ID)
	}
	if spec.OutputCount < 1 {
		return nil, fmt.Errorf("rule %s has invalid output count %d", spec.ID, spec.OutputCount)
	}

	inputs := NewResourceSet(spec.Inputs...)
	if inputs.Contains(spec.Output) {
		return nil, fmt.Errorf("rule %s: %w (%s)", spec.ID, ErrSelfReferential, spec.Output)
	}

	return &RuleNode{
		id:          spec.ID,
		category:    spec.Category,
		inputs:      inputs,
		output:      spec.Output,
		outputCount: spec.OutputCount,
	}, nil
}

// ID returns the rule's primary key.
func (n *RuleNode) ID() ruleid.ID { return n.id }

// Category returns the opaque rule classification supplied by the host catalogue.
func (n *RuleNode) Category() string { return n.category }

// Output returns the produced resource.
func (n *RuleNode) Output() Resource { return n.output }

// OutputCount returns how many units of Output one application yields.
func (n *RuleNode) OutputCount() int { return n.outputCount }

// InputCount returns the number of distinct input resources.
func (n *RuleNode) InputCount() int { return len(n.inputs) }

// HasInput reports whether r is consumed by the rule.
func (n *RuleNode) HasInput(r Resource) bool { return n.inputs.Contains(r) }

// Inputs returns the consumed resources in ascending order. The slice is a copy.
func (n *RuleNode) Inputs() []Resource { return n.inputs.Sorted() }

// SharedInputs counts the input resources n has in common with other.
func (n *RuleNode) SharedInputs(other *RuleNode) int {
	return n.inputs.IntersectionSize(other.inputs)
}

func (n *RuleNode) String() string {
	return fmt.Sprintf("RuleNode{id=%s, output=%s x%d, inputs=%d}", n.id, n.output, n.outputCount, len(n.inputs))
}
