// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package node

import "slices"

// Resource is an opaque identifier for a kind of good that can be produced or
// consumed. No internal structure is assumed beyond equality.
type Resource string

// ResourceSet is a deduplicated set of resources.
type ResourceSet map[Resource]struct{}

// NewResourceSet builds a set from the given resources, dropping duplicates
// and empty values.
func NewResourceSet(resources ...Resource) ResourceSet {
	set := make(ResourceSet, len(resources))
	for _, r := range resources {
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is a member of the set.
func (s ResourceSet) Contains(r Resource) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the members in ascending order.
func (s ResourceSet) Sorted() []Resource {
	out := make([]Resource, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// IntersectionSize counts the members shared with other.
func (s ResourceSet) IntersectionSize(other ResourceSet) int {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	n := 0
	for r := range small {
		if large.Contains(r) {
			n++
		}
	}
	return n
}
