// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package node defines the vertices of the recipe graph: production rules that
// consume a set of resource types and yield one output resource.
//
// A RuleNode is immutable once constructed. Presentation state such as screen
// coordinates is owned by the layout package, never by the node itself, so a
// node can be shared freely between a published snapshot and its readers.
package node
