// internal/ruleid/doc.go

/*
Package ruleid provides a structured, totally ordered representation for
production rule identifiers, based on the canonical format `namespace:path`.

The namespace is optional on input and defaults to DefaultNamespace, e.g.
`oak_planks` parses to `minecraft:oak_planks`. Paths may contain `/`, `.`,
`_` and `-`, matching the identifiers handed out by host catalogues.

The ID type is a plain comparable struct, so it can be used directly as a map
key or inside composite keys without string formatting.
*/
package ruleid
