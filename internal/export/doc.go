// Package export renders graph snapshots for consumers outside the process:
// a JSON document, an HCL rendition of the same document, a plain-text
// statistics report and a per-resource detail document. Exporter writes them
// to timestamped files and prunes old ones.
package export
