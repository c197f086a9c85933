// Package app contains the core application logic. It wires the catalogue,
// the build session, the layout simulator, the exporter and the presentation
// feed together, decoupled from any specific entrypoint like a CLI.
package app
