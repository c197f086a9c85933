/*
Package catalogue defines the contract between the graph builder and the host
catalogue of production rules, plus the concrete catalogues shipped with the
tool.

A host rule carries a raw identifier, an opaque category, an output resource
with a count, and a list of ingredient slots. Each slot lists the resources
it accepts; the builder uses the first one as the slot's representative.

Three implementations are provided:

  - Static: an in-memory list, used by tests and embedders.
  - Files: HCL and YAML rule files discovered under one or more paths.
  - Func: adapts a plain function.

HCL rule files look like this:

	rule "minecraft:torch" {
	  category = "crafting_shaped"
	  inputs   = ["coal", "stick"]

	  output {
	    resource = "torch"
	    count    = 4
	  }
	}

An entry of inputs may itself be a list, meaning the slot accepts any of the
listed resources:

	inputs = [["oak_planks", "birch_planks"], "stick"]

YAML files carry the same fields under a top-level "rules" key.
*/
package catalogue
