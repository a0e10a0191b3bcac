// Package hclconfig loads relaygrid's optional HCL configuration.
//
// A configuration path may be a single file or a directory, which is
// searched recursively for .hcl files. Files are applied in lexical order;
// an attribute set in a later file overrides the same attribute from an
// earlier one, and descriptor blocks accumulate.
//
//	server { listen = ":8188"  prefix = "/api"  class_prefix = "relaygrid" }
//	store  { dir = "saved_nodes"  watch = true  resync = "@every 5m" }
//	log    { level = "debug"  format = "json" }
//	events { enabled = true }
//
//	descriptor "in" "default" {
//	  name = "Example input"
//	  field "text"   { type = "STRING" }
//	  field "number" { type = "INT" }
//	}
//
// Every attribute is optional. Unset attributes are reported as nil so the
// caller can layer command-line flags and defaults around them.
package hclconfig
