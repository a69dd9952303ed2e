// Package io reads and writes plan documents.
//
// # Overview
//
// A document holds everything one run produces for a function: the
// nested plan for structural consumers, the flattened graph for
// renderers, and the warnings raised while building. The format is
// versioned so readers can detect schema changes.
//
// # JSON Format
//
//	{
//	  "schema_version": 1,
//	  "plan_id": "5b0c…",
//	  "function": {"name": "plan", "line": 3, "params": [], "statements": 1},
//	  "next_id": 4,
//	  "plan": [
//	    {"id": 0, "kind": "Start", "label": "plan", "synthetic": true},
//	    {"id": 1, "kind": "For", "label": "i in range(n)", "line": 4,
//	     "children": [{"name": "body", "nodes": [
//	       {"id": 2, "kind": "Call", "label": "do_something", "line": 5}]}]},
//	    {"id": 3, "kind": "End", "label": "end", "synthetic": true}
//	  ],
//	  "graph": {
//	    "nodes": [{"id": 0, "kind": "Start", "label": "plan"}, …],
//	    "edges": [{"from": 0, "to": 1, "tag": "seq"}, …]
//	  },
//	  "warnings": []
//	}
//
// The plan id is a name-based UUID of the function name and the source
// text, so re-running on unchanged input yields an identical document.
//
// # Import and Export
//
// Use [ExportJSON] or [WriteJSON] to write, and [ImportJSON] or
// [ReadJSON] to read. Reading rebuilds the plan and the graph with the
// same ids, kinds, labels, and edge tags. [WriteYAML] writes the same
// fields as YAML; there is no YAML reader.
//
// Export functions create or truncate their target file, so repeated
// runs overwrite earlier output.
package io
