// Package render groups the output renderers for plans.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [pseudo]: indented pseudocode, one line per step
//   - [nodelink]: DOT text, SVG through Graphviz, and an HTML page
//
// Both read the same inputs. Pseudocode walks the nested plan, while the
// node-link renderer draws the flattened graph so that every edge tag is
// visible.
//
//	text := pseudo.Render(p)
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//
// [pseudo]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/render/pseudo
// [nodelink]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/render/nodelink
package render
