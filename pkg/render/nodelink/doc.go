// Package nodelink renders flattened plan graphs as node-link diagrams.
//
// # Overview
//
// [ToDOT] turns a [flow.Graph] into Graphviz DOT source. Nodes are boxes
// filled by a stable per-kind color, conditions are diamonds, anchors are
// small points, and edges carry their tag as a label or line style.
//
// # Backends
//
// A [Backend] turns DOT into SVG. Two are provided:
//
//   - [Graphviz]: the embedded WebAssembly build of Graphviz via
//     [github.com/goccy/go-graphviz]. Needs no system install.
//   - [DotCommand]: the system "dot" binary.
//
// # Export
//
// An [Exporter] produces svg and html artifacts:
//
//	e := nodelink.NewExporter(nodelink.Graphviz{}, cache.NewMemoryCache(), 30*time.Second, nodelink.Options{})
//	svg, err := e.Export(ctx, g, p, nodelink.FormatSVG)
//	html, err := e.Export(ctx, g, p, nodelink.FormatHTML, warnings...)
//
// The html page is self-contained: the rendered SVG inline, followed by
// the pseudocode and any warnings. Export failures, including timeouts,
// are reported as EXPORT_FAILED errors and never affect other outputs.
package nodelink
