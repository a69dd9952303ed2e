// Package pkg provides the core libraries of py2plan.
//
// # Overview
//
// py2plan reads one function of a Python source file and describes its
// control flow as an execution plan: a tree of step nodes that can be
// flattened into a directed graph, printed as pseudocode, or rendered as
// a node-link diagram.
//
// # Architecture
//
// The data flow through py2plan:
//
//	Python source
//	     ↓
//	[syntax]  parse, list and select functions, lower statements
//	     ↓
//	[plan]    build the nested plan, placeholders for unsupported code
//	     ↓
//	[flow]    flatten into a graph with tagged edges
//	     ↓
//	[io], [render/pseudo], [render/nodelink]
//	     ↓
//	plan.json, plan.pseudo, plan.yaml, plan.svg, plan.html
//
// # Quick Start
//
//	src, _ := os.ReadFile("tasks.py")
//	file, err := syntax.Parse(ctx, src)
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	sig, err := file.Select("")  // empty name: automatic selection
//	if err != nil {
//	    return err
//	}
//	p, warnings := plan.Build(sig.Name, file.Body(sig))
//	g, err := flow.Flatten(p)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(pseudo.Render(p))
//
// Most callers use [pipeline] instead, which runs these stages, writes
// the output files and isolates export failures:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    SourcePath: "tasks.py",
//	    OutDir:     "build",
//	    SVG:        true,
//	})
//
// # Main Packages
//
// [syntax] - Python parsing with tree-sitter and the lowered statement
// form the builder consumes.
//
// [plan] - The nested plan model, its builder and structural checks.
//
// [flow] - The flattened graph. Edges carry a tag naming the transfer:
// seq, true, false, loop_body, loop_exit, loop_back or exception.
//
// [io] - The versioned plan document in JSON and YAML.
//
// [render/pseudo] - Indented pseudocode.
//
// [render/nodelink] - DOT generation, SVG rendering through Graphviz and
// the self-contained HTML page.
//
// [pipeline] - Orchestration shared by every entry point.
//
// [cache], [observability], [errors] and [buildinfo] - Supporting
// infrastructure.
//
// [syntax]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/syntax
// [plan]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/plan
// [flow]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/flow
// [io]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/io
// [render/pseudo]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/render/pseudo
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/py2plan/pkg/buildinfo
package pkg
