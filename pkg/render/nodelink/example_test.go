package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/render/nodelink"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

func ExampleToDOT() {
	p, _ := plan.Build("plan", []syntax.Stmt{{Kind: syntax.KindCall, Callee: "do_something"}})
	g, _ := flow.Flatten(p)

	fmt.Print(nodelink.ToDOT(g, nodelink.Options{}))
	// Output:
	// digraph G {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fontname="Helvetica", fontsize=14, margin="0.2,0.1"];
	//   edge [fontname="Helvetica", fontsize=10];
	//   ranksep=0.4;
	//   nodesep=0.3;
	//
	//   n0 [label="plan", fillcolor="plum", shape=oval];
	//   n1 [label="CALL do_something", fillcolor="khaki"];
	//   n2 [label="end", fillcolor="plum", shape=oval];
	//
	//   n0 -> n1;
	//   n1 -> n2;
	// }
}

func ExampleColorFor() {
	for _, kind := range []string{"Call", "For", "If"} {
		fmt.Println(kind, nodelink.ColorFor(kind))
	}
	// Output:
	// Call khaki
	// For gold
	// If orchid
}
