package flow_test

import (
	"fmt"

	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

func ExampleFlatten() {
	// for i in range(n): do_something(i)
	p, _ := plan.Build("plan", []syntax.Stmt{{
		Kind: syntax.KindFor,
		Cond: "i in range(n)",
		Body: []syntax.Stmt{{Kind: syntax.KindCall, Callee: "do_something"}},
	}})

	g, err := flow.Flatten(p)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		fmt.Printf("%s -%s-> %s\n", from.Kind, e.Tag, to.Kind)
	}
	// Output:
	// Start -seq-> For
	// For -loop_body-> Call
	// Call -loop_back-> For
	// For -loop_exit-> End
}

func ExampleGraph_Validate() {
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: 0, Kind: plan.Start})
	_ = g.AddNode(flow.Node{ID: 1, Kind: plan.Call})
	_ = g.AddNode(flow.Node{ID: 2, Kind: plan.End})
	_ = g.AddEdge(flow.Edge{From: 0, To: 1, Tag: flow.Seq})
	_ = g.AddEdge(flow.Edge{From: 1, To: 0, Tag: flow.Seq})

	fmt.Println(g.Validate())
	// Output:
	// start node has a predecessor
}
