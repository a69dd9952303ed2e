// Package pseudo renders a plan as indented pseudocode.
//
// The output is a pure function of the plan: the same plan always yields
// byte-identical text. Each sub-plan is indented two spaces deeper than
// its owner, and blocks are closed with END keywords:
//
//	FUNCTION plan
//	  FOR i in range(n)
//	    CALL do_something
//	  END FOR
//	END FUNCTION
package pseudo

import (
	"strings"

	"github.com/matzehuels/py2plan/pkg/plan"
)

const indent = "  "

// Render returns the pseudocode for p, ending with a single newline.
func Render(p *plan.Plan) string {
	var b strings.Builder
	r := renderer{b: &b}
	for _, n := range p.Nodes {
		switch n.Kind {
		case plan.Start, plan.End:
			r.node(n, 0)
		default:
			r.node(n, 1)
		}
	}
	return b.String()
}

type renderer struct {
	b *strings.Builder
}

func (r renderer) line(depth int, parts ...string) {
	r.b.WriteString(strings.Repeat(indent, depth))
	r.b.WriteString(strings.TrimSpace(strings.Join(parts, " ")))
	r.b.WriteByte('\n')
}

func (r renderer) block(p *plan.Plan, depth int) {
	for _, n := range p.Nodes {
		r.node(n, depth)
	}
}

func (r renderer) node(n *plan.Node, depth int) {
	switch n.Kind {
	case plan.Start:
		r.line(depth, "FUNCTION", n.Label)
	case plan.End:
		r.line(depth, "END FUNCTION")
	case plan.Statement, plan.Assign, plan.Anchor:
		r.line(depth, n.Label)
	case plan.Call:
		r.line(depth, "CALL", n.Label)
	case plan.Return:
		r.line(depth, "RETURN", n.Label)
	case plan.Raise:
		r.line(depth, "RAISE", n.Label)
	case plan.Break:
		r.line(depth, "BREAK")
	case plan.Continue:
		r.line(depth, "CONTINUE")
	case plan.If:
		r.line(depth, "IF", n.Label)
		r.block(n.Child(plan.SubThen), depth+1)
		if els := n.Child(plan.SubElse); els != nil && !passThrough(els) {
			r.line(depth, "ELSE")
			r.block(els, depth+1)
		}
		r.line(depth, "END IF")
	case plan.For:
		r.line(depth, "FOR", n.Label)
		r.block(n.Child(plan.SubBody), depth+1)
		r.line(depth, "END FOR")
	case plan.While:
		r.line(depth, "WHILE", n.Label)
		r.block(n.Child(plan.SubBody), depth+1)
		r.line(depth, "END WHILE")
	case plan.TryExcept:
		r.tryExcept(n, depth)
	}
}

func (r renderer) tryExcept(n *plan.Node, depth int) {
	r.line(depth, "TRY")
	r.block(n.Child(plan.SubTry), depth+1)
	for _, h := range n.Handlers() {
		exc := h.Label
		if exc == "except" {
			exc = ""
		}
		r.line(depth, "EXCEPT", exc)
		r.block(h.Plan, depth+1)
	}
	if els := n.Child(plan.SubElse); els != nil {
		r.line(depth, "ELSE")
		r.block(els, depth+1)
	}
	if fin := n.Child(plan.SubFinally); fin != nil {
		r.line(depth, "FINALLY")
		r.block(fin, depth+1)
	}
	r.line(depth, "END TRY")
}

// passThrough reports whether p is the synthetic else of an if without one.
func passThrough(p *plan.Plan) bool {
	return len(p.Nodes) == 1 && p.Nodes[0].Synthetic && p.Nodes[0].Kind == plan.Statement
}
