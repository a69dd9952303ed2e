package flow

import (
	"fmt"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/plan"
)

// pending is an edge whose source is known but whose target is the entry
// of whatever region comes next.
type pending struct {
	from int
	tag  Tag
}

// loopFrame collects the jumps out of the innermost loop body.
type loopFrame struct {
	breaks    []pending
	continues []pending
}

// tryFrame tracks one enclosing try statement. While its try sub-plan is
// flattened, catches reports whether handlers receive raised exceptions.
// A try with a finally block collects every jump that leaves it so the
// jump can pass through the finally block first.
type tryFrame struct {
	catches bool
	finally bool
	loops   int // len(flattener.loops) when the frame was pushed

	returns   []pending
	raises    []pending
	breaks    []pending
	continues []pending
}

func (t *tryFrame) jumps() []pending {
	var out []pending
	for _, group := range [][]pending{t.returns, t.raises, t.breaks, t.continues} {
		out = append(out, group...)
	}
	return out
}

type flattener struct {
	g     *Graph
	next  int
	end   int
	loops []*loopFrame
	tries []*tryFrame
	err   error
}

// Flatten converts a validated plan into a single-entry graph.
//
// Every region is wired by handing it the pending edges of its
// predecessor and taking back its own. Anchors are added only where two
// or more pending edges must converge. Nodes that end up unreachable from
// Start (code after a return, for instance) are removed and listed by
// [Graph.Unreachable]. The result satisfies [Graph.Validate].
func Flatten(p *plan.Plan) (*Graph, error) {
	if err := plan.Validate(p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "invalid plan")
	}

	f := &flattener{
		g:    New(),
		next: p.NextID,
		end:  p.Nodes[len(p.Nodes)-1].ID,
	}
	p.Walk(func(n *plan.Node, _ int) bool {
		f.fail(f.g.AddNode(Node{
			ID:        n.ID,
			Kind:      n.Kind,
			Label:     n.Label,
			Line:      n.Line,
			Synthetic: n.Synthetic,
			Warning:   n.Warning,
		}))
		return true
	})

	f.sequence(p, nil)
	if f.err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, f.err, "flatten %s", p.Function)
	}

	f.g.prune(p.Nodes[0].ID)
	if err := f.g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "flatten %s", p.Function)
	}
	return f.g, nil
}

func (f *flattener) fail(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

func (f *flattener) connect(in []pending, to int) {
	for _, p := range in {
		f.fail(f.g.AddEdge(Edge{From: p.from, To: to, Tag: p.tag}))
	}
}

func (f *flattener) anchor(label string) int {
	id := f.next
	f.next++
	f.fail(f.g.AddNode(Node{ID: id, Kind: plan.Anchor, Label: label, Synthetic: true}))
	return id
}

// merge converges two or more pending edges on a new anchor. Fewer pass
// through unchanged.
func (f *flattener) merge(in []pending, label string) []pending {
	if len(in) < 2 {
		return in
	}
	a := f.anchor(label)
	f.connect(in, a)
	return []pending{{from: a, tag: Seq}}
}

func (f *flattener) sequence(p *plan.Plan, in []pending) []pending {
	for _, n := range p.Nodes {
		in = f.node(n, in)
	}
	return in
}

func (f *flattener) node(n *plan.Node, in []pending) []pending {
	f.connect(in, n.ID)

	switch n.Kind {
	case plan.Start, plan.Statement, plan.Call, plan.Assign:
		return []pending{{from: n.ID, tag: Seq}}
	case plan.End:
		return nil
	case plan.Return:
		f.returnFrom(n.ID)
		return nil
	case plan.Raise:
		f.raiseFrom(n.ID)
		return nil
	case plan.Break:
		if f.jumpFrom(n.ID, true) {
			return nil
		}
		return []pending{{from: n.ID, tag: Seq}}
	case plan.Continue:
		if f.jumpFrom(n.ID, false) {
			return nil
		}
		return []pending{{from: n.ID, tag: Seq}}
	case plan.If:
		then := f.sequence(n.Child(plan.SubThen), []pending{{from: n.ID, tag: True}})
		els := f.sequence(n.Child(plan.SubElse), []pending{{from: n.ID, tag: False}})
		return f.merge(append(then, els...), AnchorMerge)
	case plan.For, plan.While:
		return f.loopNode(n)
	case plan.TryExcept:
		return f.tryNode(n)
	default:
		f.fail(fmt.Errorf("node %d: unexpected kind %s", n.ID, n.Kind))
		return nil
	}
}

func (f *flattener) loop() *loopFrame {
	if len(f.loops) == 0 {
		return nil
	}
	return f.loops[len(f.loops)-1]
}

// returnFrom sends a return to End, through the innermost finally block
// that encloses it.
func (f *flattener) returnFrom(from int) {
	for i := len(f.tries) - 1; i >= 0; i-- {
		if t := f.tries[i]; t.finally {
			t.returns = append(t.returns, pending{from: from, tag: Seq})
			return
		}
	}
	f.connect([]pending{{from: from, tag: Seq}}, f.end)
}

// raiseFrom propagates an exception outward until a handler catches it or
// a finally block intercepts it. Uncaught exceptions reach End.
func (f *flattener) raiseFrom(from int) {
	for i := len(f.tries) - 1; i >= 0; i-- {
		t := f.tries[i]
		if t.catches {
			return // wired by the handlers' exception edges
		}
		if t.finally {
			t.raises = append(t.raises, pending{from: from, tag: Exception})
			return
		}
	}
	f.connect([]pending{{from: from, tag: Exception}}, f.end)
}

// jumpFrom records a break or continue. Finally blocks between the jump
// and its loop capture it first. It reports false outside any loop.
func (f *flattener) jumpFrom(from int, isBreak bool) bool {
	loop := f.loop()
	if loop == nil {
		return false
	}
	for i := len(f.tries) - 1; i >= 0 && f.tries[i].loops == len(f.loops); i-- {
		if t := f.tries[i]; t.finally {
			if isBreak {
				t.breaks = append(t.breaks, pending{from: from, tag: Seq})
			} else {
				t.continues = append(t.continues, pending{from: from, tag: Seq})
			}
			return true
		}
	}
	if isBreak {
		loop.breaks = append(loop.breaks, pending{from: from, tag: LoopExit})
	} else {
		loop.continues = append(loop.continues, pending{from: from, tag: Seq})
	}
	return true
}

// loopNode wires a loop. The body and every continue return to the loop
// node through exactly one loop_back edge.
func (f *flattener) loopNode(n *plan.Node) []pending {
	frame := &loopFrame{}
	f.loops = append(f.loops, frame)
	exits := f.sequence(n.Child(plan.SubBody), []pending{{from: n.ID, tag: LoopBody}})
	f.loops = f.loops[:len(f.loops)-1]

	back := append(exits, frame.continues...)
	switch {
	case len(back) == 0:
	case len(back) == 1 && back[0].tag == Seq:
		f.fail(f.g.AddEdge(Edge{From: back[0].from, To: n.ID, Tag: LoopBack}))
	default:
		latch := f.anchor(AnchorLatch)
		f.connect(back, latch)
		f.fail(f.g.AddEdge(Edge{From: latch, To: n.ID, Tag: LoopBack}))
	}

	out := append([]pending{{from: n.ID, tag: LoopExit}}, frame.breaks...)
	return f.merge(out, AnchorLoopExit)
}

// tryNode wires try/except/else/finally. Every node of the try sub-plan
// may raise, so each gets an exception edge to every handler entry, or to
// the finally entry when there are no handlers.
//
// The finally block is shared by every way out of the statement: normal
// completion, returns, uncaught raises, breaks and continues. Each
// captured jump is re-issued from the finally exit toward its target.
func (f *flattener) tryNode(n *plan.Node) []pending {
	body := n.Child(plan.SubTry)
	handlers := n.Handlers()
	fin := n.Child(plan.SubFinally)

	frame := &tryFrame{catches: len(handlers) > 0, finally: fin != nil, loops: len(f.loops)}
	f.tries = append(f.tries, frame)
	exits := f.sequence(body, []pending{{from: n.ID, tag: Seq}})
	frame.catches = false

	var raisers []int
	body.Walk(func(c *plan.Node, _ int) bool {
		if !c.Synthetic {
			raisers = append(raisers, c.ID)
		}
		return true
	})
	if len(raisers) == 0 {
		raisers = []int{n.ID}
	}

	if orElse := n.Child(plan.SubElse); orElse != nil {
		exits = f.sequence(orElse, exits)
	}
	for _, h := range handlers {
		entry := h.Plan.Entry().ID
		for _, from := range raisers {
			f.fail(f.g.AddEdge(Edge{From: from, To: entry, Tag: Exception}))
		}
		exits = append(exits, f.sequence(h.Plan, nil)...)
	}
	f.tries = f.tries[:len(f.tries)-1]
	exits = f.merge(exits, AnchorMerge)

	if fin == nil {
		return exits
	}
	if len(handlers) == 0 {
		for _, from := range raisers {
			frame.raises = append(frame.raises, pending{from: from, tag: Exception})
		}
	}
	jumps := frame.jumps()
	out := f.sequence(fin, append(exits, jumps...))
	if len(jumps) == 0 {
		return out
	}

	src, out := f.finallyExit(out)
	if src < 0 {
		return nil // the finally block itself returns or raises
	}
	if len(frame.returns) > 0 {
		f.returnFrom(src)
	}
	if len(frame.raises) > 0 {
		f.raiseFrom(src)
	}
	if len(frame.breaks) > 0 {
		f.jumpFrom(src, true)
	}
	if len(frame.continues) > 0 {
		f.jumpFrom(src, false)
	}
	if len(exits) == 0 {
		return nil
	}
	return out
}

// finallyExit collapses the exits of a finally block into a single node
// that captured jumps can be re-issued from. It returns -1 when the block
// has no exit.
func (f *flattener) finallyExit(out []pending) (int, []pending) {
	switch {
	case len(out) == 0:
		return -1, nil
	case len(out) == 1 && out[0].tag == Seq:
		return out[0].from, out
	}
	a := f.anchor(AnchorFinally)
	f.connect(out, a)
	return a, []pending{{from: a, tag: Seq}}
}
