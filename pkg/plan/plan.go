package plan

import (
	"fmt"
	"strings"
)

// Kind is the closed set of plan node kinds.
type Kind int

const (
	Start Kind = iota
	End
	Statement
	Call
	Assign
	Return
	Break
	Continue
	Raise
	If
	For
	While
	TryExcept
	// Anchor is a merge, latch, or loop-exit point synthesized by the
	// flattener. It never appears in a nested Plan.
	Anchor
)

var kindNames = [...]string{
	Start:     "Start",
	End:       "End",
	Statement: "Statement",
	Call:      "Call",
	Assign:    "Assign",
	Return:    "Return",
	Break:     "Break",
	Continue:  "Continue",
	Raise:     "Raise",
	If:        "If",
	For:       "For",
	While:     "While",
	TryExcept: "TryExcept",
	Anchor:    "Anchor",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the Kind with the given name.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText encodes the kind by name so documents stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid node kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// IsCompound reports whether nodes of this kind own sub-plans.
func (k Kind) IsCompound() bool {
	return k == If || k == For || k == While || k == TryExcept
}

// IsLoop reports whether k is For or While.
func (k Kind) IsLoop() bool { return k == For || k == While }

// IsJump reports whether control never falls through to the next node.
func (k Kind) IsJump() bool {
	return k == Return || k == Break || k == Continue || k == Raise
}

// Sub-plan names.
const (
	SubThen    = "then"
	SubElse    = "else"
	SubBody    = "body"
	SubTry     = "try"
	SubFinally = "finally"
)

// HandlerName returns the sub-plan name of the i-th except handler.
func HandlerName(i int) string { return fmt.Sprintf("handler[%d]", i) }

// IsHandler reports whether name is a handler sub-plan name.
func IsHandler(name string) bool { return strings.HasPrefix(name, "handler[") }

// Node is one unit of plan structure.
type Node struct {
	ID    int    `json:"id"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Line  int    `json:"line,omitempty"`

	// Warning is set on placeholder nodes for unmodeled statements.
	Warning string `json:"warning,omitempty"`
	// Synthetic marks nodes the builder created without a source statement.
	Synthetic bool `json:"synthetic,omitempty"`

	Children []SubPlan `json:"children,omitempty"`
}

// Child returns the named sub-plan, or nil.
func (n *Node) Child(name string) *Plan {
	for _, c := range n.Children {
		if c.Name == name {
			return c.Plan
		}
	}
	return nil
}

// Handlers returns the node's except handler sub-plans in source order.
func (n *Node) Handlers() []SubPlan {
	var out []SubPlan
	for _, c := range n.Children {
		if IsHandler(c.Name) {
			out = append(out, c)
		}
	}
	return out
}

// IsPlaceholder reports whether the node stands in for an unmodeled statement.
func (n *Node) IsPlaceholder() bool { return n.Warning != "" }

// SubPlan is a named nested region owned by a compound node.
type SubPlan struct {
	Name string `json:"name"`
	// Label is the except clause text for handlers.
	Label string `json:"label,omitempty"`
	Plan  *Plan  `json:"plan"`
}

// Plan is an ordered single-entry/single-exit sequence of nodes.
// Function and NextID are only set on the top-level plan.
type Plan struct {
	Function string  `json:"function,omitempty"`
	NextID   int     `json:"next_id,omitempty"`
	Nodes    []*Node `json:"nodes"`
}

// Entry returns the first node of the region, or nil when empty.
func (p *Plan) Entry() *Node {
	if p == nil || len(p.Nodes) == 0 {
		return nil
	}
	return p.Nodes[0]
}

// Walk visits every node in pre-order. depth is 0 for the plan's own
// nodes and grows by one per sub-plan. Returning false skips the node's
// sub-plans.
func (p *Plan) Walk(fn func(n *Node, depth int) bool) {
	p.walk(fn, 0)
}

func (p *Plan) walk(fn func(*Node, int) bool, depth int) {
	if p == nil {
		return
	}
	for _, n := range p.Nodes {
		if !fn(n, depth) {
			continue
		}
		for _, c := range n.Children {
			c.Plan.walk(fn, depth+1)
		}
	}
}

// Len returns the number of nodes in the plan, sub-plans included.
func (p *Plan) Len() int {
	n := 0
	p.Walk(func(*Node, int) bool { n++; return true })
	return n
}

// Find returns the node with the given id, or nil.
func (p *Plan) Find(id int) *Node {
	var found *Node
	p.Walk(func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
		}
		return found == nil
	})
	return found
}

// Count returns the number of nodes of kind k, sub-plans included.
func (p *Plan) Count(k Kind) int {
	n := 0
	p.Walk(func(node *Node, _ int) bool {
		if node.Kind == k {
			n++
		}
		return true
	})
	return n
}
