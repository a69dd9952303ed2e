package flow

import (
	"errors"
	"slices"

	"github.com/matzehuels/py2plan/pkg/plan"
)

var (
	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same id already exists.
	ErrDuplicateNodeID = errors.New("duplicate node id")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Tag labels the control transfer an edge represents.
type Tag string

const (
	Seq       Tag = "seq"
	True      Tag = "true"
	False     Tag = "false"
	LoopBody  Tag = "loop_body"
	LoopExit  Tag = "loop_exit"
	LoopBack  Tag = "loop_back"
	Exception Tag = "exception"
)

// Tags lists every edge tag.
var Tags = []Tag{Seq, True, False, LoopBody, LoopExit, LoopBack, Exception}

// Valid reports whether t is one of the known tags.
func (t Tag) Valid() bool { return slices.Contains(Tags, t) }

// Anchor labels.
const (
	AnchorMerge    = "merge"
	AnchorLatch    = "latch"
	AnchorLoopExit = "loop exit"
	AnchorFinally  = "finally exit"
)

// Node is a vertex of the flattened graph. Plan nodes keep their plan id;
// anchors get ids from the plan's NextID upward.
type Node struct {
	ID        int       `json:"id"`
	Kind      plan.Kind `json:"kind"`
	Label     string    `json:"label"`
	Line      int       `json:"line,omitempty"`
	Synthetic bool      `json:"synthetic,omitempty"`
	Warning   string    `json:"warning,omitempty"`
}

// IsAnchor reports whether the node was synthesized by the flattener.
func (n Node) IsAnchor() bool { return n.Kind == plan.Anchor }

// IsTerminal reports whether the node ends a control path.
func (n Node) IsTerminal() bool {
	return n.Kind == plan.End || n.Kind == plan.Return || n.Kind == plan.Raise
}

// Edge is a directed, tagged control transfer.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
	Tag  Tag `json:"tag"`
}

// Graph is the flattened single-entry/single-exit view of a plan.
//
// The zero value is not usable; graphs come from [Flatten] or [New].
// Graph is not safe for concurrent modification.
type Graph struct {
	nodes    map[int]*Node
	edges    []Edge
	edgeSet  map[Edge]bool
	outgoing map[int][]int // node id -> edge indices
	incoming map[int][]int

	unreachable []int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[int]*Node),
		edgeSet:  make(map[Edge]bool),
		outgoing: make(map[int][]int),
		incoming: make(map[int][]int),
	}
}

// AddNode adds a node. Returns ErrDuplicateNodeID if the id is taken.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n
	g.nodes[n.ID] = &node
	return nil
}

// AddEdge adds an edge between existing nodes. Adding an edge that
// already exists with the same tag is a no-op.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if g.edgeSet[e] {
		return nil
	}
	g.edgeSet[e] = true
	g.edges = append(g.edges, e)
	idx := len(g.edges) - 1
	g.outgoing[e.From] = append(g.outgoing[e.From], idx)
	g.incoming[e.To] = append(g.incoming[e.To], idx)
	return nil
}

// Node returns the node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns all nodes sorted by id.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	slices.SortFunc(out, func(a, b Node) int { return a.ID - b.ID })
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Out returns the outgoing edges of a node.
func (g *Graph) Out(id int) []Edge {
	out := make([]Edge, len(g.outgoing[id]))
	for i, idx := range g.outgoing[id] {
		out[i] = g.edges[idx]
	}
	return out
}

// In returns the incoming edges of a node.
func (g *Graph) In(id int) []Edge {
	in := make([]Edge, len(g.incoming[id]))
	for i, idx := range g.incoming[id] {
		in[i] = g.edges[idx]
	}
	return in
}

// InDegree returns the number of incoming edges.
func (g *Graph) InDegree(id int) int { return len(g.incoming[id]) }

// OutDegree returns the number of outgoing edges.
func (g *Graph) OutDegree(id int) int { return len(g.outgoing[id]) }

// Unreachable returns the ids of plan nodes removed because no path from
// Start reaches them.
func (g *Graph) Unreachable() []int { return slices.Clone(g.unreachable) }

// Count returns the number of nodes of kind k.
func (g *Graph) Count(k plan.Kind) int {
	n := 0
	for _, node := range g.nodes {
		if node.Kind == k {
			n++
		}
	}
	return n
}

// Start returns the Start node.
func (g *Graph) Start() (Node, bool) {
	for _, n := range g.nodes {
		if n.Kind == plan.Start {
			return *n, true
		}
	}
	return Node{}, false
}

// reachable returns the set of node ids reachable from id.
func (g *Graph) reachable(id int) map[int]bool {
	seen := map[int]bool{id: true}
	stack := []int{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, idx := range g.outgoing[cur] {
			to := g.edges[idx].To
			if !seen[to] {
				seen[to] = true
				stack = append(stack, to)
			}
		}
	}
	return seen
}

// prune removes every node not reachable from start, along with its
// edges. Removed plan node ids are recorded as unreachable.
func (g *Graph) prune(start int) {
	live := g.reachable(start)
	if len(live) == len(g.nodes) {
		return
	}

	var dead []int
	for id, n := range g.nodes {
		if !live[id] {
			if !n.IsAnchor() {
				dead = append(dead, id)
			}
			delete(g.nodes, id)
		}
	}
	slices.Sort(dead)
	g.unreachable = append(g.unreachable, dead...)

	edges := g.edges
	g.edges = nil
	g.edgeSet = make(map[Edge]bool)
	g.outgoing = make(map[int][]int)
	g.incoming = make(map[int][]int)
	for _, e := range edges {
		if live[e.From] && live[e.To] {
			_ = g.AddEdge(e)
		}
	}
}

// SetUnreachable records ids of plan nodes that were pruned. It is used
// when a graph is reconstructed from a document.
func (g *Graph) SetUnreachable(ids []int) {
	g.unreachable = slices.Clone(ids)
	slices.Sort(g.unreachable)
}
