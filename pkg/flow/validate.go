package flow

import (
	"errors"
	"fmt"

	"github.com/matzehuels/py2plan/pkg/plan"
)

var (
	// ErrNoStart is returned by [Graph.Validate] when the graph has no
	// Start node.
	ErrNoStart = errors.New("graph has no Start node")

	// ErrMultipleStarts is returned when more than one Start node exists.
	ErrMultipleStarts = errors.New("graph has more than one Start node")

	// ErrStartHasPredecessor is returned when an edge leads into Start.
	ErrStartHasPredecessor = errors.New("start node has a predecessor")

	// ErrInvalidEdgeEndpoint is returned when an edge references a missing
	// node. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrInvalidTag is returned when an edge carries an unknown tag.
	ErrInvalidTag = errors.New("invalid edge tag")

	// ErrUnreachableNode is returned when a node cannot be reached from Start.
	ErrUnreachableNode = errors.New("node is unreachable from Start")

	// ErrLoopBack is returned when a loop_back edge targets something other
	// than a loop node, or a loop node has more than one.
	ErrLoopBack = errors.New("invalid loop_back edge")

	// ErrGraphHasCycle is returned when a cycle remains after removing
	// loop_back edges. Cycles are detected using depth-first search with
	// white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle that is not a loop_back edge")

	// ErrNoTerminal is returned when no End, Return, or Raise node is
	// reachable.
	ErrNoTerminal = errors.New("no terminal node is reachable")
)

// Validate checks graph integrity and returns nil if valid:
//
//  1. Exactly one Start node, without predecessors.
//  2. Every edge connects existing nodes and carries a known tag.
//  3. Every node is reachable from Start, so every node other than Start
//     has at least one incoming edge.
//  4. loop_back edges only target For and While nodes, at most one each.
//  5. Removing loop_back edges leaves an acyclic graph.
//  6. At least one terminal (End, Return, Raise) is reachable.
func (g *Graph) Validate() error {
	start, err := g.validateStart()
	if err != nil {
		return err
	}
	if err := g.validateEdges(); err != nil {
		return err
	}

	live := g.reachable(start)
	terminal := false
	for id, n := range g.nodes {
		if !live[id] {
			return fmt.Errorf("%w: %d", ErrUnreachableNode, id)
		}
		if n.IsTerminal() {
			terminal = true
		}
	}
	if !terminal {
		return ErrNoTerminal
	}
	return g.detectCycles()
}

func (g *Graph) validateStart() (int, error) {
	start, found := 0, false
	for id, n := range g.nodes {
		if n.Kind != plan.Start {
			continue
		}
		if found {
			return 0, ErrMultipleStarts
		}
		start, found = id, true
	}
	if !found {
		return 0, ErrNoStart
	}
	if len(g.incoming[start]) > 0 {
		return 0, ErrStartHasPredecessor
	}
	return start, nil
}

func (g *Graph) validateEdges() error {
	backs := make(map[int]int)
	for _, e := range g.edges {
		_, okS := g.nodes[e.From]
		dst, okD := g.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if !e.Tag.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidTag, e.Tag)
		}
		if e.Tag != LoopBack {
			continue
		}
		if !dst.Kind.IsLoop() {
			return fmt.Errorf("%w: target %d is %s", ErrLoopBack, e.To, dst.Kind)
		}
		backs[e.To]++
		if backs[e.To] > 1 {
			return fmt.Errorf("%w: loop %d has more than one", ErrLoopBack, e.To)
		}
	}
	return nil
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id int)
	dfs = func(id int) {
		color[id] = gray
		for _, idx := range g.outgoing[id] {
			e := g.edges[idx]
			if e.Tag == LoopBack {
				continue
			}
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				hasCycle = true
				return
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for id := range g.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
