package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingStart is returned by [Validate] when the plan does not
	// begin with a Start node.
	ErrMissingStart = errors.New("plan must begin with Start")

	// ErrMissingEnd is returned by [Validate] when the plan does not end
	// with an End node.
	ErrMissingEnd = errors.New("plan must end with End")

	// ErrMisplacedBoundary is returned when a Start or End node appears
	// anywhere other than the first or last top-level position.
	ErrMisplacedBoundary = errors.New("boundary node outside the top-level plan")

	// ErrDuplicateID is returned when two nodes share an id.
	ErrDuplicateID = errors.New("duplicate node id")

	// ErrIDOrder is returned when ids are not strictly increasing in
	// pre-order.
	ErrIDOrder = errors.New("node ids are not in pre-order")

	// ErrNextID is returned when NextID does not exceed every node id.
	ErrNextID = errors.New("next id overlaps node ids")

	// ErrEmptySubPlan is returned when a sub-plan has no nodes.
	ErrEmptySubPlan = errors.New("empty sub-plan")

	// ErrChildren is returned when a node's sub-plans do not match its kind.
	ErrChildren = errors.New("sub-plans do not match node kind")

	// ErrAnchorInPlan is returned when an Anchor node appears in a Plan.
	ErrAnchorInPlan = errors.New("anchor nodes only exist in flattened graphs")
)

// Validate checks the structural invariants of a top-level plan:
//
//  1. The plan begins with Start and ends with End, and neither kind
//     appears anywhere else.
//  2. Ids are unique and strictly increasing in pre-order, and NextID is
//     larger than all of them.
//  3. Every compound node owns non-empty sub-plans named for its kind;
//     leaf nodes own none.
//
// The returned error wraps one of the package's sentinel errors.
func Validate(p *Plan) error {
	if p == nil || len(p.Nodes) == 0 || p.Nodes[0].Kind != Start {
		return ErrMissingStart
	}
	last := p.Nodes[len(p.Nodes)-1]
	if last.Kind != End || len(p.Nodes) < 2 {
		return ErrMissingEnd
	}

	seen := make(map[int]bool)
	prev := -1
	var err error
	p.Walk(func(n *Node, depth int) bool {
		if err != nil {
			return false
		}
		switch {
		case seen[n.ID]:
			err = fmt.Errorf("%w: %d", ErrDuplicateID, n.ID)
		case n.ID <= prev:
			err = fmt.Errorf("%w: %d after %d", ErrIDOrder, n.ID, prev)
		case n.Kind == Anchor:
			err = fmt.Errorf("%w: node %d", ErrAnchorInPlan, n.ID)
		case (n.Kind == Start && n != p.Nodes[0]) || (n.Kind == End && n != last):
			err = fmt.Errorf("%w: node %d", ErrMisplacedBoundary, n.ID)
		default:
			err = checkChildren(n)
		}
		seen[n.ID] = true
		prev = n.ID
		return err == nil
	})
	if err != nil {
		return err
	}
	if p.NextID <= prev {
		return fmt.Errorf("%w: next %d, max %d", ErrNextID, p.NextID, prev)
	}
	return nil
}

func checkChildren(n *Node) error {
	for _, c := range n.Children {
		if c.Plan == nil || len(c.Plan.Nodes) == 0 {
			return fmt.Errorf("%w: %s of node %d", ErrEmptySubPlan, c.Name, n.ID)
		}
	}

	names := make([]string, len(n.Children))
	for i, c := range n.Children {
		names[i] = c.Name
	}

	ok := true
	switch n.Kind {
	case If:
		ok = len(names) == 2 && names[0] == SubThen && names[1] == SubElse
	case For, While:
		ok = len(names) == 1 && names[0] == SubBody
	case TryExcept:
		ok = validTryChildren(names)
	default:
		ok = len(names) == 0
	}
	if !ok {
		return fmt.Errorf("%w: %s node %d has %v", ErrChildren, n.Kind, n.ID, names)
	}
	return nil
}

// validTryChildren accepts try, handler[0..n), optional else, optional finally.
func validTryChildren(names []string) bool {
	if len(names) < 2 || names[0] != SubTry {
		return false
	}
	i := 1
	for h := 0; i < len(names) && IsHandler(names[i]); h++ {
		if names[i] != HandlerName(h) {
			return false
		}
		i++
	}
	handlers := i - 1
	if i < len(names) && names[i] == SubElse {
		if handlers == 0 {
			return false
		}
		i++
	}
	if i < len(names) && names[i] == SubFinally {
		i++
	}
	return i == len(names)
}
