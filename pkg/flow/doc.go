// Package flow flattens a nested plan into one node/edge graph.
//
// # Overview
//
// Renderers want a flat list of nodes and tagged edges, not a tree of
// sub-plans. [Flatten] walks a [plan.Plan] and wires every region with
// pending ("dangling") edges: each region receives the edges waiting
// for its entry and hands back the edges leaving it. Sequences simply
// chain; branches and loops decide how their exits converge.
//
// # Edge Tags
//
//   - seq: fall through to the next region
//   - true, false: the two branches of an If
//   - loop_body: from a loop node into its body
//   - loop_exit: out of a loop, from the loop node or a break
//   - loop_back: the single edge that returns to a loop node
//   - exception: from a node that may raise to a handler, or from an
//     uncaught raise to End
//
// loop_back is the only kind of edge that closes a cycle. Removing all
// loop_back edges leaves a DAG, which [Graph.Validate] checks.
//
// # Anchors
//
// When two or more pending edges must meet, the flattener adds an Anchor
// node: a "merge" after an If or try, a "latch" in front of the loop_back
// edge, or a "loop exit" joining breaks with the loop's normal exit. A
// single pending edge is passed through without an anchor. A "finally
// exit" collects the exits of a finally block that jumps pass through.
// Anchor ids
// start at the plan's NextID, so node ids stay unique across the nested
// and the flattened view.
//
// # Finally Blocks
//
// A return, an uncaught raise, or a break or continue that leaves a try
// statement with a finally block enters the finally block first. The
// jump is issued again from the block's exit, so nested finally blocks
// run innermost first.
//
// # Dead Code
//
// Statements after a return, raise, break, or continue have no incoming
// edge. They are removed from the graph and reported by
// [Graph.Unreachable].
package flow
