// Package plan builds the nested execution plan of one function.
//
// # Overview
//
// A [Plan] is an ordered list of [Node] values. Compound nodes (If, For,
// While, TryExcept) own named sub-plans, each of which is again a Plan,
// so the whole structure is a tree with no shared children and no
// cycles. The one cycle a loop implies only exists later, as a tagged
// loop_back edge in the flattened graph produced by the flow package.
//
// # Building
//
// [Build] turns the statement descriptors of the syntax package into a
// Plan. Node ids come from a single counter owned by the build, issued in
// pre-order starting at 0: Start is always 0 and End is always the
// largest id. The same input always yields the same ids.
//
//	stmts := file.Body(sig)
//	p, warnings := plan.Build(sig.Name, stmts)
//
// Statements the builder does not model become placeholder Statement
// nodes labelled "<unsupported: TYPE>". Each one is reported as a
// [Warning] and the build carries on, so Build never fails.
//
// # Shape
//
// Sub-plan names are fixed per kind:
//
//   - If: "then" and "else". An if without else gets a synthetic "else"
//     holding one no-op "pass" node.
//   - For, While: "body".
//   - TryExcept: "try", then "handler[0]", "handler[1]", ... in source
//     order, then optional "else" and "finally".
//
// [Validate] checks these rules along with id uniqueness and order.
package plan
