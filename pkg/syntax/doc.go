// Package syntax turns Python source into typed statement descriptors.
//
// # Overview
//
// The walker parses a whole Python file with tree-sitter, lists the
// functions it defines, and, for one selected function, returns an ordered
// list of [Stmt] descriptors. Each descriptor carries a [StmtKind], its
// source line, a collapsed one-line text, and the nested statement lists of
// compound statements (then/else bodies, loop bodies, try bodies and
// handlers).
//
// # Usage
//
//	f, err := syntax.Parse(ctx, src)
//	if err != nil {
//	    return err // PARSE_ERROR
//	}
//	defer f.Close()
//
//	sig, err := f.Select("")   // automatic selection
//	stmts := f.Body(sig)
//
// # Unmodeled Statements
//
// Statements the plan builder does not model (with, match, nested def or
// class) are still reported, as [KindOther] descriptors carrying the
// tree-sitter node type in [Stmt.NodeType]. The same happens for the
// else clause of a for or while loop, which is reported right after the
// loop.
//
// # Function Selection
//
// When no function is named, [SelectFunction] picks one from the
// candidates. It is a pure function over [Signature] values so it can be
// tested without parsing anything.
package syntax
