package syntax

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Simple statements modeled as plain statements.
var plainStatements = map[string]bool{
	"pass_statement":          true,
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
	"assert_statement":        true,
	"delete_statement":        true,
	"global_statement":        true,
	"nonlocal_statement":      true,
	"print_statement":         true,
	"exec_statement":          true,
	"type_alias_statement":    true,
}

type walker struct {
	src []byte
}

// block converts the named children of a block node into descriptors.
func (w walker) block(n *sitter.Node, skipDocstring bool) []Stmt {
	if n == nil {
		return nil
	}
	var out []Stmt
	first := true
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if first && skipDocstring && isDocstring(child) {
			first = false
			continue
		}
		first = false
		out = append(out, w.stmt(child)...)
	}
	return out
}

// stmt converts one statement node. Loops with an else clause yield two
// descriptors.
func (w walker) stmt(n *sitter.Node) []Stmt {
	s := Stmt{Line: line(n), Text: w.text(n)}

	switch t := n.Type(); t {
	case "expression_statement":
		w.expression(n, &s)
	case "return_statement":
		s.Kind = KindReturn
		s.Value = keywordOperand(s.Text, "return")
	case "raise_statement":
		s.Kind = KindRaise
		s.Value = keywordOperand(s.Text, "raise")
	case "break_statement":
		s.Kind = KindBreak
	case "continue_statement":
		s.Kind = KindContinue
	case "if_statement":
		return []Stmt{w.ifStmt(n)}
	case "for_statement":
		s.Kind = KindFor
		s.Async = n.ChildCount() > 0 && n.Child(0).Type() == "async"
		s.Cond = w.text(n.ChildByFieldName("left")) + " in " + w.text(n.ChildByFieldName("right"))
		s.Text = s.Cond
		s.Body = w.block(n.ChildByFieldName("body"), false)
		return w.withLoopElse(s, n)
	case "while_statement":
		s.Kind = KindWhile
		s.Cond = w.text(n.ChildByFieldName("condition"))
		s.Text = s.Cond
		s.Body = w.block(n.ChildByFieldName("body"), false)
		return w.withLoopElse(s, n)
	case "try_statement":
		w.tryStmt(n, &s)
	default:
		if plainStatements[t] {
			s.Kind = KindPlain
		} else {
			s.Kind = KindOther
			s.NodeType = t
		}
	}
	return []Stmt{s}
}

func (w walker) expression(n *sitter.Node, s *Stmt) {
	s.Kind = KindPlain
	if n.NamedChildCount() != 1 {
		return
	}
	expr := n.NamedChild(0)
	switch expr.Type() {
	case "assignment", "augmented_assignment":
		s.Kind = KindAssign
		s.Target = w.text(expr.ChildByFieldName("left"))
		s.Op = "="
		if op := expr.ChildByFieldName("operator"); op != nil {
			s.Op = w.text(op)
		}
		right := expr.ChildByFieldName("right")
		s.Value = w.text(right)
		if call := asCall(right); call != nil {
			s.Callee = w.text(call.ChildByFieldName("function"))
		}
	default:
		if call := asCall(expr); call != nil {
			s.Kind = KindCall
			s.Callee = w.text(call.ChildByFieldName("function"))
		}
	}
}

// ifStmt builds an if descriptor. An elif chain becomes a nested if in
// the else list.
func (w walker) ifStmt(n *sitter.Node) Stmt {
	s := Stmt{
		Kind: KindIf,
		Line: line(n),
		Cond: w.text(n.ChildByFieldName("condition")),
		Then: w.block(n.ChildByFieldName("consequence"), false),
	}
	s.Text = s.Cond

	var alts []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "elif_clause" || c.Type() == "else_clause" {
			alts = append(alts, c)
		}
	}
	s.Else = w.elseChain(alts)
	return s
}

func (w walker) elseChain(alts []*sitter.Node) []Stmt {
	if len(alts) == 0 {
		return nil
	}
	a := alts[0]
	if a.Type() == "else_clause" {
		return w.block(a.ChildByFieldName("body"), false)
	}
	elif := Stmt{
		Kind: KindIf,
		Line: line(a),
		Cond: w.text(a.ChildByFieldName("condition")),
		Then: w.block(a.ChildByFieldName("consequence"), false),
		Else: w.elseChain(alts[1:]),
	}
	elif.Text = elif.Cond
	return []Stmt{elif}
}

func (w walker) withLoopElse(s Stmt, n *sitter.Node) []Stmt {
	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return []Stmt{s}
	}
	return []Stmt{s, {
		Kind:     KindOther,
		Line:     line(alt),
		Text:     "else",
		NodeType: "else_clause",
	}}
}

func (w walker) tryStmt(n *sitter.Node, s *Stmt) {
	s.Kind = KindTry
	s.Text = "try"
	s.Body = w.block(n.ChildByFieldName("body"), false)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "except_clause", "except_group_clause", "exception_handler":
			s.Handlers = append(s.Handlers, Handler{
				Exception: w.exceptText(c),
				Line:      line(c),
				Body:      w.block(childOfType(c, "block"), false),
			})
		case "else_clause":
			s.OrElse = w.block(c.ChildByFieldName("body"), false)
		case "finally_clause":
			s.Finally = w.block(childOfType(c, "block"), false)
		}
	}
}

// exceptText returns the clause header between the except keyword and
// the colon.
func (w walker) exceptText(c *sitter.Node) string {
	var parts []string
	for i := 0; i < int(c.ChildCount()); i++ {
		child := c.Child(i)
		switch child.Type() {
		case "except", "except*", ":", "block", "comment":
			continue
		}
		parts = append(parts, w.text(child))
	}
	return collapse(strings.Join(parts, " "))
}

func (w walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return collapse(n.Content(w.src))
}

// asCall returns the call node of an expression, looking through await.
func asCall(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "await" && n.NamedChildCount() > 0 {
		n = n.NamedChild(0)
	}
	if n.Type() == "call" {
		return n
	}
	return nil
}

func isDocstring(n *sitter.Node) bool {
	return n.Type() == "expression_statement" &&
		n.NamedChildCount() == 1 &&
		n.NamedChild(0).Type() == "string"
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func keywordOperand(text, keyword string) string {
	return strings.TrimSpace(strings.TrimPrefix(text, keyword))
}
