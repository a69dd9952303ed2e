package plan

import (
	"fmt"
	"strings"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// DefaultMaxLabel is the default label length in runes.
const DefaultMaxLabel = 48

// Warning reports a statement that was replaced by a placeholder node.
type Warning struct {
	NodeID    int    `json:"node_id"`
	Line      int    `json:"line"`
	Construct string `json:"construct"`
	Message   string `json:"message"`
}

// Err returns the warning as an UNSUPPORTED_CONSTRUCT error.
func (w Warning) Err() error {
	return errors.New(errors.ErrCodeUnsupportedConstruct, "%s", w.Message).AtLine(w.Line)
}

// BuildOption configures Build.
type BuildOption func(*builder)

// WithMaxLabel sets the label length limit in runes. Values below 8 are
// ignored.
func WithMaxLabel(n int) BuildOption {
	return func(b *builder) {
		if n >= 8 {
			b.maxLabel = n
		}
	}
}

// WithStartLine records the line of the function definition on Start.
func WithStartLine(line int) BuildOption {
	return func(b *builder) { b.startLine = line }
}

// builder is the state of a single build: the id counter, collected
// warnings, and how many loops enclose the current statement.
type builder struct {
	next      int
	warnings  []Warning
	loopDepth int
	maxLabel  int
	startLine int
}

// Build converts the body of function fn into a Plan.
//
// The returned plan starts with a Start node, ends with an End node, and
// satisfies Validate. Unmodeled statements are returned as warnings.
func Build(fn string, stmts []syntax.Stmt, opts ...BuildOption) (*Plan, []Warning) {
	b := &builder{maxLabel: DefaultMaxLabel}
	for _, opt := range opts {
		opt(b)
	}

	p := &Plan{Function: fn}
	start := b.node(Start, fn, b.startLine)
	start.Synthetic = true
	p.Nodes = append(p.Nodes, start)
	p.Nodes = append(p.Nodes, b.sequence(stmts)...)
	end := b.node(End, "end", 0)
	end.Synthetic = true
	p.Nodes = append(p.Nodes, end)
	p.NextID = b.next
	return p, b.warnings
}

func (b *builder) node(kind Kind, label string, line int) *Node {
	n := &Node{ID: b.next, Kind: kind, Label: b.label(label), Line: line}
	b.next++
	return n
}

func (b *builder) sequence(stmts []syntax.Stmt) []*Node {
	nodes := make([]*Node, 0, len(stmts))
	for _, s := range stmts {
		nodes = append(nodes, b.stmt(s))
	}
	return nodes
}

// sub builds a sub-plan. An empty statement list yields a single no-op so
// every sub-plan has an entry.
func (b *builder) sub(stmts []syntax.Stmt) *Plan {
	if len(stmts) == 0 {
		return &Plan{Nodes: []*Node{b.pass()}}
	}
	return &Plan{Nodes: b.sequence(stmts)}
}

func (b *builder) pass() *Node {
	n := b.node(Statement, "pass", 0)
	n.Synthetic = true
	return n
}

func (b *builder) stmt(s syntax.Stmt) *Node {
	switch s.Kind {
	case syntax.KindPlain:
		return b.node(Statement, s.Text, s.Line)
	case syntax.KindCall:
		return b.node(Call, firstNonEmpty(s.Callee, s.Text), s.Line)
	case syntax.KindAssign:
		return b.node(Assign, assignLabel(s), s.Line)
	case syntax.KindReturn:
		return b.node(Return, s.Value, s.Line)
	case syntax.KindRaise:
		return b.node(Raise, s.Value, s.Line)
	case syntax.KindBreak:
		if b.loopDepth == 0 {
			return b.placeholder("break_statement", s.Line, "break outside loop")
		}
		return b.node(Break, "break", s.Line)
	case syntax.KindContinue:
		if b.loopDepth == 0 {
			return b.placeholder("continue_statement", s.Line, "continue outside loop")
		}
		return b.node(Continue, "continue", s.Line)
	case syntax.KindIf:
		return b.ifNode(s)
	case syntax.KindFor:
		return b.loopNode(For, s)
	case syntax.KindWhile:
		return b.loopNode(While, s)
	case syntax.KindTry:
		return b.tryNode(s)
	case syntax.KindOther:
		return b.placeholder(s.NodeType, s.Line, "")
	default:
		return b.placeholder(s.Kind.String(), s.Line, "")
	}
}

func (b *builder) ifNode(s syntax.Stmt) *Node {
	n := b.node(If, s.Cond, s.Line)
	then := b.sub(s.Then)
	var els *Plan
	if len(s.Else) > 0 {
		els = b.sub(s.Else)
	} else {
		els = &Plan{Nodes: []*Node{b.pass()}}
	}
	n.Children = []SubPlan{
		{Name: SubThen, Plan: then},
		{Name: SubElse, Plan: els},
	}
	return n
}

func (b *builder) loopNode(kind Kind, s syntax.Stmt) *Node {
	n := b.node(kind, s.Cond, s.Line)
	b.loopDepth++
	body := b.sub(s.Body)
	b.loopDepth--
	n.Children = []SubPlan{{Name: SubBody, Plan: body}}
	return n
}

func (b *builder) tryNode(s syntax.Stmt) *Node {
	n := b.node(TryExcept, "try", s.Line)
	n.Children = append(n.Children, SubPlan{Name: SubTry, Plan: b.sub(s.Body)})
	for i, h := range s.Handlers {
		n.Children = append(n.Children, SubPlan{
			Name:  HandlerName(i),
			Label: b.label(firstNonEmpty(h.Exception, "except")),
			Plan:  b.sub(h.Body),
		})
	}
	if len(s.OrElse) > 0 {
		n.Children = append(n.Children, SubPlan{Name: SubElse, Plan: b.sub(s.OrElse)})
	}
	if len(s.Finally) > 0 {
		n.Children = append(n.Children, SubPlan{Name: SubFinally, Plan: b.sub(s.Finally)})
	}
	return n
}

// placeholder stands in for a statement the builder does not model.
func (b *builder) placeholder(construct string, line int, detail string) *Node {
	if construct == "" {
		construct = "statement"
	}
	n := &Node{
		ID:    b.next,
		Kind:  Statement,
		Label: fmt.Sprintf("<unsupported: %s>", construct),
		Line:  line,
	}
	b.next++

	msg := fmt.Sprintf("unsupported construct %s", construct)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	n.Warning = msg
	b.warnings = append(b.warnings, Warning{
		NodeID:    n.ID,
		Line:      line,
		Construct: construct,
		Message:   msg,
	})
	return n
}

// label collapses whitespace and truncates to the label limit.
func (b *builder) label(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= b.maxLabel {
		return s
	}
	return string(r[:b.maxLabel-1]) + "…"
}

func assignLabel(s syntax.Stmt) string {
	op := firstNonEmpty(s.Op, "=")
	switch {
	case s.Target == "":
		return s.Text
	case s.Callee != "":
		return s.Target + " " + op + " " + s.Callee + "()"
	case s.Value != "":
		return s.Target + " " + op + " " + s.Value
	default:
		return s.Text
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
