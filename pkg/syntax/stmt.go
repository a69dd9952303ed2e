package syntax

// StmtKind classifies a statement descriptor.
type StmtKind int

const (
	KindPlain StmtKind = iota
	KindCall
	KindAssign
	KindReturn
	KindBreak
	KindContinue
	KindRaise
	KindIf
	KindFor
	KindWhile
	KindTry
	// KindOther marks a statement the builder does not model.
	KindOther
)

var kindNames = [...]string{
	KindPlain:    "plain",
	KindCall:     "call",
	KindAssign:   "assign",
	KindReturn:   "return",
	KindBreak:    "break",
	KindContinue: "continue",
	KindRaise:    "raise",
	KindIf:       "if",
	KindFor:      "for",
	KindWhile:    "while",
	KindTry:      "try",
	KindOther:    "other",
}

func (k StmtKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsCompound reports whether statements of this kind own nested bodies.
func (k StmtKind) IsCompound() bool {
	return k == KindIf || k == KindFor || k == KindWhile || k == KindTry
}

// Stmt is one statement of a function body.
//
// Which fields are set depends on Kind:
//
//	call     Callee
//	assign   Target, Op, Value, Callee (when the value is a call)
//	return   Value (may be empty)
//	raise    Value (may be empty for a bare re-raise)
//	if       Cond, Then, Else (Else is nil when there is no else or elif)
//	for      Cond ("i in range(n)"), Body, Async
//	while    Cond, Body
//	try      Body, Handlers, OrElse, Finally
//	other    NodeType
type Stmt struct {
	Kind StmtKind
	Line int
	Text string

	Callee string
	Target string
	Op     string
	Value  string
	Cond   string
	Async  bool

	NodeType string

	Then     []Stmt
	Else     []Stmt
	Body     []Stmt
	Handlers []Handler
	OrElse   []Stmt
	Finally  []Stmt
}

// Handler is one except clause of a try statement.
type Handler struct {
	// Exception is the text between "except" and the colon, e.g.
	// "ValueError as err". Empty for a bare except.
	Exception string
	Line      int
	Body      []Stmt
}

// Signature describes a candidate function.
type Signature struct {
	Name       string   `json:"name"`
	Line       int      `json:"line"`
	Params     []string `json:"params,omitempty"`
	Async      bool     `json:"async,omitempty"`
	Method     bool     `json:"method,omitempty"`
	Statements int      `json:"statements"`
}

// Arity returns the number of parameters, not counting a method's
// self or cls receiver.
func (s Signature) Arity() int {
	n := len(s.Params)
	if s.Method && n > 0 && (s.Params[0] == "self" || s.Params[0] == "cls") {
		n--
	}
	return n
}
