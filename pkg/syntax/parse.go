package syntax

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/matzehuels/py2plan/pkg/errors"
)

// DefaultMaxBytes is the largest source file Parse accepts unless
// overridden with WithMaxBytes.
const DefaultMaxBytes = 1 << 20

type config struct {
	maxBytes int
}

// Option configures Parse.
type Option func(*config)

// WithMaxBytes sets the source size limit. Values <= 0 keep the default.
func WithMaxBytes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBytes = n
		}
	}
}

// File is a parsed Python source file.
type File struct {
	src   []byte
	tree  *sitter.Tree
	funcs []function
}

type function struct {
	sig  Signature
	body *sitter.Node
}

// Parse parses src as Python. It fails with a PARSE_ERROR pointing at the
// first syntax error, or when src exceeds the size limit.
func Parse(ctx context.Context, src []byte, opts ...Option) (*File, error) {
	cfg := config{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(src) > cfg.maxBytes {
		return nil, errors.New(errors.ErrCodeParse, "source too large (%d bytes, limit %d)", len(src), cfg.maxBytes)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse source")
	}

	root := tree.RootNode()
	if root.HasError() {
		defer tree.Close()
		return nil, syntaxError(root, src)
	}

	f := &File{src: src, tree: tree}
	f.collect(root)
	return f, nil
}

// Close releases the syntax tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Functions returns the candidate functions in source order: module-level
// functions and methods of module-level classes (named "Class.method").
func (f *File) Functions() []Signature {
	sigs := make([]Signature, len(f.funcs))
	for i, fn := range f.funcs {
		sigs[i] = fn.sig
	}
	return sigs
}

// Lookup finds a function by name. When a name is defined more than once
// the last definition wins, as it does at runtime. It fails with
// FUNCTION_NOT_FOUND.
func (f *File) Lookup(name string) (Signature, error) {
	for i := len(f.funcs) - 1; i >= 0; i-- {
		if sig := f.funcs[i].sig; sig.Name == name {
			return sig, nil
		}
	}
	return Signature{}, errors.New(errors.ErrCodeFunctionNotFound, "function %q not found", name)
}

// Select returns the named function, or the automatically selected one
// when name is empty.
func (f *File) Select(name string) (Signature, error) {
	if name != "" {
		return f.Lookup(name)
	}
	sig, ok := SelectFunction(f.Functions())
	if !ok {
		return Signature{}, errors.New(errors.ErrCodeFunctionNotFound, "no function definitions found")
	}
	return sig, nil
}

// Body returns the statement descriptors of the function's body.
// A leading docstring is skipped. Unknown signatures yield nil.
func (f *File) Body(sig Signature) []Stmt {
	for _, fn := range f.funcs {
		if fn.sig.Name == sig.Name && fn.sig.Line == sig.Line {
			w := walker{src: f.src}
			return w.block(fn.body, true)
		}
	}
	return nil
}

func (f *File) collect(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := unwrapDecorated(root.NamedChild(i))
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			f.addFunction(child, "", false)
		case "class_definition":
			class := f.text(child.ChildByFieldName("name"))
			body := child.ChildByFieldName("body")
			if body == nil {
				continue
			}
			for j := 0; j < int(body.NamedChildCount()); j++ {
				m := unwrapDecorated(body.NamedChild(j))
				if m != nil && m.Type() == "function_definition" {
					f.addFunction(m, class+".", true)
				}
			}
		}
	}
}

func (f *File) addFunction(n *sitter.Node, prefix string, method bool) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	sig := Signature{
		Name:   prefix + f.text(n.ChildByFieldName("name")),
		Line:   line(n),
		Params: f.params(n.ChildByFieldName("parameters")),
		Async:  n.ChildCount() > 0 && n.Child(0).Type() == "async",
		Method: method,
	}
	w := walker{src: f.src}
	sig.Statements = len(w.block(body, true))
	f.funcs = append(f.funcs, function{sig: sig, body: body})
}

func (f *File) params(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "comment", "positional_separator", "keyword_separator":
			continue
		}
		name := f.text(p)
		if idx := strings.IndexAny(name, ":="); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		out = append(out, name)
	}
	return out
}

func (f *File) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(f.src)
}

func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n != nil && n.Type() == "decorated_definition" {
		return n.ChildByFieldName("definition")
	}
	return n
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// syntaxError reports the first ERROR or MISSING node in pre-order.
func syntaxError(root *sitter.Node, src []byte) error {
	bad := firstError(root)
	if bad == nil {
		return errors.New(errors.ErrCodeParse, "invalid syntax")
	}
	col := int(bad.StartPoint().Column) + 1
	if bad.IsMissing() {
		return errors.New(errors.ErrCodeParse, "missing %q at column %d", bad.Type(), col).AtLine(line(bad))
	}
	near := collapse(bad.Content(src))
	if near == "" {
		return errors.New(errors.ErrCodeParse, "invalid syntax at column %d", col).AtLine(line(bad))
	}
	return errors.New(errors.ErrCodeParse, "invalid syntax at column %d near %q", col, truncate(near, 32)).AtLine(line(bad))
}

func firstError(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// collapse squeezes runs of whitespace (including newlines) into one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
