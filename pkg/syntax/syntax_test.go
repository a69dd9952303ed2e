package syntax

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/py2plan/pkg/errors"
)

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(context.Background(), []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func bodyOf(t *testing.T, src, name string) []Stmt {
	t.Helper()
	f := mustParse(t, src)
	sig, err := f.Select(name)
	if err != nil {
		t.Fatalf("Select(%q): %v", name, err)
	}
	return f.Body(sig)
}

func kinds(stmts []Stmt) []StmtKind {
	out := make([]StmtKind, len(stmts))
	for i, s := range stmts {
		out[i] = s.Kind
	}
	return out
}

func equalKinds(a, b []StmtKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseError(t *testing.T) {
	_, err := Parse(context.Background(), []byte("def plan(:\n    return 1\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error %q does not mention the line", err)
	}
}

func TestParseSizeLimit(t *testing.T) {
	src := []byte("def plan():\n    return 1\n")
	_, err := Parse(context.Background(), src, WithMaxBytes(8))
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("err = %v, want PARSE_ERROR", err)
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("error %q does not mention the size", err)
	}
	if _, err := Parse(context.Background(), src, WithMaxBytes(0)); err != nil {
		t.Errorf("WithMaxBytes(0) should keep the default: %v", err)
	}
}

func TestFunctions(t *testing.T) {
	src := `
import functools

def helper(a, b=1):
    return a + b

@functools.cache
async def fetch(url):
    return await get(url)

class Pipeline:
    def run(self):
        step()

    @staticmethod
    def build(x: int) -> int:
        return x
`
	f := mustParse(t, src)
	got := f.Functions()
	want := []struct {
		name   string
		params int
		async  bool
		method bool
	}{
		{"helper", 2, false, false},
		{"fetch", 1, true, false},
		{"Pipeline.run", 1, false, true},
		{"Pipeline.build", 1, false, true},
	}
	if len(got) != len(want) {
		t.Fatalf("Functions() = %d, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Name != w.name || len(g.Params) != w.params || g.Async != w.async || g.Method != w.method {
			t.Errorf("function %d = %+v, want %+v", i, g, w)
		}
	}
	if got[1].Params[0] != "url" {
		t.Errorf("fetch params = %v", got[1].Params)
	}
	if got[3].Params[0] != "x" {
		t.Errorf("build params = %v, want [x]", got[3].Params)
	}
	if got[2].Arity() != 0 {
		t.Errorf("run arity = %d, want 0", got[2].Arity())
	}
}

func TestLookupNotFound(t *testing.T) {
	f := mustParse(t, "def plan():\n    pass\n")
	if _, err := f.Lookup("missing"); !errors.Is(err, errors.ErrCodeFunctionNotFound) {
		t.Errorf("Lookup(missing) = %v, want FUNCTION_NOT_FOUND", err)
	}
	empty := mustParse(t, "x = 1\n")
	if _, err := empty.Select(""); !errors.Is(err, errors.ErrCodeFunctionNotFound) {
		t.Errorf("Select on file without functions = %v, want FUNCTION_NOT_FOUND", err)
	}
}

func TestLookupRedefined(t *testing.T) {
	f := mustParse(t, "def plan():\n    first()\n\ndef plan():\n    second()\n    done()\n")
	sig, err := f.Lookup("plan")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if sig.Line != 4 {
		t.Errorf("Lookup(plan) line = %d, want the later definition at 4", sig.Line)
	}
	body := f.Body(sig)
	if len(body) != 2 || body[0].Callee != "second" {
		t.Errorf("Body = %+v, want the later definition", body)
	}
	if auto, _ := f.Select(""); auto.Line != 4 {
		t.Errorf("Select(\"\") line = %d, want 4", auto.Line)
	}
}

func TestBodySimpleStatements(t *testing.T) {
	src := `
def plan():
    """Docstring is skipped."""
    # comments are ignored
    import os
    setup()
    x = compute(1, 2)
    y += 1
    total = a + b
    await notify(x)
    value
    return x
`
	stmts := bodyOf(t, src, "plan")
	want := []StmtKind{KindPlain, KindCall, KindAssign, KindAssign, KindAssign, KindCall, KindPlain, KindReturn}
	if got := kinds(stmts); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}

	if stmts[1].Callee != "setup" {
		t.Errorf("call callee = %q", stmts[1].Callee)
	}
	if s := stmts[2]; s.Target != "x" || s.Callee != "compute" || s.Op != "=" {
		t.Errorf("assign = %+v", s)
	}
	if s := stmts[3]; s.Op != "+=" || s.Callee != "" {
		t.Errorf("augmented assign = %+v", s)
	}
	if s := stmts[4]; s.Value != "a + b" {
		t.Errorf("assign value = %q", s.Value)
	}
	if stmts[5].Callee != "notify" {
		t.Errorf("await callee = %q", stmts[5].Callee)
	}
	if stmts[7].Value != "x" || stmts[7].Line != 12 {
		t.Errorf("return = %+v", stmts[7])
	}
}

func TestBodyIfElifElse(t *testing.T) {
	src := `
def plan(x):
    if x > 0:
        a()
    elif x < 0:
        b()
    else:
        c()
    if ready:
        go()
`
	stmts := bodyOf(t, src, "plan")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements", len(stmts))
	}
	top := stmts[0]
	if top.Kind != KindIf || top.Cond != "x > 0" {
		t.Fatalf("top = %+v", top)
	}
	if len(top.Else) != 1 || top.Else[0].Kind != KindIf || top.Else[0].Cond != "x < 0" {
		t.Fatalf("elif not nested: %+v", top.Else)
	}
	if inner := top.Else[0]; len(inner.Else) != 1 || inner.Else[0].Callee != "c" {
		t.Errorf("final else = %+v", inner.Else)
	}
	if stmts[1].Else != nil {
		t.Errorf("if without else has Else = %+v", stmts[1].Else)
	}
}

func TestBodyLoops(t *testing.T) {
	src := `
async def plan(items):
    for i in range(n):
        do_something(i)
    async for row in cursor:
        handle(row)
    while queue:
        if done():
            break
        continue
    else:
        cleanup()
`
	stmts := bodyOf(t, src, "")
	want := []StmtKind{KindFor, KindFor, KindWhile, KindOther}
	if got := kinds(stmts); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if stmts[0].Cond != "i in range(n)" || len(stmts[0].Body) != 1 {
		t.Errorf("for = %+v", stmts[0])
	}
	if !stmts[1].Async {
		t.Error("async for not flagged")
	}
	if got := kinds(stmts[2].Body); !equalKinds(got, []StmtKind{KindIf, KindContinue}) {
		t.Errorf("while body = %v", got)
	}
	if stmts[3].NodeType != "else_clause" {
		t.Errorf("loop else = %+v", stmts[3])
	}
}

func TestBodyTry(t *testing.T) {
	src := `
def plan():
    try:
        risky()
    except ValueError as err:
        log(err)
    except:
        raise
    else:
        ok()
    finally:
        close()
`
	stmts := bodyOf(t, src, "plan")
	if len(stmts) != 1 || stmts[0].Kind != KindTry {
		t.Fatalf("stmts = %+v", stmts)
	}
	try := stmts[0]
	if len(try.Body) != 1 || try.Body[0].Callee != "risky" {
		t.Errorf("try body = %+v", try.Body)
	}
	if len(try.Handlers) != 2 {
		t.Fatalf("handlers = %+v", try.Handlers)
	}
	if try.Handlers[0].Exception != "ValueError as err" {
		t.Errorf("handler exception = %q", try.Handlers[0].Exception)
	}
	if try.Handlers[1].Exception != "" || try.Handlers[1].Body[0].Kind != KindRaise {
		t.Errorf("bare handler = %+v", try.Handlers[1])
	}
	if len(try.OrElse) != 1 || len(try.Finally) != 1 {
		t.Errorf("else/finally = %+v / %+v", try.OrElse, try.Finally)
	}
}

func TestBodyUnsupported(t *testing.T) {
	src := `
def plan():
    with open(path) as fh:
        read(fh)
    def inner():
        pass
    class Local:
        pass
`
	stmts := bodyOf(t, src, "plan")
	want := []string{"with_statement", "function_definition", "class_definition"}
	if len(stmts) != len(want) {
		t.Fatalf("got %d statements: %+v", len(stmts), stmts)
	}
	for i, typ := range want {
		if stmts[i].Kind != KindOther || stmts[i].NodeType != typ {
			t.Errorf("stmt %d = %v/%q, want other/%q", i, stmts[i].Kind, stmts[i].NodeType, typ)
		}
	}
}

func TestStmtKindString(t *testing.T) {
	if KindTry.String() != "try" || KindOther.String() != "other" {
		t.Errorf("String() = %q, %q", KindTry, KindOther)
	}
	if StmtKind(99).String() != "unknown" {
		t.Errorf("out of range kind = %q", StmtKind(99))
	}
	if !KindWhile.IsCompound() || KindCall.IsCompound() {
		t.Error("IsCompound mismatch")
	}
}
