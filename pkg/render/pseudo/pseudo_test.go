package pseudo

import (
	"testing"

	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

func TestRender(t *testing.T) {
	stmts := []syntax.Stmt{
		{Kind: syntax.KindAssign, Target: "items", Op: "=", Callee: "load", Value: "load()"},
		{Kind: syntax.KindIf, Cond: "not items", Then: []syntax.Stmt{{Kind: syntax.KindReturn}}},
		{Kind: syntax.KindFor, Cond: "item in items", Body: []syntax.Stmt{
			{Kind: syntax.KindIf, Cond: "item.skip", Then: []syntax.Stmt{{Kind: syntax.KindContinue}},
				Else: []syntax.Stmt{{Kind: syntax.KindCall, Callee: "handle"}}},
		}},
		{Kind: syntax.KindTry,
			Body: []syntax.Stmt{{Kind: syntax.KindCall, Callee: "commit"}},
			Handlers: []syntax.Handler{
				{Exception: "IOError as e", Body: []syntax.Stmt{{Kind: syntax.KindRaise, Value: "Failed(e)"}}},
				{Body: []syntax.Stmt{{Kind: syntax.KindRaise}}},
			},
			OrElse:  []syntax.Stmt{{Kind: syntax.KindPlain, Text: "pass"}},
			Finally: []syntax.Stmt{{Kind: syntax.KindCall, Callee: "close"}},
		},
		{Kind: syntax.KindWhile, Cond: "busy()", Body: []syntax.Stmt{{Kind: syntax.KindBreak}}},
		{Kind: syntax.KindOther, NodeType: "with_statement"},
		{Kind: syntax.KindReturn, Value: "items"},
	}
	p, _ := plan.Build("plan", stmts)

	want := `FUNCTION plan
  items = load()
  IF not items
    RETURN
  END IF
  FOR item in items
    IF item.skip
      CONTINUE
    ELSE
      CALL handle
    END IF
  END FOR
  TRY
    CALL commit
  EXCEPT IOError as e
    RAISE Failed(e)
  EXCEPT
    RAISE
  ELSE
    pass
  FINALLY
    CALL close
  END TRY
  WHILE busy()
    BREAK
  END WHILE
  <unsupported: with_statement>
  RETURN items
END FUNCTION
`
	if got := Render(p); got != want {
		t.Errorf("Render() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderIdempotent(t *testing.T) {
	p, _ := plan.Build("plan", []syntax.Stmt{
		{Kind: syntax.KindFor, Cond: "i in range(n)", Body: []syntax.Stmt{{Kind: syntax.KindCall, Callee: "do_something"}}},
	})
	first := Render(p)
	second := Render(p)
	if first != second {
		t.Errorf("Render is not idempotent:\n%s\n---\n%s", first, second)
	}
	if first[len(first)-1] != '\n' || first[len(first)-2] == '\n' {
		t.Errorf("output must end with exactly one newline: %q", first)
	}
}

func TestRenderEmptyBody(t *testing.T) {
	p, _ := plan.Build("noop", nil)
	if got, want := Render(p), "FUNCTION noop\nEND FUNCTION\n"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}
