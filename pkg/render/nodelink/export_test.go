package nodelink

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/py2plan/pkg/cache"
	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/plan"
)

type fakeBackend struct {
	calls atomic.Int32
	svg   string
	err   error
	delay time.Duration
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.svg), nil
}

func TestExportSVGMemoized(t *testing.T) {
	_, g := loopGraph(t)
	b := &fakeBackend{svg: "<svg>graph</svg>"}
	e := NewExporter(b, cache.NewMemoryCache(), time.Second, Options{})

	for _, format := range []string{FormatSVG, FormatSVG} {
		out, err := e.Export(context.Background(), g, nil, format)
		if err != nil {
			t.Fatalf("Export(%s): %v", format, err)
		}
		if string(out) != "<svg>graph</svg>" {
			t.Errorf("Export(%s) = %q", format, out)
		}
	}
	if n := b.calls.Load(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestExportHTML(t *testing.T) {
	p, g := loopGraph(t)
	b := &fakeBackend{svg: "<svg><text>x &lt; y</text></svg>"}
	e := NewExporter(b, nil, time.Second, Options{})

	warnings := []plan.Warning{{NodeID: 7, Line: 6, Construct: "with_statement", Message: "unsupported construct with_statement"}}
	out, err := e.Export(context.Background(), g, p, FormatHTML, warnings...)
	if err != nil {
		t.Fatalf("Export(html): %v", err)
	}
	html := string(out)
	for _, want := range []string{
		"<!doctype html>",
		"<svg><text>x &lt; y</text></svg>",
		"FOR i in range(n)",
		"IF i &gt; 3",
		"line 6: unsupported construct with_statement",
		"<title>plan · py2plan</title>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestExportFailures(t *testing.T) {
	_, g := loopGraph(t)

	tests := []struct {
		name    string
		backend *fakeBackend
		timeout time.Duration
		format  string
	}{
		{"backend error", &fakeBackend{err: fmt.Errorf("boom")}, time.Second, FormatSVG},
		{"timeout", &fakeBackend{svg: "<svg/>", delay: time.Second}, 20 * time.Millisecond, FormatSVG},
		{"empty output", &fakeBackend{}, time.Second, FormatHTML},
		{"unknown format", &fakeBackend{svg: "<svg/>"}, time.Second, "pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExporter(tt.backend, nil, tt.timeout, Options{})
			_, err := e.Export(context.Background(), g, nil, tt.format)
			if !errors.Is(err, errors.ErrCodeExportFailed) {
				t.Errorf("Export() error = %v, want EXPORT_FAILED", err)
			}
		})
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		engine string
		want   string
		ok     bool
	}{
		{"", EngineGraphviz, true},
		{"graphviz", EngineGraphviz, true},
		{"DOT", EngineDot, true},
		{"neato", "", false},
	}
	for _, tt := range tests {
		b, err := NewBackend(tt.engine)
		if (err == nil) != tt.ok {
			t.Errorf("NewBackend(%q) error = %v", tt.engine, err)
			continue
		}
		if tt.ok && b.Name() != tt.want {
			t.Errorf("NewBackend(%q) = %s, want %s", tt.engine, b.Name(), tt.want)
		}
	}
}

func TestGraphvizBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping WASM render in short mode")
	}
	_, g := loopGraph(t)
	svg, err := Graphviz{}.RenderSVG(context.Background(), ToDOT(g, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("output is not svg: %.200s", svg)
	}
}

func TestDotCommandBackend(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("dot not found on PATH")
	}
	_, g := loopGraph(t)
	svg, err := DotCommand{}.RenderSVG(context.Background(), ToDOT(g, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "do_something") {
		t.Error("rendered svg missing node label")
	}
}

func TestDotCommandMissingBinary(t *testing.T) {
	_, err := DotCommand{Path: "py2plan-no-such-dot"}.RenderSVG(context.Background(), "digraph {}")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
