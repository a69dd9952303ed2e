package nodelink

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/matzehuels/py2plan/pkg/cache"
	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/observability"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/render/pseudo"
)

// Output formats produced by [Exporter.Export].
const (
	FormatSVG  = "svg"
	FormatHTML = "html"
)

// DefaultTimeout bounds a single export.
const DefaultTimeout = 30 * time.Second

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// Exporter renders flattened graphs through a [Backend].
//
// Rendered SVG is memoized by DOT source and backend name, so exporting
// both svg and html for the same graph renders once.
type Exporter struct {
	Backend Backend
	Cache   cache.Cache
	Timeout time.Duration
	Options Options
}

// NewExporter creates an exporter. A nil backend selects [Graphviz], a nil
// cache disables memoization, and a timeout of zero means [DefaultTimeout].
func NewExporter(b Backend, c cache.Cache, timeout time.Duration, opts Options) *Exporter {
	if b == nil {
		b = Graphviz{}
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Exporter{Backend: b, Cache: c, Timeout: timeout, Options: opts}
}

// Export renders g in the given format. The html format also embeds the
// pseudocode of p and its warnings.
//
// Every failure, including a timeout or an unknown format, is returned as
// an EXPORT_FAILED error.
func (e *Exporter) Export(ctx context.Context, g *flow.Graph, p *plan.Plan, format string, warnings ...plan.Warning) (out []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, format, e.Backend.Name())
	start := time.Now()
	defer func() {
		hooks.OnExportComplete(ctx, format, e.Backend.Name(), time.Since(start), err)
	}()

	switch format {
	case FormatSVG:
		return e.SVG(ctx, g)
	case FormatHTML:
		svg, err := e.SVG(ctx, g)
		if err != nil {
			return nil, err
		}
		return e.page(g, p, svg, warnings)
	}
	return nil, errors.New(errors.ErrCodeExportFailed, "unsupported export format %q", format)
}

// SVG renders g to SVG, bounded by the exporter's timeout.
func (e *Exporter) SVG(ctx context.Context, g *flow.Graph) ([]byte, error) {
	dot := ToDOT(g, e.Options)
	key := cache.Key("svg", dot, e.Backend.Name())

	if data, hit, err := e.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, FormatSVG)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, FormatSVG)

	svg, err := e.render(ctx, dot)
	if err != nil {
		return nil, err
	}
	if err := e.Cache.Set(ctx, key, svg, cache.TTLRender); err == nil {
		observability.Cache().OnCacheSet(ctx, FormatSVG, len(svg))
	}
	return svg, nil
}

type renderResult struct {
	svg []byte
	err error
}

func (e *Exporter) render(ctx context.Context, dot string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	done := make(chan renderResult, 1)
	go func() {
		svg, err := e.Backend.RenderSVG(ctx, dot)
		done <- renderResult{svg, err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeExportFailed, ctx.Err(), "%s backend did not finish within %s", e.Backend.Name(), e.Timeout)
	case r := <-done:
		if r.err != nil {
			return nil, errors.Wrap(errors.ErrCodeExportFailed, r.err, "%s backend failed", e.Backend.Name())
		}
		if len(r.svg) == 0 {
			return nil, errors.New(errors.ErrCodeExportFailed, "%s backend produced no output", e.Backend.Name())
		}
		return r.svg, nil
	}
}

type pageData struct {
	Function string
	Nodes    int
	Edges    int
	SVG      template.HTML
	Pseudo   string
	Warnings []plan.Warning
}

func (e *Exporter) page(g *flow.Graph, p *plan.Plan, svg []byte, warnings []plan.Warning) ([]byte, error) {
	data := pageData{
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
		SVG:      template.HTML(svg),
		Warnings: warnings,
	}
	if p != nil {
		data.Function = p.Function
		data.Pseudo = pseudo.Render(p)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, err, "html template")
	}
	return buf.Bytes(), nil
}

// String implements fmt.Stringer for log output.
func (e *Exporter) String() string {
	return fmt.Sprintf("%s (timeout %s)", e.Backend.Name(), e.Timeout)
}
