package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Backend turns DOT source into SVG.
type Backend interface {
	Name() string
	RenderSVG(ctx context.Context, dot string) ([]byte, error)
}

// Engine names accepted by [NewBackend].
const (
	EngineGraphviz = "graphviz"
	EngineDot      = "dot"
)

// NewBackend returns the backend for an engine name. An empty name selects
// the embedded Graphviz renderer.
func NewBackend(engine string) (Backend, error) {
	switch strings.ToLower(engine) {
	case "", EngineGraphviz:
		return Graphviz{}, nil
	case EngineDot:
		return DotCommand{}, nil
	}
	return nil, fmt.Errorf("unknown render engine %q", engine)
}

// Graphviz renders in-process with the WebAssembly build of Graphviz.
// No system installation is needed.
type Graphviz struct{}

// Name returns "graphviz".
func (Graphviz) Name() string { return EngineGraphviz }

// RenderSVG renders dot to SVG.
func (Graphviz) RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// DotCommand renders by running the system dot binary.
type DotCommand struct {
	// Path is the dot executable. Empty means "dot" looked up on PATH.
	Path string
}

// Name returns "dot".
func (DotCommand) Name() string { return EngineDot }

// RenderSVG pipes dot through "dot -Tsvg". The process is killed when ctx
// is done.
func (d DotCommand) RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	path := d.Path
	if path == "" {
		path = "dot"
	}
	bin, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("svg export requires Graphviz. Install with:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz")
	}

	cmd := exec.CommandContext(ctx, bin, "-Tsvg")
	cmd.Stdin = strings.NewReader(dot)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dot: %v: %s", err, strings.TrimSpace(errBuf.String()))
	}
	return normalizeViewBox(out.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg element with one whose viewBox
// starts at the origin and whose size matches it, so the image scales
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	loc := svgTagRe.FindIndex(svg)
	out := make([]byte, 0, len(svg))
	out = append(out, svg[:loc[0]]...)
	out = append(out, root...)
	return append(out, svg[loc[1]:]...)
}
