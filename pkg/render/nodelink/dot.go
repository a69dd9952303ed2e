package nodelink

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/plan"
)

// Options configures DOT generation.
type Options struct {
	// Rankdir is the Graphviz layout direction: TB (default), LR, BT or RL.
	Rankdir string

	// Detailed appends the source line to node labels.
	Detailed bool
}

// Rankdirs lists the accepted layout directions.
var Rankdirs = []string{"TB", "LR", "BT", "RL"}

// Palette is the set of fill colors nodes are drawn with.
var Palette = []string{
	"cornflowerblue",
	"lightcoral",
	"gold",
	"mediumseagreen",
	"orchid",
	"sandybrown",
	"plum",
	"turquoise",
	"khaki",
	"salmon",
}

// ColorFor returns a stable palette color for name: the SHA-256 digest of
// name, read as a big-endian integer, modulo the palette size.
func ColorFor(name string) string {
	sum := sha256.Sum256([]byte(name))
	idx := new(big.Int).Mod(new(big.Int).SetBytes(sum[:]), big.NewInt(int64(len(Palette))))
	return Palette[idx.Int64()]
}

// ToDOT converts a flattened graph to Graphviz DOT source.
//
// Nodes are filled by [ColorFor] of their kind, so every Call is drawn in
// the same color across exports. Anchors are drawn as points, conditions as
// diamonds, and placeholders with a dashed grey outline. Edges are styled
// by tag. The output is deterministic for a given graph and options.
func ToDOT(g *flow.Graph, opts Options) string {
	rankdir := strings.ToUpper(opts.Rankdir)
	if rankdir == "" {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := edgeAttrs(e.Tag)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flow.Node, detailed bool) string {
	label := n.Label
	switch n.Kind {
	case plan.Call:
		label = "CALL " + label
	case plan.Return:
		label = "RETURN " + label
	case plan.Raise:
		label = "RAISE " + label
	case plan.If, plan.While:
		label = strings.ToUpper(n.Kind.String()) + " " + label
	case plan.For:
		label = "FOR " + label
	case plan.TryExcept:
		label = "TRY"
	}
	label = strings.TrimSpace(label)
	if detailed && n.Line > 0 {
		label += fmt.Sprintf("\nline %d", n.Line)
	}
	return label
}

func nodeAttrs(n flow.Node, detailed bool) []string {
	if n.IsAnchor() {
		return []string{
			fmt.Sprintf("label=%q", ""),
			fmt.Sprintf("tooltip=%q", n.Label),
			"shape=point", "width=0.12",
		}
	}

	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", ColorFor(n.Kind.String())),
	}
	switch {
	case n.Warning != "":
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", fmt.Sprintf("tooltip=%q", n.Warning))
	case n.Kind == plan.Start || n.Kind == plan.End:
		attrs = append(attrs, "shape=oval")
	case n.Kind == plan.If || n.Kind == plan.While:
		attrs = append(attrs, "shape=diamond", "style=filled")
	case n.Synthetic:
		attrs = append(attrs, "style=\"rounded,filled,dotted\"")
	}
	return attrs
}

func edgeAttrs(tag flow.Tag) []string {
	switch tag {
	case flow.True:
		return []string{`label="true"`, "color=darkgreen"}
	case flow.False:
		return []string{`label="false"`, "color=firebrick"}
	case flow.LoopBody:
		return []string{`label="body"`}
	case flow.LoopExit:
		return []string{`label="exit"`}
	case flow.LoopBack:
		return []string{"style=dashed", "constraint=false", "color=gray40"}
	case flow.Exception:
		return []string{`label="exception"`, "style=dotted", "color=red"}
	}
	return nil
}
