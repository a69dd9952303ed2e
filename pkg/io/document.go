package io

import (
	"github.com/google/uuid"

	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// SchemaVersion is the version of the document format written by this
// package. Readers reject documents with any other version.
const SchemaVersion = 1

// Namespace is the UUID namespace plan ids are derived in.
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/py2plan"))

// Document is everything one run produces about a function.
type Document struct {
	PlanID    string
	Generator string
	Function  syntax.Signature
	Plan      *plan.Plan
	Graph     *flow.Graph
	Warnings  []plan.Warning
}

// NewDocument assembles a document and derives its plan id from the
// function name and the source text.
func NewDocument(sig syntax.Signature, src []byte, p *plan.Plan, g *flow.Graph, warnings []plan.Warning) *Document {
	return &Document{
		PlanID:   PlanID(sig.Name, src),
		Function: sig,
		Plan:     p,
		Graph:    g,
		Warnings: warnings,
	}
}

// PlanID returns a name-based (version 5) UUID for a function of a
// source file. The same function in the same source always gets the
// same id.
func PlanID(function string, src []byte) string {
	data := make([]byte, 0, len(function)+1+len(src))
	data = append(data, function...)
	data = append(data, 0)
	data = append(data, src...)
	return uuid.NewSHA1(Namespace, data).String()
}

// Wire format. Field names are shared by the JSON and YAML encodings.

type document struct {
	SchemaVersion int       `json:"schema_version" yaml:"schema_version"`
	PlanID        string    `json:"plan_id" yaml:"plan_id"`
	Generator     string    `json:"generator,omitempty" yaml:"generator,omitempty"`
	Function      function  `json:"function" yaml:"function"`
	NextID        int       `json:"next_id" yaml:"next_id"`
	Plan          []node    `json:"plan" yaml:"plan"`
	Graph         graph     `json:"graph" yaml:"graph"`
	Warnings      []warning `json:"warnings" yaml:"warnings"`
}

type function struct {
	Name       string   `json:"name" yaml:"name"`
	Line       int      `json:"line" yaml:"line"`
	Params     []string `json:"params" yaml:"params"`
	Async      bool     `json:"async,omitempty" yaml:"async,omitempty"`
	Method     bool     `json:"method,omitempty" yaml:"method,omitempty"`
	Statements int      `json:"statements" yaml:"statements"`
}

type node struct {
	ID        int       `json:"id" yaml:"id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Label     string    `json:"label" yaml:"label"`
	Line      int       `json:"line,omitempty" yaml:"line,omitempty"`
	Warning   string    `json:"warning,omitempty" yaml:"warning,omitempty"`
	Synthetic bool      `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Children  []subPlan `json:"children,omitempty" yaml:"children,omitempty"`
}

type subPlan struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Nodes []node `json:"nodes" yaml:"nodes"`
}

type graph struct {
	Nodes       []graphNode `json:"nodes" yaml:"nodes"`
	Edges       []edge      `json:"edges" yaml:"edges"`
	Unreachable []int       `json:"unreachable,omitempty" yaml:"unreachable,omitempty"`
}

type graphNode struct {
	ID        int    `json:"id" yaml:"id"`
	Kind      string `json:"kind" yaml:"kind"`
	Label     string `json:"label" yaml:"label"`
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	Warning   string `json:"warning,omitempty" yaml:"warning,omitempty"`
	Synthetic bool   `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

type edge struct {
	From int    `json:"from" yaml:"from"`
	To   int    `json:"to" yaml:"to"`
	Tag  string `json:"tag" yaml:"tag"`
}

type warning struct {
	NodeID    int    `json:"node_id" yaml:"node_id"`
	Line      int    `json:"line" yaml:"line"`
	Construct string `json:"construct" yaml:"construct"`
	Message   string `json:"message" yaml:"message"`
}

func toWire(doc *Document) document {
	out := document{
		SchemaVersion: SchemaVersion,
		PlanID:        doc.PlanID,
		Generator:     doc.Generator,
		Function: function{
			Name:       doc.Function.Name,
			Line:       doc.Function.Line,
			Params:     doc.Function.Params,
			Async:      doc.Function.Async,
			Method:     doc.Function.Method,
			Statements: doc.Function.Statements,
		},
		Warnings: make([]warning, len(doc.Warnings)),
	}
	if out.Function.Params == nil {
		out.Function.Params = []string{}
	}
	if doc.Plan != nil {
		out.NextID = doc.Plan.NextID
		out.Plan = nodesToWire(doc.Plan.Nodes)
	}
	if doc.Graph != nil {
		for _, n := range doc.Graph.Nodes() {
			out.Graph.Nodes = append(out.Graph.Nodes, graphNode{
				ID:        n.ID,
				Kind:      n.Kind.String(),
				Label:     n.Label,
				Line:      n.Line,
				Warning:   n.Warning,
				Synthetic: n.Synthetic,
			})
		}
		for _, e := range doc.Graph.Edges() {
			out.Graph.Edges = append(out.Graph.Edges, edge{From: e.From, To: e.To, Tag: string(e.Tag)})
		}
		out.Graph.Unreachable = doc.Graph.Unreachable()
	}
	for i, w := range doc.Warnings {
		out.Warnings[i] = warning(w)
	}
	return out
}

func nodesToWire(nodes []*plan.Node) []node {
	out := make([]node, len(nodes))
	for i, n := range nodes {
		nd := node{
			ID:        n.ID,
			Kind:      n.Kind.String(),
			Label:     n.Label,
			Line:      n.Line,
			Warning:   n.Warning,
			Synthetic: n.Synthetic,
		}
		for _, c := range n.Children {
			nd.Children = append(nd.Children, subPlan{
				Name:  c.Name,
				Label: c.Label,
				Nodes: nodesToWire(c.Plan.Nodes),
			})
		}
		out[i] = nd
	}
	return out
}
