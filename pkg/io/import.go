package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/py2plan/pkg/flow"
	"github.com/matzehuels/py2plan/pkg/plan"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

// ReadJSON decodes a document written by [WriteJSON].
//
// It rebuilds the nested plan and the flattened graph with the same node
// ids, kinds, labels, and edge tags. ReadJSON returns an error if:
//   - The JSON is malformed
//   - The schema version is not [SchemaVersion]
//   - A node kind or edge tag is unknown
//   - The graph has duplicate node ids or edges to unknown nodes
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if data.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d (want %d)", data.SchemaVersion, SchemaVersion)
	}

	nodes, err := nodesFromWire(data.Plan)
	if err != nil {
		return nil, err
	}
	doc := &Document{
		PlanID:    data.PlanID,
		Generator: data.Generator,
		Function: syntax.Signature{
			Name:       data.Function.Name,
			Line:       data.Function.Line,
			Params:     data.Function.Params,
			Async:      data.Function.Async,
			Method:     data.Function.Method,
			Statements: data.Function.Statements,
		},
		Plan: &plan.Plan{
			Function: data.Function.Name,
			NextID:   data.NextID,
			Nodes:    nodes,
		},
	}
	if len(doc.Function.Params) == 0 {
		doc.Function.Params = nil
	}

	g := flow.New()
	for _, n := range data.Graph.Nodes {
		kind, err := plan.ParseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("graph node %d: %w", n.ID, err)
		}
		if err := g.AddNode(flow.Node{ID: n.ID, Kind: kind, Label: n.Label, Line: n.Line, Warning: n.Warning, Synthetic: n.Synthetic}); err != nil {
			return nil, fmt.Errorf("graph node %d: %w", n.ID, err)
		}
	}
	for _, e := range data.Graph.Edges {
		tag := flow.Tag(e.Tag)
		if !tag.Valid() {
			return nil, fmt.Errorf("edge %d->%d: unknown tag %q", e.From, e.To, e.Tag)
		}
		if err := g.AddEdge(flow.Edge{From: e.From, To: e.To, Tag: tag}); err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", e.From, e.To, err)
		}
	}
	g.SetUnreachable(data.Graph.Unreachable)
	doc.Graph = g

	for _, w := range data.Warnings {
		doc.Warnings = append(doc.Warnings, plan.Warning(w))
	}
	return doc, nil
}

// ImportJSON reads a JSON document from the file at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func nodesFromWire(in []node) ([]*plan.Node, error) {
	out := make([]*plan.Node, len(in))
	for i, n := range in {
		kind, err := plan.ParseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("plan node %d: %w", n.ID, err)
		}
		pn := &plan.Node{
			ID:        n.ID,
			Kind:      kind,
			Label:     n.Label,
			Line:      n.Line,
			Warning:   n.Warning,
			Synthetic: n.Synthetic,
		}
		for _, c := range n.Children {
			children, err := nodesFromWire(c.Nodes)
			if err != nil {
				return nil, err
			}
			pn.Children = append(pn.Children, plan.SubPlan{
				Name:  c.Name,
				Label: c.Label,
				Plan:  &plan.Plan{Nodes: children},
			})
		}
		out[i] = pn
	}
	return out, nil
}
