package plan

import (
	"errors"
	"testing"
)

func leaf(id int, kind Kind) *Node { return &Node{ID: id, Kind: kind} }

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		plan *Plan
		want error
	}{
		{
			name: "valid",
			plan: &Plan{NextID: 3, Nodes: []*Node{leaf(0, Start), leaf(1, Call), leaf(2, End)}},
		},
		{
			name: "nil",
			plan: nil,
			want: ErrMissingStart,
		},
		{
			name: "no start",
			plan: &Plan{NextID: 2, Nodes: []*Node{leaf(0, Call), leaf(1, End)}},
			want: ErrMissingStart,
		},
		{
			name: "no end",
			plan: &Plan{NextID: 2, Nodes: []*Node{leaf(0, Start), leaf(1, Call)}},
			want: ErrMissingEnd,
		},
		{
			name: "duplicate id",
			plan: &Plan{NextID: 3, Nodes: []*Node{leaf(0, Start), leaf(0, Call), leaf(2, End)}},
			want: ErrDuplicateID,
		},
		{
			name: "out of order",
			plan: &Plan{NextID: 4, Nodes: []*Node{leaf(0, Start), leaf(2, Call), leaf(1, Call), leaf(3, End)}},
			want: ErrIDOrder,
		},
		{
			name: "next id too small",
			plan: &Plan{NextID: 2, Nodes: []*Node{leaf(0, Start), leaf(1, Call), leaf(2, End)}},
			want: ErrNextID,
		},
		{
			name: "anchor",
			plan: &Plan{NextID: 3, Nodes: []*Node{leaf(0, Start), leaf(1, Anchor), leaf(2, End)}},
			want: ErrAnchorInPlan,
		},
		{
			name: "nested start",
			plan: &Plan{NextID: 4, Nodes: []*Node{
				leaf(0, Start),
				{ID: 1, Kind: While, Children: []SubPlan{{Name: SubBody, Plan: &Plan{Nodes: []*Node{leaf(2, Start)}}}}},
				leaf(3, End),
			}},
			want: ErrMisplacedBoundary,
		},
		{
			name: "empty body",
			plan: &Plan{NextID: 3, Nodes: []*Node{
				leaf(0, Start),
				{ID: 1, Kind: For, Children: []SubPlan{{Name: SubBody, Plan: &Plan{}}}},
				leaf(2, End),
			}},
			want: ErrEmptySubPlan,
		},
		{
			name: "if missing else",
			plan: &Plan{NextID: 4, Nodes: []*Node{
				leaf(0, Start),
				{ID: 1, Kind: If, Children: []SubPlan{{Name: SubThen, Plan: &Plan{Nodes: []*Node{leaf(2, Call)}}}}},
				leaf(3, End),
			}},
			want: ErrChildren,
		},
		{
			name: "leaf with children",
			plan: &Plan{NextID: 4, Nodes: []*Node{
				leaf(0, Start),
				{ID: 1, Kind: Call, Children: []SubPlan{{Name: SubBody, Plan: &Plan{Nodes: []*Node{leaf(2, Call)}}}}},
				leaf(3, End),
			}},
			want: ErrChildren,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.plan)
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidTryChildren(t *testing.T) {
	tests := []struct {
		names []string
		want  bool
	}{
		{[]string{"try", "handler[0]"}, true},
		{[]string{"try", "handler[0]", "handler[1]", "else", "finally"}, true},
		{[]string{"try", "finally"}, true},
		{[]string{"try"}, false},
		{[]string{"try", "else"}, false},
		{[]string{"try", "handler[1]"}, false},
		{[]string{"handler[0]", "try"}, false},
		{[]string{"try", "handler[0]", "finally", "else"}, false},
	}
	for _, tt := range tests {
		if got := validTryChildren(tt.names); got != tt.want {
			t.Errorf("validTryChildren(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestKindText(t *testing.T) {
	for k := Start; k <= Anchor; k++ {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", k, err)
		}
		var got Kind
		if err := got.UnmarshalText(b); err != nil || got != k {
			t.Errorf("round trip %s = %v, %v", b, got, err)
		}
	}
	if _, err := ParseKind("Lambda"); err == nil {
		t.Error("ParseKind(Lambda) succeeded")
	}
	if _, err := Kind(99).MarshalText(); err == nil {
		t.Error("MarshalText(99) succeeded")
	}
}
