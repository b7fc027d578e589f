package locate

import (
	"testing"

	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/stretchr/testify/assert"
)

func loc(path []int, start, end int) *expr.Location {
	return &expr.Location{Path: path, Start: start, End: end}
}

func TestSpans(t *testing.T) {
	m := diagnosis.Mistake{
		ID: diagnosis.EvalAdd,
		PrevNodes: []expr.NodeRef{
			{ID: 1, Loc: loc([]int{0}, 0, 1)},
			{ID: 2},
		},
		NextNodes: []expr.NodeRef{
			{ID: 5, Loc: loc([]int{1}, 4, 5)},
		},
	}

	want := []Span{
		{Side: SidePrev, Path: []int{0}, Start: 0, End: 1},
		{Side: SideNext, Path: []int{1}, Start: 4, End: 5},
	}
	assert.Equal(t, want, Spans(m))
}

func TestSpans_FromLocatedNodes(t *testing.T) {
	b := expr.NewBuilder()
	two := expr.Locate(b.Number("2"), expr.Location{Path: []int{0}, Start: 0, End: 1})
	three := expr.Locate(b.Number("3"), expr.Location{Path: []int{0}, Start: 4, End: 5})
	six := expr.Locate(b.Number("6"), expr.Location{Path: []int{1}, Start: 0, End: 1})

	m := diagnosis.Mistake{
		ID:        diagnosis.EvalAdd,
		PrevNodes: expr.Refs(two, three),
		NextNodes: expr.Refs(six),
	}
	got := Spans(m)
	assert.Len(t, got, 3)
	assert.Equal(t, SideNext, got[2].Side)
}

func TestSpans_CopiesPath(t *testing.T) {
	path := []int{2, 1}
	m := diagnosis.Mistake{ID: diagnosis.EvalMul, NextNodes: []expr.NodeRef{{ID: 1, Loc: loc(path, 0, 2)}}}
	got := Spans(m)
	path[0] = 9
	assert.Equal(t, []int{2, 1}, got[0].Path)
}

func TestAll(t *testing.T) {
	ms := []diagnosis.Mistake{
		{ID: diagnosis.EvalAdd, NextNodes: []expr.NodeRef{{ID: 1, Loc: loc(nil, 0, 1)}}},
		{ID: diagnosis.EvalMul, NextNodes: []expr.NodeRef{{ID: 2, Loc: loc(nil, 3, 4)}}},
	}
	got := All(ms)
	assert.Len(t, got, 2)
	assert.Equal(t, 3, got[1].Start)
	assert.Empty(t, All(nil))
}

func TestForRow(t *testing.T) {
	spans := []Span{
		{Side: SidePrev, Path: []int{0}, Start: 0, End: 1},
		{Side: SideNext, Path: []int{0}, Start: 2, End: 3},
		{Side: SideNext, Path: []int{0, 1}, Start: 0, End: 1},
		{Side: SideNext, Path: []int{0}, Start: 5, End: 6},
	}
	got := ForRow(spans, SideNext, []int{0})
	want := []Span{spans[1], spans[3]}
	assert.Equal(t, want, got)
	assert.Empty(t, ForRow(spans, SidePrev, []int{3}))
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		in   []Span
		want []Span
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "overlapping",
			in: []Span{
				{Side: SideNext, Path: []int{0}, Start: 3, End: 6},
				{Side: SideNext, Path: []int{0}, Start: 0, End: 4},
			},
			want: []Span{{Side: SideNext, Path: []int{0}, Start: 0, End: 6}},
		},
		{
			name: "touching",
			in: []Span{
				{Side: SidePrev, Path: []int{0}, Start: 0, End: 2},
				{Side: SidePrev, Path: []int{0}, Start: 2, End: 3},
			},
			want: []Span{{Side: SidePrev, Path: []int{0}, Start: 0, End: 3}},
		},
		{
			name: "contained",
			in: []Span{
				{Side: SidePrev, Path: []int{0}, Start: 0, End: 9},
				{Side: SidePrev, Path: []int{0}, Start: 2, End: 3},
			},
			want: []Span{{Side: SidePrev, Path: []int{0}, Start: 0, End: 9}},
		},
		{
			name: "different rows and sides stay apart",
			in: []Span{
				{Side: SideNext, Path: []int{0}, Start: 0, End: 2},
				{Side: SidePrev, Path: []int{0}, Start: 0, End: 2},
				{Side: SideNext, Path: []int{1}, Start: 0, End: 2},
			},
			want: []Span{
				{Side: SidePrev, Path: []int{0}, Start: 0, End: 2},
				{Side: SideNext, Path: []int{0}, Start: 0, End: 2},
				{Side: SideNext, Path: []int{1}, Start: 0, End: 2},
			},
		},
		{
			name: "gap",
			in: []Span{
				{Side: SideNext, Path: []int{0}, Start: 0, End: 1},
				{Side: SideNext, Path: []int{0}, Start: 3, End: 4},
			},
			want: []Span{
				{Side: SideNext, Path: []int{0}, Start: 0, End: 1},
				{Side: SideNext, Path: []int{0}, Start: 3, End: 4},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.in))
		})
	}
}
