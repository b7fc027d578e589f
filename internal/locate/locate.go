// Package locate turns mistakes into highlightable ranges on the editor's
// rows. It only reads the source locations attached to referenced nodes;
// highlighting itself is the editor's job.
package locate

import (
	"slices"

	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Side says which tree of a step a span belongs to.
type Side string

const (
	SidePrev Side = "prev"
	SideNext Side = "next"
)

// Span is a character range on one editable row.
type Span struct {
	Side  Side  `json:"side"`
	Path  []int `json:"path"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

// Spans returns the located ranges of a mistake's referenced nodes, prior
// tree first. References without a location are skipped.
func Spans(m diagnosis.Mistake) []Span {
	var out []Span
	out = appendRefs(out, SidePrev, m.PrevNodes)
	out = appendRefs(out, SideNext, m.NextNodes)
	return out
}

func appendRefs(out []Span, side Side, refs []expr.NodeRef) []Span {
	for _, r := range refs {
		if r.Loc == nil {
			continue
		}
		out = append(out, Span{
			Side:  side,
			Path:  slices.Clone(r.Loc.Path),
			Start: r.Loc.Start,
			End:   r.Loc.End,
		})
	}
	return out
}

// All flattens the spans of several mistakes in order.
func All(ms []diagnosis.Mistake) []Span {
	var out []Span
	for _, m := range ms {
		out = append(out, Spans(m)...)
	}
	return out
}

// ForRow keeps the spans on the row addressed by path.
func ForRow(spans []Span, side Side, path []int) []Span {
	var out []Span
	for _, s := range spans {
		if s.Side == side && slices.Equal(s.Path, path) {
			out = append(out, s)
		}
	}
	return out
}

// Merge coalesces overlapping or touching ranges on the same side and row.
// The result is ordered by side, path, then start.
func Merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, compare)

	out := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &out[len(out)-1]
		if s.Side == last.Side && slices.Equal(s.Path, last.Path) && s.Start <= last.End {
			last.End = max(last.End, s.End)
			continue
		}
		out = append(out, s)
	}
	return out
}

func compare(a, b Span) int {
	if a.Side != b.Side {
		if a.Side == SidePrev {
			return -1
		}
		return 1
	}
	if c := slices.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return a.Start - b.Start
}
