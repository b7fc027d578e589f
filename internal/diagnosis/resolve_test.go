package diagnosis

import (
	"testing"

	"github.com/abhisek/stepcheck/internal/expr"
)

func ids(ms []Mistake) []MistakeID {
	out := make([]MistakeID, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestResolve_EquationBeatsArithmetic(t *testing.T) {
	got := Resolve([]Mistake{
		{ID: EvalAdd},
		{ID: EqnAddDiff},
		{ID: DecompAdd},
	})
	if len(got) != 1 || got[0].ID != EqnAddDiff {
		t.Errorf("got %v, want [EQN_ADD_DIFF]", ids(got))
	}
}

func TestResolve_EquationOnlyForEveryMix(t *testing.T) {
	equation := []MistakeID{EqnAddDiff, EqnMulDiff}
	arithmetic := []MistakeID{EvalAdd, EvalMul, DecompAdd, DecompMul}
	for _, e := range equation {
		for _, a := range arithmetic {
			got := Resolve([]Mistake{{ID: a}, {ID: e}, {ID: ExprAddNonIdentity}})
			for _, m := range got {
				if Priority(m.ID) != PriorityEquation {
					t.Errorf("Resolve(%s, %s) kept %s", a, e, m.ID)
				}
			}
		}
	}
}

func TestResolve_KeepsEmissionOrderAmongTies(t *testing.T) {
	got := Resolve([]Mistake{
		{ID: DecompMul},
		{ID: EvalAdd},
		{ID: DecompAdd},
	})
	want := []MistakeID{DecompMul, EvalAdd, DecompAdd}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestEqualMistakes(t *testing.T) {
	a := []Mistake{{ID: EvalAdd, PrevNodes: []expr.NodeRef{{ID: 1}}, NextNodes: []expr.NodeRef{{ID: 4}}}}
	b := []Mistake{{ID: EvalAdd, PrevNodes: []expr.NodeRef{{ID: 1}}, NextNodes: []expr.NodeRef{{ID: 4}}}}
	c := []Mistake{{ID: EvalAdd, PrevNodes: []expr.NodeRef{{ID: 1}}, NextNodes: []expr.NodeRef{{ID: 5}}}}

	if !EqualMistakes(a, b) {
		t.Error("identical mistakes reported unequal")
	}
	if EqualMistakes(a, c) {
		t.Error("different node refs reported equal")
	}
	if EqualMistakes(a, nil) {
		t.Error("different lengths reported equal")
	}
	if !EqualMistakes(nil, []Mistake{}) {
		t.Error("nil and empty should be equal")
	}
}
