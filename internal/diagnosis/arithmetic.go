package diagnosis

import (
	"math/big"

	"github.com/abhisek/stepcheck/internal/algebra"
	"github.com/abhisek/stepcheck/internal/expr"
)

// EvalMatcher flags literal terms (factors) replaced by a single literal
// that is not their sum (product).
type EvalMatcher struct {
	Op Operation
}

func (m *EvalMatcher) Name() string { return "eval-" + m.Op.String() }

func (m *EvalMatcher) Match(prior, next expr.Node) []Mistake {
	var out []Mistake
	for _, e := range diffTrees(prior, next) {
		if e.op != m.Op || len(e.removed) < 2 || len(e.added) != 1 {
			continue
		}
		if !algebra.AllLiteral(e.removed) || !algebra.AllLiteral(e.added) {
			continue
		}
		want, _ := combine(m.Op, e.removed)
		got, _ := algebra.Literal(e.added[0])
		if want.Cmp(got) == 0 {
			continue
		}
		id := EvalAdd
		if m.Op == OpMul {
			id = EvalMul
		}
		out = append(out, Mistake{
			ID:        id,
			PrevNodes: expr.Refs(e.removed...),
			NextNodes: expr.Refs(e.added...),
		})
	}
	return out
}

// DecompMatcher flags a literal replaced by literal terms (factors) whose
// sum (product) is not that literal. A literal kept alongside new terms is
// an addition, not a decomposition, and is not considered here.
type DecompMatcher struct {
	Op Operation
}

func (m *DecompMatcher) Name() string { return "decomp-" + m.Op.String() }

func (m *DecompMatcher) Match(prior, next expr.Node) []Mistake {
	var out []Mistake
	for _, e := range diffTrees(prior, next) {
		if e.op != m.Op || len(e.removed) != 1 || len(e.added) < 2 {
			continue
		}
		if !algebra.AllLiteral(e.removed) || !algebra.AllLiteral(e.added) {
			continue
		}
		want, _ := algebra.Literal(e.removed[0])
		got, _ := combine(m.Op, e.added)
		if want.Cmp(got) == 0 {
			continue
		}
		id := DecompAdd
		if m.Op == OpMul {
			id = DecompMul
		}
		out = append(out, Mistake{
			ID:        id,
			PrevNodes: expr.Refs(e.removed...),
			NextNodes: expr.Refs(e.added...),
		})
	}
	return out
}

func combine(op Operation, ns []expr.Node) (*big.Rat, bool) {
	if op == OpMul {
		return algebra.Product(ns)
	}
	return algebra.Sum(ns)
}
