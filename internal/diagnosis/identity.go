package diagnosis

import (
	"math/big"

	"github.com/abhisek/stepcheck/internal/algebra"
	"github.com/abhisek/stepcheck/internal/expr"
)

// IdentityMatcher flags a sum (product) that gained terms (factors) which
// do not amount to 0 (1). Gains at the top of an equation side are left to
// EquationMatcher.
type IdentityMatcher struct {
	Op Operation
}

func (m *IdentityMatcher) Name() string { return "identity-" + m.Op.String() }

func (m *IdentityMatcher) Match(prior, next expr.Node) []Mistake {
	var out []Mistake
	for _, e := range diffTrees(prior, next) {
		if e.op != m.Op || e.atSide || !e.pureGain() {
			continue
		}
		if m.isIdentity(e.added) {
			continue
		}
		out = append(out, Mistake{
			ID:        m.id(),
			PrevNodes: []expr.NodeRef{expr.Ref(e.prior)},
			NextNodes: expr.Refs(e.added...),
		})
	}
	return out
}

func (m *IdentityMatcher) id() MistakeID {
	if m.Op == OpMul {
		return ExprMulNonIdentity
	}
	return ExprAddNonIdentity
}

// isIdentity reports whether the gained nodes together are the identity,
// e.g. "+ 2 − 2" or "· 1".
func (m *IdentityMatcher) isIdentity(ns []expr.Node) bool {
	if m.Op == OpMul {
		p, ok := algebra.ProductOf(ns)
		if !ok {
			return false
		}
		v, ok := p.ConstValue()
		return ok && v.Cmp(big.NewRat(1, 1)) == 0
	}
	p, ok := algebra.SumOf(ns)
	return ok && p.IsZero()
}
