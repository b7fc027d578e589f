package grader

import (
	"github.com/abhisek/stepcheck/internal/algebra"
	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Equivalent reports whether next is a value-preserving rewrite of prior.
//
// Expressions are equivalent when they agree after sorting the arguments of
// sums and products, or when both are polynomials and equal as such.
// Relations must keep their arity. A two-sided relation is equivalent when
// the difference of its sides was scaled by a nonzero constant; a negative
// constant must flip an inequality. Otherwise every side must be
// equivalent to its counterpart under the same operator.
func Equivalent(prior, next expr.Node) bool {
	if canon.Sorted(prior) == canon.Sorted(next) {
		return true
	}
	p, pRel := prior.(*expr.Relation)
	n, nRel := next.(*expr.Relation)
	switch {
	case pRel && nRel:
		return relationsEquivalent(p, n)
	case pRel || nRel:
		return false
	}
	pp, ok := algebra.FromExpr(prior)
	if !ok {
		return false
	}
	np, ok := algebra.FromExpr(next)
	return ok && pp.Equal(np)
}

func relationsEquivalent(p, n *expr.Relation) bool {
	if len(p.Args) != len(n.Args) {
		return false
	}
	if len(p.Args) == 2 {
		if k, ok := sideRatio(p, n); ok {
			switch {
			case p.Op == n.Op:
				return p.Op == expr.OpEq || k.Sign() > 0
			case p.Op.Flip() == n.Op && p.Op != expr.OpEq:
				return k.Sign() < 0
			}
		}
	}
	if p.Op != n.Op {
		return false
	}
	for i := range p.Args {
		if !Equivalent(p.Args[i], n.Args[i]) {
			return false
		}
	}
	return true
}
