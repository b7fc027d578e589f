package grader

import (
	"fmt"
	"math/big"

	"github.com/abhisek/stepcheck/internal/algebra"
	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Hints for valid steps.
const (
	HintNoChange   = "No change."
	HintEvaluated  = "Evaluated correctly."
	HintEquivalent = "Rewrote as an equivalent expression."
)

// Hint describes a valid step in words. It assumes Equivalent(prior, next).
func Hint(prior, next expr.Node) string {
	if canon.Same(prior, next) {
		return HintNoChange
	}
	p, pRel := prior.(*expr.Relation)
	n, nRel := next.(*expr.Relation)
	if pRel && nRel && len(p.Args) == len(n.Args) {
		if h, ok := bothSides(p, n); ok {
			return h
		}
	}
	if countNumbers(next) < countNumbers(prior) {
		return HintEvaluated
	}
	return HintEquivalent
}

// bothSides recognizes the same constant added to, or the same factor
// applied to, every side of a relation.
func bothSides(p, n *expr.Relation) (string, bool) {
	if d, ok := sameDelta(p, n); ok && d.Sign() != 0 {
		if d.Sign() > 0 {
			return fmt.Sprintf("Subtracted %s from both sides.", algebra.FormatRat(d)), true
		}
		return fmt.Sprintf("Added %s to both sides.", algebra.FormatRat(new(big.Rat).Neg(d))), true
	}
	if k, ok := sameFactor(p, n); ok && k.Cmp(big.NewRat(1, 1)) != 0 {
		inv := new(big.Rat).Inv(k)
		if !k.IsInt() && inv.IsInt() {
			return fmt.Sprintf("Divided both sides by %s.", algebra.FormatRat(inv)), true
		}
		return fmt.Sprintf("Multiplied both sides by %s.", algebra.FormatRat(k)), true
	}
	return "", false
}

// sameDelta returns d when every side of n equals its prior side minus
// the constant d.
func sameDelta(p, n *expr.Relation) (*big.Rat, bool) {
	var d *big.Rat
	for i := range p.Args {
		pp, ok := algebra.FromExpr(p.Args[i])
		if !ok {
			return nil, false
		}
		np, ok := algebra.FromExpr(n.Args[i])
		if !ok {
			return nil, false
		}
		c, ok := pp.Sub(np).ConstValue()
		if !ok {
			return nil, false
		}
		if d == nil {
			d = c
			continue
		}
		if d.Cmp(c) != 0 {
			return nil, false
		}
	}
	return d, d != nil
}

// sameFactor returns k when every side of n is k times its prior side.
// Sides that are zero before and after fit any k.
func sameFactor(p, n *expr.Relation) (*big.Rat, bool) {
	var k *big.Rat
	for i := range p.Args {
		pp, ok := algebra.FromExpr(p.Args[i])
		if !ok {
			return nil, false
		}
		np, ok := algebra.FromExpr(n.Args[i])
		if !ok {
			return nil, false
		}
		if pp.IsZero() && np.IsZero() {
			continue
		}
		r, ok := np.Ratio(pp)
		if !ok || r.Sign() == 0 {
			return nil, false
		}
		if k == nil {
			k = r
			continue
		}
		if k.Cmp(r) != 0 {
			return nil, false
		}
	}
	return k, k != nil
}

// sideRatio returns k such that the side difference of n is k times the
// side difference of p. Both relations must have two sides.
func sideRatio(p, n *expr.Relation) (*big.Rat, bool) {
	pd, ok := difference(p)
	if !ok {
		return nil, false
	}
	nd, ok := difference(n)
	if !ok {
		return nil, false
	}
	if pd.IsZero() && nd.IsZero() {
		return big.NewRat(1, 1), true
	}
	k, ok := nd.Ratio(pd)
	if !ok || k.Sign() == 0 {
		return nil, false
	}
	return k, true
}

func difference(r *expr.Relation) (algebra.Poly, bool) {
	lhs, ok := algebra.FromExpr(r.Args[0])
	if !ok {
		return algebra.Poly{}, false
	}
	rhs, ok := algebra.FromExpr(r.Args[1])
	if !ok {
		return algebra.Poly{}, false
	}
	return lhs.Sub(rhs), true
}

func countNumbers(n expr.Node) int {
	count := 0
	expr.Walk(n, func(c expr.Node) bool {
		if _, ok := c.(*expr.Number); ok {
			count++
		}
		return true
	})
	return count
}
