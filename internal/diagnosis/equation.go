package diagnosis

import (
	"math/big"
	"sort"
	"strings"

	"github.com/abhisek/stepcheck/internal/algebra"
	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

// EquationMatcher flags a relation whose sides had different values added
// (OpAdd) or multiplied in (OpMul). Division of a side counts as a factor
// keyed by its denominator. Gains that differ in form but not in value, such
// as − 2 and + (−2), are the same operation.
type EquationMatcher struct {
	Op Operation
}

func (m *EquationMatcher) Name() string { return "equation-" + m.Op.String() }

func (m *EquationMatcher) Match(prior, next expr.Node) []Mistake {
	p, ok := prior.(*expr.Relation)
	if !ok {
		return nil
	}
	n, ok := next.(*expr.Relation)
	if !ok || len(p.Args) != len(n.Args) || !m.sameOp(p.Op, n.Op) {
		return nil
	}

	gains := make([][]gained, len(p.Args))
	var gainedNodes []expr.Node
	for i := range p.Args {
		g, ok := m.gain(p.Args[i], n.Args[i])
		if !ok {
			return nil
		}
		gains[i] = g
		for _, t := range g {
			gainedNodes = append(gainedNodes, t.node)
		}
	}
	if len(gainedNodes) == 0 || m.sameGain(gains) {
		return nil
	}
	return []Mistake{{
		ID:        m.id(),
		PrevNodes: expr.Refs(p.Args...),
		NextNodes: expr.Refs(gainedNodes...),
	}}
}

// sameGain reports whether every side gained the same thing, first by
// canonical key and then by value.
func (m *EquationMatcher) sameGain(gains [][]gained) bool {
	first := gainKey(gains[0])
	sameKeys := true
	for _, g := range gains[1:] {
		if gainKey(g) != first {
			sameKeys = false
			break
		}
	}
	if sameKeys {
		return true
	}

	v0, ok := m.value(gains[0])
	if !ok {
		return false
	}
	for _, g := range gains[1:] {
		v, ok := m.value(g)
		if !ok || !v.Equal(v0) {
			return false
		}
	}
	return true
}

// value is the total a side gained: the sum of added terms, or the product
// of added factors over any new denominator. ok is false when the material
// is not polynomial or divides by something other than a nonzero constant.
func (m *EquationMatcher) value(g []gained) (algebra.Poly, bool) {
	if m.Op == OpAdd {
		nodes := make([]expr.Node, len(g))
		for i, t := range g {
			nodes[i] = t.node
		}
		return algebra.SumOf(nodes)
	}
	out := algebra.Const(big.NewRat(1, 1))
	for _, t := range g {
		p, ok := algebra.FromExpr(t.node)
		if !ok {
			return algebra.Poly{}, false
		}
		if !t.divisor {
			out = out.Mul(p)
			continue
		}
		c, ok := p.ConstValue()
		if !ok || c.Sign() == 0 {
			return algebra.Poly{}, false
		}
		out = out.Scale(new(big.Rat).Inv(c))
	}
	return out, true
}

func (m *EquationMatcher) id() MistakeID {
	if m.Op == OpMul {
		return EqnMulDiff
	}
	return EqnAddDiff
}

// sameOp allows a flipped inequality when multiplying, since a negative
// factor reverses the direction.
func (m *EquationMatcher) sameOp(a, b expr.RelOp) bool {
	if a == b {
		return true
	}
	return m.Op == OpMul && a.Flip() == b
}

type gained struct {
	node    expr.Node
	key     string
	divisor bool
}

// gain returns what a side gained going from prior to next. ok is false
// when the side also lost material, i.e. it was rewritten rather than
// extended.
func (m *EquationMatcher) gain(prior, next expr.Node) ([]gained, bool) {
	if canon.Same(prior, next) {
		return nil, true
	}
	if m.Op == OpMul {
		if d, ok := next.(*expr.Div); ok {
			g, ok := m.gain(prior, d.Num)
			if !ok {
				return nil, false
			}
			return append(g, gained{node: d.Den, key: "÷" + canon.Structural(d.Den), divisor: true}), true
		}
	}
	removed, added := diffTerms(terms(prior, m.Op), terms(next, m.Op))
	if len(removed) > 0 {
		return nil, false
	}
	out := make([]gained, len(added))
	for i, a := range added {
		out[i] = gained{node: a, key: canon.Structural(a)}
	}
	return out, true
}

func gainKey(g []gained) string {
	keys := make([]string, len(g))
	for i, t := range g {
		keys[i] = t.key
	}
	sort.Strings(keys)
	return strings.Join(keys, " ")
}
