package algebra

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

// MaxExponent bounds the integer powers FromExpr will expand.
const MaxExponent = 12

// monomial maps a variable key to its exponent. Exponents are always > 0.
type monomial map[string]int

func (m monomial) key() string {
	if len(m) == 0 {
		return "1"
	}
	vars := make([]string, 0, len(m))
	for v := range m {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%s^%d", v, m[v])
	}
	return strings.Join(parts, "*")
}

func (m monomial) times(o monomial) monomial {
	out := make(monomial, len(m)+len(o))
	for v, e := range m {
		out[v] = e
	}
	for v, e := range o {
		out[v] += e
	}
	return out
}

type term struct {
	mono monomial
	coef *big.Rat
}

// Poly is a multivariate polynomial with rational coefficients. The zero
// value is the zero polynomial. Polys are never mutated after construction.
type Poly struct {
	terms map[string]term
}

// Const returns the constant polynomial c.
func Const(c *big.Rat) Poly {
	p := Poly{terms: map[string]term{}}
	if c.Sign() != 0 {
		p.terms["1"] = term{mono: monomial{}, coef: new(big.Rat).Set(c)}
	}
	return p
}

// Var returns the polynomial consisting of a single variable.
func Var(name string) Poly {
	m := monomial{name: 1}
	return Poly{terms: map[string]term{m.key(): {mono: m, coef: big.NewRat(1, 1)}}}
}

func (p Poly) with(k string, t term) {
	if cur, ok := p.terms[k]; ok {
		sum := new(big.Rat).Add(cur.coef, t.coef)
		if sum.Sign() == 0 {
			delete(p.terms, k)
			return
		}
		p.terms[k] = term{mono: cur.mono, coef: sum}
		return
	}
	if t.coef.Sign() != 0 {
		p.terms[k] = t
	}
}

// Add returns p + q.
func (p Poly) Add(q Poly) Poly {
	out := Poly{terms: make(map[string]term, len(p.terms)+len(q.terms))}
	for k, t := range p.terms {
		out.with(k, t)
	}
	for k, t := range q.terms {
		out.with(k, t)
	}
	return out
}

// Scale returns c·p.
func (p Poly) Scale(c *big.Rat) Poly {
	out := Poly{terms: make(map[string]term, len(p.terms))}
	if c.Sign() == 0 {
		return out
	}
	for k, t := range p.terms {
		out.terms[k] = term{mono: t.mono, coef: new(big.Rat).Mul(t.coef, c)}
	}
	return out
}

// Neg returns −p.
func (p Poly) Neg() Poly {
	return p.Scale(big.NewRat(-1, 1))
}

// Sub returns p − q.
func (p Poly) Sub(q Poly) Poly {
	return p.Add(q.Neg())
}

// Mul returns p·q.
func (p Poly) Mul(q Poly) Poly {
	out := Poly{terms: map[string]term{}}
	for _, a := range p.terms {
		for _, b := range q.terms {
			m := a.mono.times(b.mono)
			out.with(m.key(), term{mono: m, coef: new(big.Rat).Mul(a.coef, b.coef)})
		}
	}
	return out
}

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool {
	return len(p.terms) == 0
}

// ConstValue returns p's value if p has no variables.
func (p Poly) ConstValue() (*big.Rat, bool) {
	switch len(p.terms) {
	case 0:
		return new(big.Rat), true
	case 1:
		if t, ok := p.terms["1"]; ok {
			return new(big.Rat).Set(t.coef), true
		}
	}
	return nil, false
}

// Equal reports whether p and q are the same polynomial.
func (p Poly) Equal(q Poly) bool {
	return p.Sub(q).IsZero()
}

// Ratio returns k such that p = k·q, when such a constant exists and q is
// not zero.
func (p Poly) Ratio(q Poly) (*big.Rat, bool) {
	if q.IsZero() {
		return nil, false
	}
	var k *big.Rat
	for key, t := range q.terms {
		pt, ok := p.terms[key]
		if !ok {
			return nil, false
		}
		k = new(big.Rat).Quo(pt.coef, t.coef)
		break
	}
	if !p.Equal(q.Scale(k)) {
		return nil, false
	}
	return k, true
}

// String renders p with monomials in sorted order. Used in tests and debug
// logging.
func (p Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	keys := make([]string, 0, len(p.terms))
	for k := range p.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = p.terms[k].coef.RatString() + "·" + k
	}
	return strings.Join(parts, " + ")
}

// FromExpr converts a tree into a polynomial. ok is false when the tree
// uses anything beyond sums, products, negation, division by a nonzero
// constant, and small non-negative integer powers.
func FromExpr(n expr.Node) (Poly, bool) {
	switch v := n.(type) {
	case *expr.Number:
		r, ok := ParseNumber(v.Value)
		if !ok {
			return Poly{}, false
		}
		return Const(r), true
	case *expr.Identifier:
		return Var(canon.Structural(v)), true
	case *expr.Pi:
		return Var("π"), true
	case *expr.Add:
		out := Const(new(big.Rat))
		for _, a := range v.Args {
			p, ok := FromExpr(a)
			if !ok {
				return Poly{}, false
			}
			out = out.Add(p)
		}
		return out, true
	case *expr.Mul:
		out := Const(big.NewRat(1, 1))
		for _, a := range v.Args {
			p, ok := FromExpr(a)
			if !ok {
				return Poly{}, false
			}
			out = out.Mul(p)
		}
		return out, true
	case *expr.Neg:
		p, ok := FromExpr(v.Arg)
		if !ok {
			return Poly{}, false
		}
		return p.Neg(), true
	case *expr.Div:
		num, ok := FromExpr(v.Num)
		if !ok {
			return Poly{}, false
		}
		den, ok := FromExpr(v.Den)
		if !ok {
			return Poly{}, false
		}
		c, ok := den.ConstValue()
		if !ok || c.Sign() == 0 {
			return Poly{}, false
		}
		return num.Scale(new(big.Rat).Inv(c)), true
	case *expr.Pow:
		base, ok := FromExpr(v.Base)
		if !ok {
			return Poly{}, false
		}
		e, ok := Literal(v.Exp)
		if !ok || !e.IsInt() || e.Sign() < 0 || e.Num().Cmp(big.NewInt(MaxExponent)) > 0 {
			return Poly{}, false
		}
		n := e.Num().Int64()
		out := Const(big.NewRat(1, 1))
		for i := int64(0); i < n; i++ {
			out = out.Mul(base)
		}
		return out, true
	case *expr.Root, *expr.Relation, *expr.Infinity, *expr.Ellipsis:
		return Poly{}, false
	default:
		panic(fmt.Sprintf("algebra: unreachable node type %T", n))
	}
}

// SumOf converts and adds several trees.
func SumOf(ns []expr.Node) (Poly, bool) {
	out := Const(new(big.Rat))
	for _, n := range ns {
		p, ok := FromExpr(n)
		if !ok {
			return Poly{}, false
		}
		out = out.Add(p)
	}
	return out, true
}

// ProductOf converts and multiplies several trees.
func ProductOf(ns []expr.Node) (Poly, bool) {
	out := Const(big.NewRat(1, 1))
	for _, n := range ns {
		p, ok := FromExpr(n)
		if !ok {
			return Poly{}, false
		}
		out = out.Mul(p)
	}
	return out, true
}
