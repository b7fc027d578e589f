// Package algebra evaluates number literals and converts expression trees
// into polynomials with rational coefficients.
package algebra

import (
	"math/big"
	"strings"

	"github.com/abhisek/stepcheck/internal/expr"
)

// ParseNumber parses a literal value such as "12", "−2.5" or "3/4".
func ParseNumber(value string) (*big.Rat, bool) {
	value = strings.Replace(value, expr.Minus, "-", 1)
	return new(big.Rat).SetString(value)
}

// Literal returns the value of a number literal, or of a negated literal
// such as −3 or the "− 3" of a subtraction.
func Literal(n expr.Node) (*big.Rat, bool) {
	switch v := n.(type) {
	case *expr.Number:
		return ParseNumber(v.Value)
	case *expr.Neg:
		r, ok := Literal(v.Arg)
		if !ok {
			return nil, false
		}
		return new(big.Rat).Neg(r), true
	default:
		return nil, false
	}
}

// AllLiteral reports whether every node is a literal.
func AllLiteral(ns []expr.Node) bool {
	if len(ns) == 0 {
		return false
	}
	for _, n := range ns {
		if _, ok := Literal(n); !ok {
			return false
		}
	}
	return true
}

// IsLiteralSum reports whether n is a sum whose terms are all literals.
func IsLiteralSum(n expr.Node) bool {
	a, ok := n.(*expr.Add)
	return ok && AllLiteral(a.Args)
}

// IsLiteralProduct reports whether n is a product whose factors are all
// literals.
func IsLiteralProduct(n expr.Node) bool {
	m, ok := n.(*expr.Mul)
	return ok && AllLiteral(m.Args)
}

// Sum adds literal nodes. ok is false if any node is not a literal.
func Sum(ns []expr.Node) (*big.Rat, bool) {
	total := new(big.Rat)
	for _, n := range ns {
		r, ok := Literal(n)
		if !ok {
			return nil, false
		}
		total.Add(total, r)
	}
	return total, true
}

// Product multiplies literal nodes. ok is false if any node is not a
// literal.
func Product(ns []expr.Node) (*big.Rat, bool) {
	total := big.NewRat(1, 1)
	for _, n := range ns {
		r, ok := Literal(n)
		if !ok {
			return nil, false
		}
		total.Mul(total, r)
	}
	return total, true
}

// FormatRat renders r as an integer, a terminating decimal, or a fraction.
func FormatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if digits, ok := decimalDigits(r.Denom()); ok {
		return r.FloatString(digits)
	}
	return r.RatString()
}

// decimalDigits returns how many decimal places 1/den needs, if finite.
func decimalDigits(den *big.Int) (int, bool) {
	d := new(big.Int).Set(den)
	two, five := big.NewInt(2), big.NewInt(5)
	twos, fives := 0, 0
	mod := new(big.Int)
	for {
		if mod.Mod(d, two).Sign() != 0 {
			break
		}
		d.Div(d, two)
		twos++
	}
	for {
		if mod.Mod(d, five).Sign() != 0 {
			break
		}
		d.Div(d, five)
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	return max(twos, fives), true
}
