package grader

import (
	"testing"

	"github.com/abhisek/stepcheck/internal/expr"
)

func TestEquivalent(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *expr.Builder) (expr.Node, expr.Node)
		want  bool
	}{
		{"reordered product", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Mul(b.Ident("a"), b.Ident("b")), b.Mul(b.Ident("b"), b.Ident("a"))
		}, true},
		{"implicit vs explicit product", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Mul(b.Number("2"), b.Ident("x")), b.ImplicitMul(b.Number("2"), b.Ident("x"))
		}, true},
		{"square of a sum", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Pow(b.Add(b.Ident("x"), b.Number("1")), b.Number("2")),
				b.Add(b.Pow(b.Ident("x"), b.Number("2")), b.ImplicitMul(b.Number("2"), b.Ident("x")), b.Number("1"))
		}, true},
		{"different constants", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Add(b.Ident("x"), b.Number("1")), b.Add(b.Ident("x"), b.Number("2"))
		}, false},
		{"scaled equation", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Eq(b.Ident("x"), b.Number("5")),
				b.Eq(b.ImplicitMul(b.Number("3"), b.Ident("x")), b.Number("15"))
		}, true},
		{"swapped sides of equation", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Eq(b.Ident("x"), b.Number("5")), b.Eq(b.Number("5"), b.Ident("x"))
		}, true},
		{"wrong equation", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Eq(b.Ident("x"), b.Number("5")), b.Eq(b.Ident("x"), b.Number("6"))
		}, false},
		{"inequality scaled by positive", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Lt(b.Ident("x"), b.Number("5")),
				b.Lt(b.ImplicitMul(b.Number("2"), b.Ident("x")), b.Number("10"))
		}, true},
		{"inequality scaled by negative without flip", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Lt(b.Ident("x"), b.Number("5")),
				b.Lt(b.Neg(b.Ident("x")), b.Number("-5"))
		}, false},
		{"inequality scaled by negative with flip", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Lt(b.Ident("x"), b.Number("5")),
				b.Gt(b.Neg(b.Ident("x")), b.Number("-5"))
		}, true},
		{"flip without negative", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Lt(b.Ident("x"), b.Number("5")), b.Gt(b.Ident("x"), b.Number("5"))
		}, false},
		{"relation against expression", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Eq(b.Ident("x"), b.Number("5")), b.Ident("x")
		}, false},
		{"identical roots", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Sqrt(b.Ident("x")), b.Sqrt(b.Ident("x"))
		}, true},
		{"sqrt vs nth root", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Sqrt(b.Ident("x")), b.Root(b.Ident("x"), b.Number("2"))
		}, false},
		{"chain side by side", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Eq(b.Ident("a"), b.Add(b.Number("1"), b.Number("1")), b.Ident("b")),
				b.Eq(b.Ident("a"), b.Number("2"), b.Ident("b"))
		}, true},
		{"zero sides", func(b *expr.Builder) (expr.Node, expr.Node) {
			return b.Eq(b.Number("0"), b.Number("0")), b.Eq(b.Add(b.Ident("x"), b.Neg(b.Ident("x"))), b.Number("0"))
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior, next := tt.build(expr.NewBuilder())
			if got := Equivalent(prior, next); got != tt.want {
				t.Errorf("Equivalent() = %v, want %v", got, tt.want)
			}
		})
	}
}
