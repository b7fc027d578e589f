package expr

import (
	"fmt"
	"strings"
)

// Minus is the canonical minus glyph used in number literals.
const Minus = "−"

// Builder allocates node ids and constructs well-formed nodes. A Builder
// is not safe for concurrent use; give each goroutine building trees its
// own, or hand out disjoint starting ids with NewBuilderFrom.
type Builder struct {
	next ID
}

// NewBuilder returns a builder whose first id is 1.
func NewBuilder() *Builder {
	return &Builder{next: 1}
}

// NewBuilderFrom returns a builder whose first id is start.
func NewBuilderFrom(start ID) *Builder {
	return &Builder{next: start}
}

func (b *Builder) meta() meta {
	id := b.next
	b.next++
	return meta{id: id}
}

// Number builds a literal. A leading ASCII '-' becomes the canonical minus.
func (b *Builder) Number(value string) *Number {
	if strings.HasPrefix(value, "-") {
		value = Minus + value[1:]
	}
	return &Number{meta: b.meta(), Value: value}
}

// Ident builds a plain identifier.
func (b *Builder) Ident(name string) *Identifier {
	return &Identifier{meta: b.meta(), Name: name}
}

// Subscripted builds an identifier with a subscript such as x₁.
func (b *Builder) Subscripted(name string, sub Node) *Identifier {
	return &Identifier{meta: b.meta(), Name: name, Subscript: sub}
}

// Add builds a sum of two or more terms.
func (b *Builder) Add(args ...Node) *Add {
	mustArity("add", args)
	return &Add{meta: b.meta(), Args: args}
}

// Mul builds an explicit product of two or more factors.
func (b *Builder) Mul(args ...Node) *Mul {
	mustArity("mul", args)
	return &Mul{meta: b.meta(), Args: args}
}

// ImplicitMul builds a product written by juxtaposition.
func (b *Builder) ImplicitMul(args ...Node) *Mul {
	mustArity("mul", args)
	return &Mul{meta: b.meta(), Args: args, Implicit: true}
}

// Neg builds a unary minus.
func (b *Builder) Neg(arg Node) *Neg {
	return &Neg{meta: b.meta(), Arg: arg}
}

// Sub builds a subtracted term, the "− b" in "a − b".
func (b *Builder) Sub(arg Node) *Neg {
	return &Neg{meta: b.meta(), Arg: arg, Subtraction: true}
}

// Div builds a fraction.
func (b *Builder) Div(num, den Node) *Div {
	return &Div{meta: b.meta(), Num: num, Den: den}
}

// Pow builds base^exp.
func (b *Builder) Pow(base, exp Node) *Pow {
	return &Pow{meta: b.meta(), Base: base, Exp: exp}
}

// Sqrt builds √radicand with an implied index of 2.
func (b *Builder) Sqrt(radicand Node) *Root {
	return &Root{meta: b.meta(), Radicand: radicand, Index: b.Number("2"), Sqrt: true}
}

// Root builds an nth root.
func (b *Builder) Root(radicand, index Node) *Root {
	return &Root{meta: b.meta(), Radicand: radicand, Index: index}
}

// Rel builds a relation chain of two or more sides.
func (b *Builder) Rel(op RelOp, args ...Node) *Relation {
	mustArity(string(op), args)
	return &Relation{meta: b.meta(), Op: op, Args: args}
}

// Eq builds an equation.
func (b *Builder) Eq(args ...Node) *Relation { return b.Rel(OpEq, args...) }

// Lt builds a strict less-than chain.
func (b *Builder) Lt(args ...Node) *Relation { return b.Rel(OpLt, args...) }

// Gt builds a strict greater-than chain.
func (b *Builder) Gt(args ...Node) *Relation { return b.Rel(OpGt, args...) }

func (b *Builder) Infinity() *Infinity { return &Infinity{meta: b.meta()} }
func (b *Builder) Pi() *Pi             { return &Pi{meta: b.meta()} }
func (b *Builder) Ellipsis() *Ellipsis { return &Ellipsis{meta: b.meta()} }

func mustArity(kind string, args []Node) {
	if len(args) < 2 {
		panic(fmt.Sprintf("expr: %s needs at least 2 args, got %d", kind, len(args)))
	}
	for i, a := range args {
		if a == nil {
			panic(fmt.Sprintf("expr: %s arg %d is nil", kind, i))
		}
	}
}
