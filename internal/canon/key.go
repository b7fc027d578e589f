// Package canon renders expression trees into deterministic string keys.
//
// Keys are used for memoizing verdicts and for snapshot-style tests. The
// full form embeds node ids on internal nodes, so two distinct subtrees of
// the same shape still differ; the structural form drops ids.
package canon

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/stepcheck/internal/expr"
)

// PairSeparator joins the prior and next renderings of a key.
const PairSeparator = " -> "

// Options controls rendering.
type Options struct {
	// StripIDs omits #id suffixes for structural-only comparison.
	StripIDs bool

	// SortArgs renders the arguments of add and mul in sorted order.
	SortArgs bool
}

// Key renders the ordered pair (prior, next). It is not symmetric.
func Key(prior, next expr.Node) string {
	return Render(prior, Options{}) + PairSeparator + Render(next, Options{})
}

// StructuralKey is Key without ids.
func StructuralKey(prior, next expr.Node) string {
	o := Options{StripIDs: true}
	return Render(prior, o) + PairSeparator + Render(next, o)
}

// Structural renders n without ids.
func Structural(n expr.Node) string {
	return Render(n, Options{StripIDs: true})
}

// Sorted renders n without ids and with commutative arguments sorted.
func Sorted(n expr.Node) string {
	return Render(n, Options{StripIDs: true, SortArgs: true})
}

// Render renders a single tree.
func Render(n expr.Node, o Options) string {
	var b strings.Builder
	render(&b, n, o)
	return b.String()
}

func render(b *strings.Builder, n expr.Node, o Options) {
	switch v := n.(type) {
	case *expr.Number:
		b.WriteString(v.Value)
	case *expr.Identifier:
		if v.Subscript == nil {
			b.WriteString(v.Name)
			return
		}
		open(b, "ident", v, o)
		b.WriteByte(' ')
		b.WriteString(v.Name)
		b.WriteByte(' ')
		render(b, v.Subscript, o)
		b.WriteByte(')')
	case *expr.Add:
		list(b, "add", v, v.Args, o, o.SortArgs)
	case *expr.Mul:
		typ := "mul.exp"
		if v.Implicit {
			typ = "mul.imp"
		}
		list(b, typ, v, v.Args, o, o.SortArgs)
	case *expr.Neg:
		typ := "neg"
		if v.Subtraction {
			typ = "neg.sub"
		}
		list(b, typ, v, []expr.Node{v.Arg}, o, false)
	case *expr.Div:
		list(b, "div", v, []expr.Node{v.Num, v.Den}, o, false)
	case *expr.Relation:
		list(b, string(v.Op), v, v.Args, o, false)
	case *expr.Pow:
		named(b, "exp", v, o, "base", v.Base, "exp", v.Exp)
	case *expr.Root:
		typ := "root"
		if v.Sqrt {
			typ = "sqrt"
		}
		named(b, typ, v, o, "radicand", v.Radicand, "index", v.Index)
	case *expr.Infinity:
		b.WriteString("∞")
	case *expr.Pi:
		b.WriteString("π")
	case *expr.Ellipsis:
		b.WriteString("...")
	default:
		panic(fmt.Sprintf("canon: unreachable node type %T", n))
	}
}

func open(b *strings.Builder, typ string, n expr.Node, o Options) {
	b.WriteByte('(')
	b.WriteString(typ)
	if !o.StripIDs {
		b.WriteByte('#')
		b.WriteString(strconv.FormatInt(int64(n.ID()), 10))
	}
}

func list(b *strings.Builder, typ string, n expr.Node, args []expr.Node, o Options, sorted bool) {
	open(b, typ, n, o)
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Render(a, o)
	}
	if sorted {
		sort.Strings(parts)
	}
	for _, p := range parts {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	b.WriteByte(')')
}

func named(b *strings.Builder, typ string, n expr.Node, o Options, k1 string, v1 expr.Node, k2 string, v2 expr.Node) {
	open(b, typ, n, o)
	b.WriteString(" :")
	b.WriteString(k1)
	b.WriteByte(' ')
	render(b, v1, o)
	b.WriteString(" :")
	b.WriteString(k2)
	b.WriteByte(' ')
	render(b, v2, o)
	b.WriteByte(')')
}

// Same reports whether a and b are structurally identical, flags included.
func Same(a, b expr.Node) bool {
	return Structural(a) == Structural(b)
}
