package diagnosis

import (
	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Operation selects which n-ary operator a matcher looks at.
type Operation int

const (
	OpAdd Operation = iota
	OpMul
)

func (o Operation) String() string {
	if o == OpMul {
		return "mul"
	}
	return "add"
}

// terms views n as a list of terms (OpAdd) or factors (OpMul). Anything
// that is not a sum (product) is a single term (factor).
func terms(n expr.Node, op Operation) []expr.Node {
	switch v := n.(type) {
	case *expr.Add:
		if op == OpAdd {
			return v.Args
		}
	case *expr.Mul:
		if op == OpMul {
			return v.Args
		}
	}
	return []expr.Node{n}
}

// diffTerms compares two term lists as multisets by structural key. It
// returns the prior terms with no counterpart in next and the next terms
// with no counterpart in prior, each in original order.
func diffTerms(prior, next []expr.Node) (removed, added []expr.Node) {
	priorKeys := make([]string, len(prior))
	nextKeys := make([]string, len(next))
	inNext := make(map[string]int, len(next))
	inPrior := make(map[string]int, len(prior))
	for i, n := range next {
		nextKeys[i] = canon.Structural(n)
		inNext[nextKeys[i]]++
	}
	for i, p := range prior {
		priorKeys[i] = canon.Structural(p)
		inPrior[priorKeys[i]]++
	}
	for i, p := range prior {
		if inNext[priorKeys[i]] > 0 {
			inNext[priorKeys[i]]--
			continue
		}
		removed = append(removed, p)
	}
	for i, n := range next {
		if inPrior[nextKeys[i]] > 0 {
			inPrior[nextKeys[i]]--
			continue
		}
		added = append(added, n)
	}
	return removed, added
}

// edit is a change to the terms of a sum or the factors of a product
// found while aligning two trees.
type edit struct {
	op      Operation
	prior   expr.Node
	next    expr.Node
	removed []expr.Node
	added   []expr.Node

	// atSide is set when the edited subtree is a whole side of a relation.
	// Additions there belong to the equation matchers.
	atSide bool
}

// pureGain reports whether the edit only introduced terms.
func (e edit) pureGain() bool {
	return len(e.removed) == 0 && len(e.added) > 0
}

// diffTrees aligns prior and next and returns the term and factor edits
// between them. Subtrees that are structurally identical are skipped; a
// single rewritten term is followed into.
func diffTrees(prior, next expr.Node) []edit {
	var out []edit
	walkDiff(prior, next, false, &out)
	return out
}

func walkDiff(p, n expr.Node, atSide bool, out *[]edit) {
	if canon.Same(p, n) {
		return
	}
	if op, ok := lens(p, n); ok {
		diffList(p, n, op, atSide, out)
		return
	}

	switch pv := p.(type) {
	case *expr.Relation:
		nv, ok := n.(*expr.Relation)
		if !ok || len(nv.Args) != len(pv.Args) {
			return
		}
		for i := range pv.Args {
			walkDiff(pv.Args[i], nv.Args[i], true, out)
		}
	case *expr.Neg:
		if nv, ok := n.(*expr.Neg); ok {
			walkDiff(pv.Arg, nv.Arg, false, out)
		}
	case *expr.Div:
		if nv, ok := n.(*expr.Div); ok {
			walkDiff(pv.Num, nv.Num, false, out)
			walkDiff(pv.Den, nv.Den, false, out)
		}
	case *expr.Pow:
		if nv, ok := n.(*expr.Pow); ok {
			walkDiff(pv.Base, nv.Base, false, out)
			walkDiff(pv.Exp, nv.Exp, false, out)
		}
	case *expr.Root:
		if nv, ok := n.(*expr.Root); ok {
			walkDiff(pv.Radicand, nv.Radicand, false, out)
			walkDiff(pv.Index, nv.Index, false, out)
		}
	}
}

// lens picks the operator to align p and n under. When a sum became a
// product or the other way round, the operator leaving fewer unmatched
// terms wins, so x + 1 → 2(x + 1) reads as a gained factor.
func lens(p, n expr.Node) (Operation, bool) {
	add := isAdd(p) || isAdd(n)
	mul := isMul(p) || isMul(n)
	switch {
	case add && mul:
		ra, aa := diffTerms(terms(p, OpAdd), terms(n, OpAdd))
		rm, am := diffTerms(terms(p, OpMul), terms(n, OpMul))
		if len(rm)+len(am) < len(ra)+len(aa) {
			return OpMul, true
		}
		return OpAdd, true
	case add:
		return OpAdd, true
	case mul:
		return OpMul, true
	}
	return OpAdd, false
}

func diffList(p, n expr.Node, op Operation, atSide bool, out *[]edit) {
	removed, added := diffTerms(terms(p, op), terms(n, op))
	if len(removed) == 0 && len(added) == 0 {
		// Only order or a flag changed.
		return
	}
	if len(removed) == 1 && len(added) == 1 {
		walkDiff(removed[0], added[0], false, out)
		return
	}
	*out = append(*out, edit{
		op:      op,
		prior:   p,
		next:    n,
		removed: removed,
		added:   added,
		atSide:  atSide,
	})
}

func isAdd(n expr.Node) bool {
	_, ok := n.(*expr.Add)
	return ok
}

func isMul(n expr.Node) bool {
	_, ok := n.(*expr.Mul)
	return ok
}
