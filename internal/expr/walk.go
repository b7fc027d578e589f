package expr

import "fmt"

// Locate returns a shallow copy of n, keeping its id, with loc attached.
// Front ends call it while building a tree; the original is left as is.
func Locate[T Node](n T, loc Location) T {
	l := &loc
	var out Node
	switch v := any(n).(type) {
	case *Number:
		c := *v
		c.loc = l
		out = &c
	case *Identifier:
		c := *v
		c.loc = l
		out = &c
	case *Add:
		c := *v
		c.loc = l
		out = &c
	case *Mul:
		c := *v
		c.loc = l
		out = &c
	case *Neg:
		c := *v
		c.loc = l
		out = &c
	case *Div:
		c := *v
		c.loc = l
		out = &c
	case *Pow:
		c := *v
		c.loc = l
		out = &c
	case *Root:
		c := *v
		c.loc = l
		out = &c
	case *Relation:
		c := *v
		c.loc = l
		out = &c
	case *Infinity:
		c := *v
		c.loc = l
		out = &c
	case *Pi:
		c := *v
		c.loc = l
		out = &c
	case *Ellipsis:
		c := *v
		c.loc = l
		out = &c
	default:
		panic(fmt.Sprintf("expr: unreachable node type %T", n))
	}
	return out.(T)
}

// Children returns n's direct children in order.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Number, *Infinity, *Pi, *Ellipsis:
		return nil
	case *Identifier:
		if v.Subscript != nil {
			return []Node{v.Subscript}
		}
		return nil
	case *Add:
		return v.Args
	case *Mul:
		return v.Args
	case *Relation:
		return v.Args
	case *Neg:
		return []Node{v.Arg}
	case *Div:
		return []Node{v.Num, v.Den}
	case *Pow:
		return []Node{v.Base, v.Exp}
	case *Root:
		return []Node{v.Radicand, v.Index}
	default:
		panic(fmt.Sprintf("expr: unreachable node type %T", n))
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Find returns the first node in pre-order with the given id, or nil.
func Find(root Node, id ID) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// IsRelation reports whether n is a relation.
func IsRelation(n Node) bool {
	_, ok := n.(*Relation)
	return ok
}
