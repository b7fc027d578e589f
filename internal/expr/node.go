package expr

// ID identifies a node for debugging and mistake references. It never
// takes part in equality.
type ID int64

// Location is where a node came from in an editable row.
type Location struct {
	Path  []int `json:"path"`
	Start int   `json:"start"`
	End   int   `json:"end"`
}

// NodeRef is a non-owning reference to a node: identity plus location only.
type NodeRef struct {
	ID  ID        `json:"id"`
	Loc *Location `json:"loc,omitempty"`
}

// Ref returns a NodeRef for n.
func Ref(n Node) NodeRef {
	return NodeRef{ID: n.ID(), Loc: n.Loc()}
}

// Refs returns NodeRefs for every node in ns.
func Refs(ns ...Node) []NodeRef {
	out := make([]NodeRef, len(ns))
	for i, n := range ns {
		out[i] = Ref(n)
	}
	return out
}

// Node is a math expression tree node. The set of implementations is
// closed: only this package can add one.
type Node interface {
	ID() ID
	Loc() *Location
	isNode()
}

type meta struct {
	id  ID
	loc *Location
}

func (m meta) ID() ID         { return m.id }
func (m meta) Loc() *Location { return m.loc }
func (meta) isNode()          {}

// Number is a numeric literal held as a decimal string.
type Number struct {
	meta
	Value string
}

// Identifier is a variable name with an optional subscript.
type Identifier struct {
	meta
	Name      string
	Subscript Node // nil when absent
}

// Add is an n-ary sum.
type Add struct {
	meta
	Args []Node
}

// Mul is an n-ary product. Implicit marks juxtaposition (2x) as opposed to
// an explicit operator (2·x).
type Mul struct {
	meta
	Args     []Node
	Implicit bool
}

// Neg is a negation. Subtraction marks a term written as "a − b" inside a
// sum rather than a unary minus.
type Neg struct {
	meta
	Arg         Node
	Subtraction bool
}

// Div is a fraction.
type Div struct {
	meta
	Num Node
	Den Node
}

// Pow is an exponentiation.
type Pow struct {
	meta
	Base Node
	Exp  Node
}

// Root is an nth root. Sqrt marks the √ form, whose index is implied.
type Root struct {
	meta
	Radicand Node
	Index    Node
	Sqrt     bool
}

// RelOp is a relation operator.
type RelOp string

const (
	OpEq  RelOp = "eq"
	OpLt  RelOp = "lt"
	OpLte RelOp = "lte"
	OpGt  RelOp = "gt"
	OpGte RelOp = "gte"
)

// Flip returns the operator obtained by multiplying every side by a
// negative number.
func (op RelOp) Flip() RelOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLte:
		return OpGte
	case OpGt:
		return OpLt
	case OpGte:
		return OpLte
	default:
		return op
	}
}

// Relation is an n-ary (in)equality chain such as a = b = c.
type Relation struct {
	meta
	Op   RelOp
	Args []Node
}

// Infinity is ∞.
type Infinity struct{ meta }

// Pi is π.
type Pi struct{ meta }

// Ellipsis is the "..." placeholder.
type Ellipsis struct{ meta }
