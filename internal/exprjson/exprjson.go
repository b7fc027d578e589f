// Package exprjson reads and writes expression trees as JSON, the format
// the editor hands to the grader.
//
// A node is an object with a "type" and type-specific fields:
//
//	{"type":"mul","implicit":true,"args":[{"type":"number","value":"2"},{"type":"ident","name":"x"}]}
//
// Every node may carry "loc" ({"path":[...],"start":n,"end":n}) and "id".
// Decoding validates the document against an embedded JSON Schema and
// assigns fresh ids from the caller's builder; incoming ids are only used
// to map old references onto the new nodes.
package exprjson

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/stepcheck/internal/expr"
)

//go:embed schema.json
var schemaJSON []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://expr.json", doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile("schema://expr.json")
	})
	return compiled, compileErr
}

// Node is the wire form of a tree node.
type Node struct {
	Type        string         `json:"type"`
	ID          int64          `json:"id,omitempty"`
	Value       string         `json:"value,omitempty"`
	Name        string         `json:"name,omitempty"`
	Subscript   *Node          `json:"subscript,omitempty"`
	Implicit    bool           `json:"implicit,omitempty"`
	Subtraction bool           `json:"subtraction,omitempty"`
	Sqrt        bool           `json:"sqrt,omitempty"`
	Args        []*Node        `json:"args,omitempty"`
	Arg         *Node          `json:"arg,omitempty"`
	Num         *Node          `json:"num,omitempty"`
	Den         *Node          `json:"den,omitempty"`
	Base        *Node          `json:"base,omitempty"`
	Exp         *Node          `json:"exp,omitempty"`
	Radicand    *Node          `json:"radicand,omitempty"`
	Index       *Node          `json:"index,omitempty"`
	Loc         *expr.Location `json:"loc,omitempty"`
}

// IDMap maps ids found in a decoded document to the ids of the nodes
// built from it.
type IDMap map[expr.ID]expr.ID

// Validate checks data against the tree schema.
func Validate(data []byte) error {
	sch, err := schema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Decode validates data and builds a tree with ids from b.
func Decode(data []byte, b *expr.Builder) (expr.Node, error) {
	n, _, err := DecodeMapped(data, b)
	return n, err
}

// DecodeMapped is Decode that also reports how document ids map onto the
// new nodes. Nodes without an id in the document are not in the map.
func DecodeMapped(data []byte, b *expr.Builder) (expr.Node, IDMap, error) {
	if err := Validate(data); err != nil {
		return nil, nil, err
	}
	var w Node
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	ids := IDMap{}
	n, err := build(&w, b, ids)
	if err != nil {
		return nil, nil, err
	}
	return n, ids, nil
}

// Build builds a tree from an already validated wire node.
func Build(w *Node, b *expr.Builder, ids IDMap) (expr.Node, error) {
	return build(w, b, ids)
}

func build(w *Node, b *expr.Builder, ids IDMap) (expr.Node, error) {
	if w == nil {
		return nil, fmt.Errorf("missing node")
	}
	n, err := construct(w, b, ids)
	if err != nil {
		return nil, err
	}
	if w.Loc != nil {
		n = expr.Locate(n, *w.Loc)
	}
	if w.ID != 0 && ids != nil {
		ids[expr.ID(w.ID)] = n.ID()
	}
	return n, nil
}

// construct builds children before their parent so ids grow bottom-up,
// the same order as nested builder calls.
func construct(w *Node, b *expr.Builder, ids IDMap) (expr.Node, error) {
	one := func(c *Node, field string) (expr.Node, error) {
		if c == nil {
			return nil, fmt.Errorf("%s: missing %s", w.Type, field)
		}
		return build(c, b, ids)
	}
	many := func() ([]expr.Node, error) {
		if len(w.Args) < 2 {
			return nil, fmt.Errorf("%s: need at least 2 args, got %d", w.Type, len(w.Args))
		}
		out := make([]expr.Node, len(w.Args))
		for i, a := range w.Args {
			n, err := build(a, b, ids)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	switch w.Type {
	case "number":
		return b.Number(w.Value), nil
	case "ident":
		if w.Subscript == nil {
			return b.Ident(w.Name), nil
		}
		sub, err := build(w.Subscript, b, ids)
		if err != nil {
			return nil, err
		}
		return b.Subscripted(w.Name, sub), nil
	case "add":
		args, err := many()
		if err != nil {
			return nil, err
		}
		return b.Add(args...), nil
	case "mul":
		args, err := many()
		if err != nil {
			return nil, err
		}
		if w.Implicit {
			return b.ImplicitMul(args...), nil
		}
		return b.Mul(args...), nil
	case "eq", "lt", "lte", "gt", "gte":
		args, err := many()
		if err != nil {
			return nil, err
		}
		return b.Rel(expr.RelOp(w.Type), args...), nil
	case "neg":
		arg, err := one(w.Arg, "arg")
		if err != nil {
			return nil, err
		}
		if w.Subtraction {
			return b.Sub(arg), nil
		}
		return b.Neg(arg), nil
	case "div":
		num, err := one(w.Num, "num")
		if err != nil {
			return nil, err
		}
		den, err := one(w.Den, "den")
		if err != nil {
			return nil, err
		}
		return b.Div(num, den), nil
	case "pow":
		base, err := one(w.Base, "base")
		if err != nil {
			return nil, err
		}
		exp, err := one(w.Exp, "exp")
		if err != nil {
			return nil, err
		}
		return b.Pow(base, exp), nil
	case "root":
		rad, err := one(w.Radicand, "radicand")
		if err != nil {
			return nil, err
		}
		if w.Sqrt {
			return b.Sqrt(rad), nil
		}
		idx, err := one(w.Index, "index")
		if err != nil {
			return nil, err
		}
		return b.Root(rad, idx), nil
	case "infinity":
		return b.Infinity(), nil
	case "pi":
		return b.Pi(), nil
	case "ellipsis":
		return b.Ellipsis(), nil
	default:
		return nil, fmt.Errorf("unknown node type %q", w.Type)
	}
}

// Encode writes n as JSON, ids and locations included.
func Encode(n expr.Node) ([]byte, error) {
	return json.Marshal(ToWire(n))
}

// ToWire converts a tree to its wire form.
func ToWire(n expr.Node) *Node {
	w := &Node{ID: int64(n.ID()), Loc: n.Loc()}
	switch v := n.(type) {
	case *expr.Number:
		w.Type, w.Value = "number", v.Value
	case *expr.Identifier:
		w.Type, w.Name = "ident", v.Name
		if v.Subscript != nil {
			w.Subscript = ToWire(v.Subscript)
		}
	case *expr.Add:
		w.Type, w.Args = "add", wireList(v.Args)
	case *expr.Mul:
		w.Type, w.Implicit, w.Args = "mul", v.Implicit, wireList(v.Args)
	case *expr.Relation:
		w.Type, w.Args = string(v.Op), wireList(v.Args)
	case *expr.Neg:
		w.Type, w.Subtraction, w.Arg = "neg", v.Subtraction, ToWire(v.Arg)
	case *expr.Div:
		w.Type, w.Num, w.Den = "div", ToWire(v.Num), ToWire(v.Den)
	case *expr.Pow:
		w.Type, w.Base, w.Exp = "pow", ToWire(v.Base), ToWire(v.Exp)
	case *expr.Root:
		w.Type, w.Sqrt, w.Radicand = "root", v.Sqrt, ToWire(v.Radicand)
		if !v.Sqrt {
			w.Index = ToWire(v.Index)
		}
	case *expr.Infinity:
		w.Type = "infinity"
	case *expr.Pi:
		w.Type = "pi"
	case *expr.Ellipsis:
		w.Type = "ellipsis"
	default:
		panic(fmt.Sprintf("exprjson: unreachable node type %T", n))
	}
	return w
}

func wireList(ns []expr.Node) []*Node {
	out := make([]*Node, len(ns))
	for i, n := range ns {
		out[i] = ToWire(n)
	}
	return out
}

// Remap rewrites references through ids. References to unknown ids are
// kept as they are.
func Remap(refs []expr.NodeRef, ids IDMap) []expr.NodeRef {
	if refs == nil {
		return nil
	}
	out := make([]expr.NodeRef, len(refs))
	for i, r := range refs {
		out[i] = r
		if id, ok := ids[r.ID]; ok {
			out[i].ID = id
		}
	}
	return out
}
