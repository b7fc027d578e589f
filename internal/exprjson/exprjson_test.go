package exprjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

func TestDecode_BuildsTree(t *testing.T) {
	doc := `{"type":"eq","args":[
		{"type":"mul","implicit":true,"args":[{"type":"number","value":"2"},{"type":"ident","name":"x"}]},
		{"type":"number","value":"10"}]}`

	n, err := Decode([]byte(doc), expr.NewBuilder())
	require.NoError(t, err)
	assert.Equal(t, "(eq#5 (mul.imp#3 2 x) 10)", canon.Render(n, canon.Options{}))
}

func TestDecode_AllNodeTypes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"subtraction", `{"type":"add","args":[{"type":"ident","name":"x"},{"type":"neg","subtraction":true,"arg":{"type":"number","value":"5"}}]}`, "(add x (neg.sub 5))"},
		{"negation", `{"type":"neg","arg":{"type":"ident","name":"y"}}`, "(neg y)"},
		{"division", `{"type":"div","num":{"type":"number","value":"1"},"den":{"type":"number","value":"2.5"}}`, "(div 1 2.5)"},
		{"power", `{"type":"pow","base":{"type":"ident","name":"x"},"exp":{"type":"number","value":"2"}}`, "(exp :base x :exp 2)"},
		{"square root", `{"type":"root","sqrt":true,"radicand":{"type":"ident","name":"y"}}`, "(sqrt :radicand y :index 2)"},
		{"nth root", `{"type":"root","radicand":{"type":"ident","name":"y"},"index":{"type":"number","value":"3"}}`, "(root :radicand y :index 3)"},
		{"subscript", `{"type":"ident","name":"x","subscript":{"type":"number","value":"1"}}`, "(ident x 1)"},
		{"constants", `{"type":"add","args":[{"type":"pi"},{"type":"infinity"},{"type":"ellipsis"}]}`, "(add π ∞ ...)"},
		{"inequality", `{"type":"lte","args":[{"type":"ident","name":"x"},{"type":"number","value":"3"}]}`, "(lte x 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode([]byte(tt.doc), expr.NewBuilder())
			require.NoError(t, err)
			assert.Equal(t, tt.want, canon.Structural(n))
		})
	}
}

func TestDecode_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"type":`},
		{"unknown type", `{"type":"matrix"}`},
		{"single arg sum", `{"type":"add","args":[{"type":"number","value":"1"}]}`},
		{"bad number", `{"type":"number","value":"abc"}`},
		{"missing den", `{"type":"div","num":{"type":"number","value":"1"}}`},
		{"root without index", `{"type":"root","radicand":{"type":"ident","name":"y"}}`},
		{"unknown field", `{"type":"ident","name":"x","color":"red"}`},
		{"incomplete loc", `{"type":"ident","name":"x","loc":{"path":[0]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), expr.NewBuilder())
			assert.Error(t, err)
		})
	}
}

func TestDecode_Location(t *testing.T) {
	doc := `{"type":"add","args":[
		{"type":"ident","name":"x","loc":{"path":[0],"start":0,"end":1}},
		{"type":"number","value":"1"}]}`

	n, err := Decode([]byte(doc), expr.NewBuilder())
	require.NoError(t, err)

	x := n.(*expr.Add).Args[0]
	require.NotNil(t, x.Loc())
	assert.Equal(t, []int{0}, x.Loc().Path)
	assert.Equal(t, 1, x.Loc().End)
	assert.Nil(t, n.Loc())
}

func TestDecodeMapped_RemapsIDs(t *testing.T) {
	doc := `{"type":"add","id":30,"args":[
		{"type":"ident","name":"x","id":10},
		{"type":"number","value":"1","id":20}]}`

	b := expr.NewBuilderFrom(100)
	n, ids, err := DecodeMapped([]byte(doc), b)
	require.NoError(t, err)

	a := n.(*expr.Add)
	assert.Equal(t, a.Args[0].ID(), ids[10])
	assert.Equal(t, a.Args[1].ID(), ids[20])
	assert.Equal(t, n.ID(), ids[30])

	refs := Remap([]expr.NodeRef{{ID: 20}, {ID: 99}}, ids)
	assert.Equal(t, a.Args[1].ID(), refs[0].ID)
	assert.Equal(t, expr.ID(99), refs[1].ID)
	assert.Nil(t, Remap(nil, ids))
}

func TestEncode_RoundTrip(t *testing.T) {
	b := expr.NewBuilder()
	tree := b.Eq(
		b.Add(
			expr.Locate(b.ImplicitMul(b.Number("2"), b.Ident("x")), expr.Location{Path: []int{0}, Start: 0, End: 2}),
			b.Sub(b.Number("3")),
		),
		b.Div(b.Sqrt(b.Ident("y")), b.Root(b.Pi(), b.Number("3"))),
	)

	data, err := Encode(tree)
	require.NoError(t, err)
	require.NoError(t, Validate(data))

	got, ids, err := DecodeMapped(data, expr.NewBuilder())
	require.NoError(t, err)
	assert.Equal(t, canon.Structural(tree), canon.Structural(got))

	var wire func(w *Node)
	wire = func(w *Node) {
		if w == nil {
			return
		}
		id, ok := ids[expr.ID(w.ID)]
		if assert.True(t, ok, "id %d not mapped", w.ID) {
			assert.NotNil(t, expr.Find(got, id))
		}
		for _, c := range append([]*Node{w.Subscript, w.Arg, w.Num, w.Den, w.Base, w.Exp, w.Radicand, w.Index}, w.Args...) {
			wire(c)
		}
	}
	wire(ToWire(tree))

	mul := got.(*expr.Relation).Args[0].(*expr.Add).Args[0]
	require.NotNil(t, mul.Loc())
	assert.Equal(t, 2, mul.Loc().End)
}
