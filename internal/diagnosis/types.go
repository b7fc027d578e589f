package diagnosis

import "github.com/abhisek/stepcheck/internal/expr"

// MistakeID names a kind of mistake. The set is closed; see the taxonomy.
type MistakeID string

const (
	EqnAddDiff         MistakeID = "EQN_ADD_DIFF"
	EqnMulDiff         MistakeID = "EQN_MUL_DIFF"
	ExprAddNonIdentity MistakeID = "EXPR_ADD_NON_IDENTITY"
	ExprMulNonIdentity MistakeID = "EXPR_MUL_NON_IDENTITY"
	EvalAdd            MistakeID = "EVAL_ADD"
	EvalMul            MistakeID = "EVAL_MUL"
	DecompAdd          MistakeID = "DECOMP_ADD"
	DecompMul          MistakeID = "DECOMP_MUL"
)

// Mistake is a classified, located explanation of an invalid step.
// PrevNodes and NextNodes reference nodes in the prior and next trees
// without owning them.
type Mistake struct {
	ID        MistakeID      `json:"id"`
	PrevNodes []expr.NodeRef `json:"prevNodes"`
	NextNodes []expr.NodeRef `json:"nextNodes"`
}

// EqualMistakes reports whether a and b hold the same mistakes, referencing
// the same nodes, in the same order.
func EqualMistakes(a, b []Mistake) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			!equalRefs(a[i].PrevNodes, b[i].PrevNodes) ||
			!equalRefs(a[i].NextNodes, b[i].NextNodes) {
			return false
		}
	}
	return true
}

func equalRefs(a, b []expr.NodeRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

// Classification is an LLM's pick of a mistake kind for a step no matcher
// could explain.
type Classification struct {
	ID             MistakeID // Empty when the LLM found no match
	Confidence     float64   // 0.0–1.0
	ClassifierName string
	Reasoning      string
}
