package diagnosis

import "sort"

// Priority levels. Equation mistakes are the most specific and win over
// generic ones found on the same step.
const (
	PriorityEquation   = 10
	PriorityExpression = 5
	PriorityArithmetic = 1
)

// Kind describes a mistake kind.
type Kind struct {
	ID          MistakeID
	Priority    int
	Label       string
	Description string
	Examples    []string
}

var kinds = []Kind{
	{
		ID:          EqnAddDiff,
		Priority:    PriorityEquation,
		Label:       "Different values added",
		Description: "Added or subtracted different values on the two sides of an equation",
		Examples:    []string{"x = 5 → x + 2 = 5 + 3"},
	},
	{
		ID:          EqnMulDiff,
		Priority:    PriorityEquation,
		Label:       "Different values multiplied",
		Description: "Multiplied or divided the two sides of an equation by different values",
		Examples:    []string{"x = 5 → 2x = 3·5"},
	},
	{
		ID:          ExprAddNonIdentity,
		Priority:    PriorityExpression,
		Label:       "Added a non-zero term",
		Description: "Introduced a term that is not zero, which changes the expression's value",
		Examples:    []string{"x + 1 → x + 1 + 2"},
	},
	{
		ID:          ExprMulNonIdentity,
		Priority:    PriorityExpression,
		Label:       "Multiplied by a non-one factor",
		Description: "Introduced a factor that is not one, which changes the expression's value",
		Examples:    []string{"x + 1 → 2(x + 1)"},
	},
	{
		ID:          EvalAdd,
		Priority:    PriorityArithmetic,
		Label:       "Addition error",
		Description: "Replaced a sum of numbers with the wrong total",
		Examples:    []string{"2 + 3 → 6"},
	},
	{
		ID:          EvalMul,
		Priority:    PriorityArithmetic,
		Label:       "Multiplication error",
		Description: "Replaced a product of numbers with the wrong result",
		Examples:    []string{"4·3 → 7"},
	},
	{
		ID:          DecompAdd,
		Priority:    PriorityArithmetic,
		Label:       "Wrong sum decomposition",
		Description: "Split a number into terms that do not add up to it",
		Examples:    []string{"7 → 3 + 5"},
	},
	{
		ID:          DecompMul,
		Priority:    PriorityArithmetic,
		Label:       "Wrong factor decomposition",
		Description: "Split a number into factors whose product is not that number",
		Examples:    []string{"12 → 2·5"},
	},
}

// registry is the package-level kind registry, keyed by ID.
var registry map[MistakeID]*Kind

func init() {
	registry = make(map[MistakeID]*Kind, len(kinds))
	for i := range kinds {
		registry[kinds[i].ID] = &kinds[i]
	}
}

// GetKind returns the kind for id, or nil if id is not in the taxonomy.
func GetKind(id MistakeID) *Kind {
	return registry[id]
}

// Priority returns id's fixed priority. Unknown ids are a caller bug.
func Priority(id MistakeID) int {
	k := registry[id]
	if k == nil {
		panic("diagnosis: unknown mistake id " + string(id))
	}
	return k.Priority
}

// AllKinds returns every kind, highest priority first, then by ID.
func AllKinds() []*Kind {
	out := make([]*Kind, 0, len(registry))
	for _, k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}
