package diagnosis

import "github.com/abhisek/stepcheck/internal/expr"

// Matcher detects one kind of mistake in a step from prior to next.
// Implementations are pure and safe for concurrent use; they return nil
// when their pattern does not apply.
type Matcher interface {
	Name() string
	Match(prior, next expr.Node) []Mistake
}

// DefaultMatchers returns the matchers in emission order. The order only
// breaks ties between mistakes of equal priority.
func DefaultMatchers() []Matcher {
	return []Matcher{
		&EquationMatcher{Op: OpAdd},
		&EquationMatcher{Op: OpMul},
		&IdentityMatcher{Op: OpAdd},
		&IdentityMatcher{Op: OpMul},
		&EvalMatcher{Op: OpAdd},
		&EvalMatcher{Op: OpMul},
		&DecompMatcher{Op: OpAdd},
		&DecompMatcher{Op: OpMul},
	}
}

// RunMatchers runs every matcher and concatenates their candidates in
// matcher order.
func RunMatchers(matchers []Matcher, prior, next expr.Node) []Mistake {
	var out []Mistake
	for _, m := range matchers {
		out = append(out, m.Match(prior, next)...)
	}
	return out
}
