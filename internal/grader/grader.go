// Package grader decides whether a step from one expression to the next is
// valid and, when it is not, which mistakes explain it.
package grader

import (
	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Verdict is the outcome of grading one step. A valid verdict carries a
// hint and no mistakes. An invalid verdict with no mistakes means the step
// is wrong but no matcher could say why.
type Verdict struct {
	Valid    bool                `json:"valid"`
	Hint     string              `json:"hint,omitempty"`
	Mistakes []diagnosis.Mistake `json:"mistakes,omitempty"`
}

// Unexplained reports whether v is invalid with no classified mistake.
func (v Verdict) Unexplained() bool {
	return !v.Valid && len(v.Mistakes) == 0
}

// Grade grades a step with the default matchers.
func Grade(prior, next expr.Node) Verdict {
	return GradeWith(diagnosis.DefaultMatchers(), prior, next)
}

// GradeWith grades a step with the given matchers.
func GradeWith(matchers []diagnosis.Matcher, prior, next expr.Node) Verdict {
	return decide(diagnosis.RunMatchers(matchers, prior, next), prior, next)
}

// decide turns matcher candidates into a verdict.
func decide(candidates []diagnosis.Mistake, prior, next expr.Node) Verdict {
	if len(candidates) > 0 {
		return Verdict{Mistakes: diagnosis.Resolve(candidates)}
	}
	if Equivalent(prior, next) {
		return Verdict{Valid: true, Hint: Hint(prior, next)}
	}
	return Verdict{Mistakes: []diagnosis.Mistake{}}
}
