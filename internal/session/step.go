// Package session tracks one attempt at a problem: the sequence of steps a
// learner wrote and how each was graded.
package session

import (
	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
)

// StepStatus is the grading state of a step.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusCorrect   StepStatus = "correct"
	StatusIncorrect StepStatus = "incorrect"
	StatusDuplicate StepStatus = "duplicate"
)

// Step is one recorded state of an attempt. Correct and duplicate steps
// carry a hint and never mistakes; incorrect steps carry mistakes, possibly
// none when the step could not be explained. Build steps with the
// constructors below.
type Step struct {
	Status   StepStatus
	Value    expr.Node
	Hint     string
	Mistakes []diagnosis.Mistake
}

// PendingStep returns an ungraded step.
func PendingStep(value expr.Node) Step {
	return Step{Status: StatusPending, Value: value}
}

// CorrectStep returns a step graded valid.
func CorrectStep(value expr.Node, hint string) Step {
	return Step{Status: StatusCorrect, Value: value, Hint: hint}
}

// DuplicateStep returns a step that repeats the one before it.
func DuplicateStep(value expr.Node, hint string) Step {
	return Step{Status: StatusDuplicate, Value: value, Hint: hint}
}

// IncorrectStep returns a step graded invalid. A nil mistakes list is
// stored as empty.
func IncorrectStep(value expr.Node, mistakes []diagnosis.Mistake) Step {
	if mistakes == nil {
		mistakes = []diagnosis.Mistake{}
	}
	return Step{Status: StatusIncorrect, Value: value, Mistakes: mistakes}
}

// withValue returns s with its value replaced and everything else kept.
func (s Step) withValue(value expr.Node) Step {
	s.Value = value
	return s
}

// ProblemStatus is the state of the attempt as a whole.
type ProblemStatus string

const (
	ProblemIncomplete ProblemStatus = "incomplete"
	ProblemComplete   ProblemStatus = "complete"
)

// Problem is the state of one attempt. It is never modified in place;
// Reduce returns a new Problem for every change and the same pointer when
// an action changes nothing.
type Problem struct {
	ID     string
	Steps  []Step
	Status ProblemStatus
}

// NewProblem starts an incomplete attempt at start.
func NewProblem(id string, start expr.Node) *Problem {
	return &Problem{
		ID:     id,
		Steps:  []Step{PendingStep(start)},
		Status: ProblemIncomplete,
	}
}

// Last returns the last step. It panics if p has no steps.
func (p *Problem) Last() Step {
	if len(p.Steps) == 0 {
		panic("session: problem has no steps")
	}
	return p.Steps[len(p.Steps)-1]
}
