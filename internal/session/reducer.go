package session

import (
	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
)

// Action is a change to a Problem. The set of actions is closed.
type Action interface {
	isAction()
}

type (
	// Update replaces the value of the last step, keeping its status.
	Update struct{ Value expr.Node }

	// NewStep appends a pending step.
	NewStep struct{ Value expr.Node }

	// Right marks the last step correct.
	Right struct{ Hint string }

	// Wrong marks the last step incorrect.
	Wrong struct{ Mistakes []diagnosis.Mistake }

	// SetPending resets the last step to pending.
	SetPending struct{}

	// Duplicate appends a copy of the last step marked duplicate.
	Duplicate struct{}

	// Complete ends the attempt.
	Complete struct{}

	// Set replaces every step.
	Set struct{ Steps []Step }
)

func (Update) isAction()     {}
func (NewStep) isAction()    {}
func (Right) isAction()      {}
func (Wrong) isAction()      {}
func (SetPending) isAction() {}
func (Duplicate) isAction()  {}
func (Complete) isAction()   {}
func (Set) isAction()        {}

// Reduce applies a to p. When a changes nothing the result is p itself, so
// callers can compare pointers to skip work. Every action but Set touches
// only the last step. Reduce panics if p has no steps, or if Set would
// leave it with none.
func Reduce(p *Problem, a Action) *Problem {
	if len(p.Steps) == 0 {
		panic("session: reduce on a problem with no steps")
	}
	last := p.Last()

	switch a := a.(type) {
	case Update:
		if canon.Same(last.Value, a.Value) {
			return p
		}
		return p.replaceLast(last.withValue(a.Value))

	case NewStep:
		return p.append(PendingStep(a.Value))

	case Right:
		if last.Status == StatusCorrect {
			return p
		}
		return p.replaceLast(CorrectStep(last.Value, a.Hint))

	case Wrong:
		if last.Status == StatusIncorrect && diagnosis.EqualMistakes(last.Mistakes, a.Mistakes) {
			return p
		}
		return p.replaceLast(IncorrectStep(last.Value, a.Mistakes))

	case SetPending:
		if last.Status == StatusPending {
			return p
		}
		return p.replaceLast(PendingStep(last.Value))

	case Duplicate:
		return p.append(DuplicateStep(last.Value, last.Hint))

	case Complete:
		if p.Status == ProblemComplete {
			return p
		}
		out := *p
		out.Status = ProblemComplete
		return &out

	case Set:
		if len(a.Steps) == 0 {
			panic("session: set with no steps")
		}
		out := *p
		out.Steps = append([]Step(nil), a.Steps...)
		return &out

	default:
		panic("session: unreachable action")
	}
}

// replaceLast copies the step slice; the step values and their trees are
// shared with p.
func (p *Problem) replaceLast(s Step) *Problem {
	out := *p
	out.Steps = make([]Step, len(p.Steps))
	copy(out.Steps, p.Steps)
	out.Steps[len(out.Steps)-1] = s
	return &out
}

func (p *Problem) append(s Step) *Problem {
	out := *p
	out.Steps = make([]Step, len(p.Steps), len(p.Steps)+1)
	copy(out.Steps, p.Steps)
	out.Steps = append(out.Steps, s)
	return &out
}
