package session

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/exprjson"
)

type problemDoc struct {
	ID     string        `json:"id"`
	Status ProblemStatus `json:"status"`
	Steps  []stepDoc     `json:"steps"`
}

type stepDoc struct {
	Status   StepStatus          `json:"status"`
	Value    json.RawMessage     `json:"value"`
	Hint     string              `json:"hint,omitempty"`
	Mistakes []diagnosis.Mistake `json:"mistakes,omitempty"`
}

// MarshalProblem encodes p for storage. Trees keep their ids so mistake
// references survive a round trip.
func MarshalProblem(p *Problem) ([]byte, error) {
	doc := problemDoc{ID: p.ID, Status: p.Status, Steps: make([]stepDoc, len(p.Steps))}
	for i, s := range p.Steps {
		value, err := exprjson.Encode(s.Value)
		if err != nil {
			return nil, fmt.Errorf("encode step %d: %w", i, err)
		}
		doc.Steps[i] = stepDoc{Status: s.Status, Value: value, Hint: s.Hint, Mistakes: s.Mistakes}
	}
	return json.Marshal(doc)
}

// UnmarshalProblem decodes a stored problem, building trees with ids from
// b. Mistake references are rewritten to the new ids: previous-node
// references resolve against the step before, next-node references
// against the step itself.
func UnmarshalProblem(data []byte, b *expr.Builder) (*Problem, error) {
	var doc problemDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal problem: %w", err)
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("problem %s has no steps", doc.ID)
	}
	switch doc.Status {
	case ProblemIncomplete, ProblemComplete:
	default:
		return nil, fmt.Errorf("problem %s: unknown status %q", doc.ID, doc.Status)
	}

	p := &Problem{ID: doc.ID, Status: doc.Status, Steps: make([]Step, len(doc.Steps))}
	var prev exprjson.IDMap
	for i, sd := range doc.Steps {
		value, ids, err := exprjson.DecodeMapped(sd.Value, b)
		if err != nil {
			return nil, fmt.Errorf("decode step %d: %w", i, err)
		}
		switch sd.Status {
		case StatusPending:
			p.Steps[i] = PendingStep(value)
		case StatusCorrect:
			p.Steps[i] = CorrectStep(value, sd.Hint)
		case StatusDuplicate:
			p.Steps[i] = DuplicateStep(value, sd.Hint)
		case StatusIncorrect:
			ms := make([]diagnosis.Mistake, len(sd.Mistakes))
			for j, m := range sd.Mistakes {
				ms[j] = diagnosis.Mistake{
					ID:        m.ID,
					PrevNodes: exprjson.Remap(m.PrevNodes, prev),
					NextNodes: exprjson.Remap(m.NextNodes, ids),
				}
			}
			p.Steps[i] = IncorrectStep(value, ms)
		default:
			return nil, fmt.Errorf("step %d: unknown status %q", i, sd.Status)
		}
		prev = ids
	}
	return p, nil
}
