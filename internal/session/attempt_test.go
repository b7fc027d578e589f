package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/grader"
	"github.com/abhisek/stepcheck/internal/llm"
	"github.com/abhisek/stepcheck/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:session_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAttempt_GradesSteps(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	b := expr.NewBuilder()

	// 2x + 5 = 10
	start := b.Eq(b.Add(b.ImplicitMul(b.Number("2"), b.Ident("x")), b.Number("5")), b.Number("10"))
	a := NewAttempt(start, grader.NewService(grader.DefaultConfig()),
		WithEvents(st.EventRepo()), WithSnapshots(st.SnapshotRepo()))

	// 2x = 5
	step, err := a.Submit(ctx, b.Eq(b.ImplicitMul(b.Number("2"), b.Ident("x")), b.Number("5")))
	require.NoError(t, err)
	assert.Equal(t, StatusCorrect, step.Status)
	assert.Equal(t, "Subtracted 5 from both sides.", step.Hint)

	// x = 5 → x + 2 = 5 + 3
	a2 := NewAttempt(b.Eq(b.Ident("x"), b.Number("5")), grader.NewService(grader.DefaultConfig()),
		WithEvents(st.EventRepo()))
	step, err = a2.Submit(ctx, b.Eq(b.Add(b.Ident("x"), b.Number("2")), b.Add(b.Number("5"), b.Number("3"))))
	require.NoError(t, err)
	assert.Equal(t, StatusIncorrect, step.Status)
	require.Len(t, step.Mistakes, 1)
	assert.Equal(t, diagnosis.EqnAddDiff, step.Mistakes[0].ID)

	events, err := st.EventRepo().QueryGradeEvents(ctx, a.Problem().ID, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Valid)
	assert.Equal(t, 1, events[0].Step)
	assert.Equal(t, SourceGrader, events[0].Source)
	assert.Equal(t, "(eq (mul.imp 2 x) 5)", events[0].Next)

	events, err = st.EventRepo().QueryGradeEvents(ctx, a2.Problem().ID, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"EQN_ADD_DIFF"}, events[0].MistakeIDs)
}

func TestAttempt_DuplicateStep(t *testing.T) {
	b := expr.NewBuilder()
	a := NewAttempt(b.Add(b.Number("2"), b.Number("3")), grader.NewService(grader.DefaultConfig()))

	_, err := a.Submit(context.Background(), b.Number("6"))
	require.NoError(t, err)
	step, err := a.Submit(context.Background(), b.Number("6"))
	require.NoError(t, err)

	assert.Equal(t, StatusDuplicate, step.Status)
	p := a.Problem()
	require.Len(t, p.Steps, 3)
	assert.Equal(t, StatusIncorrect, p.Steps[1].Status)
}

func TestAttempt_Finish(t *testing.T) {
	b := expr.NewBuilder()
	a := NewAttempt(b.Ident("x"), grader.NewService(grader.DefaultConfig()))

	first := a.Finish(context.Background())
	assert.Equal(t, ProblemComplete, first.Status)
	assert.Same(t, first, a.Finish(context.Background()))

	_, err := a.Submit(context.Background(), b.Ident("y"))
	assert.ErrorIs(t, err, ErrComplete)
}

func TestAttempt_SnapshotResume(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	b := expr.NewBuilder()

	a := NewAttempt(b.Add(b.Number("2"), b.Number("3")), grader.NewService(grader.DefaultConfig()),
		WithSnapshots(st.SnapshotRepo()))
	_, err := a.Submit(ctx, b.Number("5"))
	require.NoError(t, err)
	a.Finish(ctx)

	snap, err := st.SnapshotRepo().LoadProblem(ctx, a.Problem().ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "complete", snap.Status)

	resumed, err := LoadAttempt(ctx, st.SnapshotRepo(), a.Problem().ID, expr.NewBuilder(), grader.NewService(grader.DefaultConfig()))
	require.NoError(t, err)
	require.NotNil(t, resumed)
	p := resumed.Problem()
	require.Len(t, p.Steps, 2)
	assert.Equal(t, StatusCorrect, p.Steps[1].Status)
	assert.Equal(t, ProblemComplete, p.Status)

	missing, err := LoadAttempt(ctx, st.SnapshotRepo(), "nope", expr.NewBuilder(), grader.NewService(grader.DefaultConfig()))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttempt_ReclassifiesUnexplainedStep(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	resp := json.RawMessage(`{"mistake_id":"EQN_MUL_DIFF","confidence":0.8,"reasoning":"Divided only the left side"}`)
	diag := diagnosis.NewService(llm.NewMockProvider(llm.MockResponse{Content: resp}))
	defer diag.Close()

	changes := make(chan *Problem, 16)
	b := expr.NewBuilder()
	a := NewAttempt(b.Eq(b.ImplicitMul(b.Number("2"), b.Ident("x")), b.Number("10")),
		grader.NewService(grader.DefaultConfig(), grader.WithDiagnosis(diag)),
		WithEvents(st.EventRepo()),
		WithExplain(),
		WithOnChange(func(p *Problem) { changes <- p }),
	)

	step, err := a.Submit(ctx, b.Eq(b.Ident("x"), b.Number("8")))
	require.NoError(t, err)
	require.Equal(t, StatusIncorrect, step.Status)
	require.Empty(t, step.Mistakes)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case p := <-changes:
			if ms := p.Steps[1].Mistakes; len(ms) == 1 {
				assert.Equal(t, diagnosis.EqnMulDiff, ms[0].ID)
				events, err := st.EventRepo().QueryGradeEvents(ctx, p.ID, store.QueryOpts{})
				require.NoError(t, err)
				require.Len(t, events, 2)
				assert.Equal(t, SourceLLM, events[1].Source)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for reclassification")
		}
	}
}

func TestAttempt_Reclassify(t *testing.T) {
	ctx := context.Background()
	b := expr.NewBuilder()
	a := NewAttempt(b.Add(b.Number("2"), b.Number("3")), grader.NewService(grader.DefaultConfig()))
	_, err := a.Submit(ctx, b.Number("6"))
	require.NoError(t, err)

	err = a.Reclassify(ctx, 1, &diagnosis.Classification{ID: "NOT_A_KIND"})
	assert.Error(t, err)

	err = a.Reclassify(ctx, 5, &diagnosis.Classification{ID: diagnosis.EvalMul})
	assert.Error(t, err)

	before := a.Problem()
	require.NoError(t, a.Reclassify(ctx, 1, &diagnosis.Classification{ID: diagnosis.EvalMul}))
	assert.Same(t, before, a.Problem(), "a classified step is left alone")
}
