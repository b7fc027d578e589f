package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var gradeColumns = []string{
	"id", "sequence", "timestamp", "problem_id", "step", "step_key",
	"prior_expr", "next_expr", "valid", "hint", "mistakes", "source",
}

func (r *eventRepo) AppendGradeEvent(ctx context.Context, data GradeEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ids := data.MistakeIDs
	if ids == nil {
		ids = []string{}
	}
	mistakes, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal mistakes: %w", err)
	}

	query, args := r.builder.Insert(gradeEventsTable.Name).
		Columns(gradeColumns[1:]...).
		Values(
			seqNum,
			time.Now().UnixMilli(),
			data.ProblemID,
			data.Step,
			data.Key,
			data.Prior,
			data.Next,
			data.Valid,
			data.Hint,
			string(mistakes),
			data.Source,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save grade event: %w", err)
	}
	return nil
}

// gradeEventsQuery selects a problem's grade events in sequence order.
func (r *eventRepo) gradeEventsQuery(problemID string, opts QueryOpts) (string, []any) {
	sel := r.builder.Select(gradeColumns...).
		From(r.builder.Table(gradeEventsTable.Name)).
		Where(entsql.EQ("problem_id", problemID)).
		OrderBy(entsql.Asc("sequence"))
	opts.apply(sel)
	return sel.Query()
}

func (r *eventRepo) QueryGradeEvents(ctx context.Context, problemID string, opts QueryOpts) ([]GradeEventRecord, error) {
	query, args := r.gradeEventsQuery(problemID, opts)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query grade events: %w", err)
	}
	defer rows.Close()

	var out []GradeEventRecord
	for rows.Next() {
		var e GradeEventRecord
		var ts int64
		var mistakes string
		if err := rows.Scan(
			&e.ID, &e.Sequence, &ts, &e.ProblemID, &e.Step, &e.Key, &e.Prior,
			&e.Next, &e.Valid, &e.Hint, &mistakes, &e.Source,
		); err != nil {
			return nil, fmt.Errorf("scan grade event: %w", err)
		}
		if err := json.Unmarshal([]byte(mistakes), &e.MistakeIDs); err != nil {
			return nil, fmt.Errorf("unmarshal mistakes: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
