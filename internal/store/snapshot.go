package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo with one row per problem.
type snapshotRepo struct {
	db      *sql.DB
	builder *entsql.DialectBuilder
}

func (r *snapshotRepo) SaveProblem(ctx context.Context, snap *ProblemSnapshot) error {
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	query, args := r.builder.Insert(problemSnapshotsTable.Name).
		Columns("problem_id", "sequence", "updated_at", "status", "data").
		Values(snap.ProblemID, snap.Sequence, updated.UnixMilli(), snap.Status, string(snap.Data)).
		OnConflict(
			entsql.ConflictColumns("problem_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) LoadProblem(ctx context.Context, problemID string) (*ProblemSnapshot, error) {
	query, args := r.builder.Select("problem_id", "sequence", "updated_at", "status", "data").
		From(r.builder.Table(problemSnapshotsTable.Name)).
		Where(entsql.EQ("problem_id", problemID)).
		Query()

	var s ProblemSnapshot
	var updated int64
	var data string
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.ProblemID, &s.Sequence, &updated, &s.Status, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	s.UpdatedAt = time.UnixMilli(updated).UTC()
	s.Data = []byte(data)
	return &s, nil
}
