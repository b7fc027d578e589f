package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out one increasing sequence shared by grade and
// LLM events, so events stored in different tables still have a total
// order. A single row holds the next value; the mutex keeps callers in
// this process from racing on it and the transaction covers other
// processes.
type sequenceCounter struct {
	mu      sync.Mutex
	db      *sql.DB
	builder *entsql.DialectBuilder
}

func newSequenceCounter(ctx context.Context, db *sql.DB, d string) (*sequenceCounter, error) {
	b := entsql.Dialect(d)
	query, args := b.Insert(globalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("init sequence: %w", err)
	}
	return &sequenceCounter{db: db, builder: b}, nil
}

// Next returns the next sequence number.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	tx, err := sc.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer tx.Rollback()

	query, args := sc.builder.Update(globalSequenceTable.Name).
		Add("next_val", 1).
		Where(entsql.EQ("id", 1)).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	query, args = sc.builder.Select("next_val").
		From(sc.builder.Table(globalSequenceTable.Name)).
		Where(entsql.EQ("id", 1)).
		Query()
	var next int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return next - 1, nil
}
