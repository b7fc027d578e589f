package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent-built SQL and the global
// sequence counter.
type eventRepo struct {
	db      *sql.DB
	builder *entsql.DialectBuilder
	seq     *sequenceCounter
}

var llmColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := r.builder.Insert(llmRequestEventsTable.Name).
		Columns(llmColumns[1:]...).
		Values(
			seqNum,
			time.Now().UnixMilli(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}

	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	sel := r.builder.Select(llmColumns...).
		From(r.builder.Table(llmRequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	opts.apply(sel)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEventRecord
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEventRecord, error) {
	query, args := r.builder.Select(llmColumns...).
		From(r.builder.Table(llmRequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	e, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s scanner) (*LLMRequestEventRecord, error) {
	var e LLMRequestEventRecord
	var ts int64
	err := s.Scan(
		&e.ID, &e.Sequence, &ts, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	e.Timestamp = time.UnixMilli(ts).UTC()
	return &e, nil
}

// apply adds the sequence and time bounds and the limit of o to sel.
func (o QueryOpts) apply(sel *entsql.Selector) {
	if o.After > 0 {
		sel.Where(entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		sel.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", o.From.UnixMilli()))
	}
	if !o.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", o.To.UnixMilli()))
	}
	if o.Limit > 0 {
		sel.Limit(o.Limit)
	}
}

// coalesced wraps an aggregate so empty groups read as zero.
func coalesced(agg string) string {
	return "COALESCE(" + agg + ", 0)"
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	query, args := r.builder.Select(
		"purpose",
		entsql.Count("*"),
		coalesced(entsql.Sum("input_tokens")),
		coalesced(entsql.Sum("output_tokens")),
		coalesced(entsql.Avg("latency_ms")),
	).
		From(r.builder.Table(llmRequestEventsTable.Name)).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		var avg float64
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	query, args := r.builder.Select(
		"model",
		entsql.Count("*"),
		coalesced(entsql.Sum("input_tokens")),
		coalesced(entsql.Sum("output_tokens")),
	).
		From(r.builder.Table(llmRequestEventsTable.Name)).
		GroupBy("model").
		OrderBy("model").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM model usage: %w", err)
	}
	defer rows.Close()

	var out []LLMModelUsage
	for rows.Next() {
		var u LLMModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan LLM model usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
