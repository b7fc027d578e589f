package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	gradeEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "problem_id", Type: field.TypeString},
		{Name: "step", Type: field.TypeInt},
		{Name: "step_key", Type: field.TypeString},
		{Name: "prior_expr", Type: field.TypeString},
		{Name: "next_expr", Type: field.TypeString},
		{Name: "valid", Type: field.TypeBool},
		{Name: "hint", Type: field.TypeString},
		{Name: "mistakes", Type: field.TypeString},
		{Name: "source", Type: field.TypeString},
	}
	gradeEventsTable = &schema.Table{
		Name:       "grade_events",
		Columns:    gradeEventsColumns,
		PrimaryKey: []*schema.Column{gradeEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "gradeevent_problem_id_sequence",
				Columns: []*schema.Column{gradeEventsColumns[3], gradeEventsColumns[1]},
			},
		},
	}

	llmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString},
		{Name: "request_body", Type: field.TypeString},
		{Name: "response_body", Type: field.TypeString},
	}
	llmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmRequestEventsColumns,
		PrimaryKey: []*schema.Column{llmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_purpose",
				Columns: []*schema.Column{llmRequestEventsColumns[5]},
			},
		},
	}

	problemSnapshotsColumns = []*schema.Column{
		{Name: "problem_id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "updated_at", Type: field.TypeInt64},
		{Name: "status", Type: field.TypeString},
		{Name: "data", Type: field.TypeString},
	}
	problemSnapshotsTable = &schema.Table{
		Name:       "problem_snapshots",
		Columns:    problemSnapshotsColumns,
		PrimaryKey: []*schema.Column{problemSnapshotsColumns[0]},
	}

	// globalSequenceTable holds a single row (id 1) with the next value
	// handed out by sequenceCounter.
	globalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64},
		{Name: "next_val", Type: field.TypeInt64},
	}
	globalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    globalSequenceColumns,
		PrimaryKey: []*schema.Column{globalSequenceColumns[0]},
	}

	tables = []*schema.Table{
		gradeEventsTable,
		llmRequestEventsTable,
		problemSnapshotsTable,
		globalSequenceTable,
	}
)

// createSchema brings the database up to date with tables. It is safe to
// run against an existing database.
func createSchema(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
