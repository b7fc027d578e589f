package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stepcheck/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history <problem-id>",
	Short: "Show the grade events of a saved problem",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		id := args[0]

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		snap, err := s.SnapshotRepo().LoadProblem(ctx, id)
		if err != nil {
			return fmt.Errorf("load problem: %w", err)
		}
		events, err := s.EventRepo().QueryGradeEvents(ctx, id, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if snap == nil && len(events) == 0 {
			return fmt.Errorf("problem %s not found", id)
		}

		if snap != nil {
			fmt.Fprintf(out, "Problem %s: %s (version %d, updated %s)\n\n",
				id, snap.Status, snap.Sequence, snap.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-6s  %-6s  %s\n", "Step", "Timestamp", "Source", "Valid", "Result")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, e := range events {
			valid := "✓"
			result := e.Hint
			if !e.Valid {
				valid = "✗"
				result = strings.Join(e.MistakeIDs, ", ")
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-6s  %-6s  %s\n",
				e.Step,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Source,
				valid,
				result,
			)
			fmt.Fprintf(out, "       %s\n", truncate(e.Prior+" -> "+e.Next, 72))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 0, "Number of events to show (0 = all)")
}
