package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/grader"
	"github.com/abhisek/stepcheck/internal/llm"
	"github.com/abhisek/stepcheck/internal/locate"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade one step from a prior tree to a next tree",
	Long: "Grade one step. Trees are JSON documents given inline, as a file path, or as - for stdin.\n" +
		"With --explain, an invalid step no rule can explain is sent to the configured LLM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		priorArg, _ := cmd.Flags().GetString("prior")
		nextArg, _ := cmd.Flags().GetString("next")
		explain, _ := cmd.Flags().GetBool("explain")
		asJSON, _ := cmd.Flags().GetBool("json")

		b := expr.NewBuilder()
		prior, next, err := readPair(priorArg, nextArg, cmd.InOrStdin(), b)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		opts := []grader.Option{grader.WithLogger(logger)}
		var diag *diagnosis.Service
		if explain {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			provider, err := llm.NewProviderFromEnv(ctx, s.EventRepo(), logger)
			if err != nil {
				return fmt.Errorf("initialize LLM: %w", err)
			}
			diag = diagnosis.NewService(provider, diagnosis.WithServiceLogger(logger.Named("diagnosis")))
			opts = append(opts, grader.WithDiagnosis(diag))
		}
		svc := grader.NewService(grader.ConfigFromEnv(), opts...)

		classified := make(chan *diagnosis.Classification, 1)
		var cb func(*diagnosis.Classification)
		if explain {
			cb = func(c *diagnosis.Classification) { classified <- c }
		}

		v, err := svc.GradeExplained(ctx, prior, next, cb)
		if err != nil {
			return err
		}

		// Close waits for the queued classification, if any.
		var c *diagnosis.Classification
		if diag != nil {
			diag.Close()
			select {
			case c = <-classified:
			default:
			}
		}

		if asJSON {
			return writeVerdictJSON(cmd.OutOrStdout(), v, c)
		}
		writeVerdict(cmd.OutOrStdout(), v, c)
		return nil
	},
}

type verdictOutput struct {
	grader.Verdict
	Spans          []locate.Span             `json:"spans,omitempty"`
	Classification *diagnosis.Classification `json:"classification,omitempty"`
}

func writeVerdictJSON(w io.Writer, v grader.Verdict, c *diagnosis.Classification) error {
	return writeJSON(w, verdictOutput{Verdict: v, Spans: locate.Merge(locate.All(v.Mistakes)), Classification: c})
}

func writeVerdict(w io.Writer, v grader.Verdict, c *diagnosis.Classification) {
	if v.Valid {
		fmt.Fprintf(w, "✓ valid: %s\n", v.Hint)
		return
	}
	fmt.Fprintln(w, "✗ invalid")
	if len(v.Mistakes) == 0 {
		fmt.Fprintln(w, "  no known mistake matches this step")
	}
	for _, m := range v.Mistakes {
		label := string(m.ID)
		if k := diagnosis.GetKind(m.ID); k != nil {
			label = fmt.Sprintf("%s  %s", m.ID, k.Label)
		}
		fmt.Fprintf(w, "  %s\n", label)
		for _, s := range locate.Merge(locate.Spans(m)) {
			fmt.Fprintf(w, "    %-4s row %s  %d..%d\n", s.Side, formatPath(s.Path), s.Start, s.End)
		}
	}
	if c != nil && c.ID != "" {
		fmt.Fprintf(w, "  llm: %s (confidence %.2f) %s\n", c.ID, c.Confidence, c.Reasoning)
	}
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(p)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func init() {
	gradeCmd.Flags().String("prior", "", "Prior tree (JSON, file path, or -)")
	gradeCmd.Flags().String("next", "", "Next tree (JSON, file path, or -)")
	gradeCmd.Flags().Bool("explain", false, "Ask the LLM to classify unexplained invalid steps")
	gradeCmd.Flags().Bool("json", false, "Print the verdict as JSON")
	_ = gradeCmd.MarkFlagRequired("prior")
	_ = gradeCmd.MarkFlagRequired("next")
}
