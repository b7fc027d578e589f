package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/stepcheck/internal/diagnosis"
	"github.com/abhisek/stepcheck/internal/expr"
	"github.com/abhisek/stepcheck/internal/exprjson"
	"github.com/abhisek/stepcheck/internal/grader"
	"github.com/abhisek/stepcheck/internal/llm"
	"github.com/abhisek/stepcheck/internal/session"
)

// script is a worked problem: a starting tree followed by the learner's
// submissions in order.
type script struct {
	Start  json.RawMessage   `json:"start"`
	Steps  []json.RawMessage `json:"steps"`
	Finish bool              `json:"finish"`
}

var attemptCmd = &cobra.Command{
	Use:   "attempt <script.json|->",
	Short: "Run a worked problem through the grader and save it",
	Long: "Run a script of the form {\"start\": tree, \"steps\": [tree, ...], \"finish\": bool}.\n" +
		"Each step is graded against the one before it. Steps and grade events are saved to the database.\n" +
		"With --resume, start is ignored and the steps continue the saved problem.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetString("resume")
		explain, _ := cmd.Flags().GetBool("explain")

		sc, err := readScript(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		gopts := []grader.Option{grader.WithLogger(logger)}
		var diag *diagnosis.Service
		if explain {
			provider, err := llm.NewProviderFromEnv(ctx, s.EventRepo(), logger)
			if err != nil {
				return fmt.Errorf("initialize LLM: %w", err)
			}
			diag = diagnosis.NewService(provider, diagnosis.WithServiceLogger(logger.Named("diagnosis")))
			gopts = append(gopts, grader.WithDiagnosis(diag))
		}
		g := grader.NewService(grader.ConfigFromEnv(), gopts...)

		aopts := []session.AttemptOption{
			session.WithEvents(s.EventRepo()),
			session.WithSnapshots(s.SnapshotRepo()),
			session.WithAttemptLogger(logger),
		}
		if explain {
			aopts = append(aopts, session.WithExplain())
		}

		b := expr.NewBuilder()
		var a *session.Attempt
		if resume != "" {
			a, err = session.LoadAttempt(ctx, s.SnapshotRepo(), resume, b, g, aopts...)
			if err != nil {
				return err
			}
			if a == nil {
				return fmt.Errorf("problem %s not found", resume)
			}
		} else {
			if len(sc.Start) == 0 {
				return errors.New("script has no start tree")
			}
			start, err := exprjson.Decode(sc.Start, b)
			if err != nil {
				return fmt.Errorf("start: %w", err)
			}
			a = session.NewAttempt(start, g, aopts...)
		}

		for i, raw := range sc.Steps {
			value, err := exprjson.Decode(raw, b)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			if _, err := a.Submit(ctx, value); err != nil {
				if errors.Is(err, session.ErrComplete) {
					return fmt.Errorf("step %d: %w", i+1, err)
				}
				logger.Warn("step left pending", zap.Int("step", i+1), zap.Error(err))
			}
		}
		if sc.Finish {
			a.Finish(ctx)
		}

		// Closing drains queued classifications into the attempt.
		if diag != nil {
			diag.Close()
		}

		writeProblem(cmd.OutOrStdout(), a.Problem())
		return nil
	},
}

func readScript(arg string, stdin io.Reader) (*script, error) {
	var data []byte
	var err error
	if arg == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var sc script
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &sc, nil
}

func writeProblem(w io.Writer, p *session.Problem) {
	fmt.Fprintf(w, "Problem %s (%s)\n", p.ID, p.Status)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for i, st := range p.Steps {
		if i == 0 {
			fmt.Fprintf(w, "%3d  start\n", i)
			continue
		}
		detail := st.Hint
		if st.Status == session.StatusIncorrect {
			ids := make([]string, len(st.Mistakes))
			for j, m := range st.Mistakes {
				ids[j] = string(m.ID)
			}
			detail = strings.Join(ids, ", ")
			if detail == "" {
				detail = "unexplained"
			}
		}
		fmt.Fprintf(w, "%3d  %-10s  %s\n", i, st.Status, detail)
	}
}

func init() {
	attemptCmd.Flags().String("resume", "", "Continue the saved problem with this id")
	attemptCmd.Flags().Bool("explain", false, "Ask the LLM to classify unexplained invalid steps")
}
