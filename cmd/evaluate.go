package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/engagement"
	"github.com/abhisek/essaylens/internal/render"
	"github.com/abhisek/essaylens/internal/store"
	"github.com/abhisek/essaylens/internal/typing"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one essay submission",
	Long: `Evaluate one essay and print its analysis report.

The input is either a full submission document (--submission, "-" for stdin)
shaped {"typing_data": {...}, "lecture_text": "...", "essay_text": "..."},
or a typing log with separate lecture and essay text files.`,
	Example: `  essaylens evaluate --submission essay.json --student s42 --session week-3
  essaylens evaluate --log keys.json --lecture lecture.txt --essay essay.txt --format json`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.String("submission", "", `Submission JSON file ("-" for stdin)`)
	f.String("log", "", "Typing log JSON file")
	f.String("lecture", "", "Lecture text file")
	f.String("essay", "", "Essay text file")
	f.String("format", "text", "Output format: text or json")
	f.Bool("features", false, "Also show the classifier input features (text format)")
	f.String("student", "", "Student label stored with the evaluation")
	f.String("session", "", "Session label stored with the evaluation")
	f.Bool("no-store", false, "Do not persist the evaluation or journal service calls")
	f.Duration("timeout", 2*time.Minute, "Deadline for the whole evaluation")
	evaluateCmd.MarkFlagsMutuallyExclusive("submission", "log")
	evaluateCmd.MarkFlagsOneRequired("submission", "log")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	sub, raw, err := readSubmission(cmd)
	if err != nil {
		return err
	}

	noStore, _ := cmd.Flags().GetBool("no-store")
	var st *store.Store
	if !noStore {
		st, err = openStore()
		if err != nil {
			return err
		}
		defer st.Close()
	}

	svc, err := buildServices(cmd, st)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	ev, err := svc.Evaluator.Evaluate(ctx, sub)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	if st != nil {
		id, err := saveEvaluation(ctx, cmd, st.EvaluationRepo(), ev, raw)
		if err != nil {
			return err
		}
		session.logger.Info("evaluation saved", "id", id)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ev.Report)
	}
	features, _ := cmd.Flags().GetBool("features")
	_, err = lipgloss.Fprint(out, render.Evaluation(ev, features))
	return err
}

// readSubmission returns the submission and the raw document to persist.
func readSubmission(cmd *cobra.Command) (*engagement.Submission, []byte, error) {
	if path, _ := cmd.Flags().GetString("submission"); path != "" {
		data, err := readInput(cmd, path)
		if err != nil {
			return nil, nil, err
		}
		sub, err := engagement.DecodeSubmission(data)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		return sub, data, nil
	}

	logPath, _ := cmd.Flags().GetString("log")
	data, err := readInput(cmd, logPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := typing.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", logPath, err)
	}
	sub := &engagement.Submission{Log: log}
	if sub.LectureText, err = readText(cmd, "lecture"); err != nil {
		return nil, nil, err
	}
	if sub.EssayText, err = readText(cmd, "essay"); err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return nil, nil, fmt.Errorf("encode submission: %w", err)
	}
	return sub, raw, nil
}

func readText(cmd *cobra.Command, flag string) (string, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path == "" {
		return "", nil
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func saveEvaluation(ctx context.Context, cmd *cobra.Command, repo store.EvaluationRepo, ev *engagement.Evaluation, raw []byte) (string, error) {
	report, err := json.Marshal(ev.Report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	student, _ := cmd.Flags().GetString("student")
	sessionLabel, _ := cmd.Flags().GetString("session")
	rec := &store.Evaluation{
		Student:         student,
		Session:         sessionLabel,
		EngagementScore: int(ev.Report.EngagementScore),
		TypingStyle:     ev.Report.TypingStyle,
		SimilarityScore: ev.Report.SimilarityScore,
		Submission:      raw,
		Report:          report,
	}
	if err := repo.Save(ctx, rec); err != nil {
		return "", fmt.Errorf("save evaluation: %w", err)
	}
	return rec.ID, nil
}
