package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/render"
	"github.com/abhisek/essaylens/internal/store"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from a lecture transcript",
	Long: `Answer a student's question using only the lecture transcript. Questions
that are not similar enough to the transcript are refused without calling
the LLM.`,
	Example: `  essaylens ask --transcript lecture.txt "Why does binary search need sorted input?"`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := flagString(cmd, "question")
		if len(args) == 1 {
			question = args[0]
		}
		if strings.TrimSpace(question) == "" {
			return fmt.Errorf("a question is required (argument or --question)")
		}
		transcript, err := readText(cmd, "transcript")
		if err != nil {
			return err
		}

		noStore, _ := cmd.Flags().GetBool("no-store")
		var st *store.Store
		if !noStore {
			if st, err = openStore(); err != nil {
				return err
			}
			defer st.Close()
		}
		svc, err := buildServices(cmd, st)
		if err != nil {
			return err
		}
		answerer, err := svc.Answerer(cmd.Context())
		if err != nil {
			return err
		}

		ans, err := answerer.Answer(cmd.Context(), transcript, question)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagString(cmd, "format") == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ans)
		}
		if !ans.InScope {
			_, err = lipgloss.Fprintln(out, render.Hint.Render(ans.Text))
			return err
		}
		_, err = lipgloss.Fprintln(out, ans.Text)
		return err
	},
}

func init() {
	askCmd.Flags().String("transcript", "", `Lecture transcript file ("-" for stdin)`)
	askCmd.Flags().StringP("question", "q", "", "Question to answer")
	askCmd.Flags().String("format", "text", "Output format: text or json")
	askCmd.Flags().Bool("no-store", false, "Do not journal service calls")
	_ = askCmd.MarkFlagRequired("transcript")
}
