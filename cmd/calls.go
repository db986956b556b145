package cmd

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/render"
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Inspect the service call journal",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent service calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		failed, _ := cmd.Flags().GetBool("failed")
		opts, err := windowOpts(cmd, time.Now())
		if err != nil {
			return err
		}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Service = flagString(cmd, "service")
		opts.Purpose = flagString(cmd, "purpose")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		calls, err := s.CallRepo().QueryServiceCalls(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query calls: %w", err)
		}
		if failed {
			kept := calls[:0]
			for _, c := range calls {
				if !c.Success {
					kept = append(kept, c)
				}
			}
			calls = kept
		}

		out := cmd.OutOrStdout()
		if len(calls) == 0 {
			fmt.Fprintln(out, "No service calls found.")
			return nil
		}
		if _, err := lipgloss.Fprintln(out, render.Calls(calls)); err != nil {
			return err
		}
		if failed {
			for _, c := range calls {
				fmt.Fprintf(out, "%d  %s\n", c.ID, strings.TrimSpace(c.ErrorMessage))
			}
		}
		return nil
	},
}

var callsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts, latency, token usage and estimated LLM cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		usage, err := s.CallRepo().UsageByService(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No service calls recorded yet.")
			return nil
		}
		_, err = lipgloss.Fprintln(cmd.OutOrStdout(), render.Usage(usage))
		return err
	},
}

func init() {
	callsListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	callsListCmd.Flags().StringP("service", "s", "", "Filter by service (embedding, similarity, grammar, classifier, llm)")
	callsListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (drift, topics, similarity, grammar, classify, qa)")
	callsListCmd.Flags().Bool("failed", false, "Only show failed calls, with their errors")
	addWindowFlags(callsListCmd)

	callsCmd.AddCommand(callsListCmd)
	callsCmd.AddCommand(callsStatsCmd)
}
