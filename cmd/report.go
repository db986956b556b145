package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/engagement"
	"github.com/abhisek/essaylens/internal/render"
	"github.com/abhisek/essaylens/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Browse stored evaluations",
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := windowOpts(cmd, time.Now())
		if err != nil {
			return err
		}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Student = flagString(cmd, "student")
		opts.Session = flagString(cmd, "session")

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		evs, err := s.EvaluationRepo().List(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("list evaluations: %w", err)
		}
		if len(evs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No evaluations found.")
			return nil
		}
		_, err = lipgloss.Fprintln(cmd.OutOrStdout(), render.Evaluations(evs))
		return err
	},
}

var reportViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the report of a stored evaluation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		ev, err := s.EvaluationRepo().Get(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("evaluation %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("get evaluation: %w", err)
		}

		out := cmd.OutOrStdout()
		if flagString(cmd, "format") == "json" {
			_, err := fmt.Fprintln(out, string(ev.Report))
			return err
		}

		var r engagement.Report
		if err := json.Unmarshal(ev.Report, &r); err != nil {
			return fmt.Errorf("decode stored report: %w", err)
		}
		_, err = lipgloss.Fprint(out, render.EvaluationHeader(ev)+render.Report(&r))
		return err
	},
}

var reportStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize engagement across stored evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		evs, err := s.EvaluationRepo().List(cmd.Context(), store.QueryOpts{
			Student: flagString(cmd, "student"),
			Session: flagString(cmd, "session"),
		})
		if err != nil {
			return fmt.Errorf("list evaluations: %w", err)
		}

		scores := make([]engagement.Score, len(evs))
		for i, ev := range evs {
			scores[i] = engagement.Score(ev.EngagementScore)
		}
		sum := engagement.Summarize(scores)

		if flagString(cmd, "format") == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}
		_, err = lipgloss.Fprint(cmd.OutOrStdout(), render.Summary(sum))
		return err
	},
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// addWindowFlags registers the sequence and time bounds shared by the list
// commands.
func addWindowFlags(c *cobra.Command) {
	c.Flags().Int64("after", 0, "Only show records with a sequence number above this")
	c.Flags().Int64("before", 0, "Only show records with a sequence number below this")
	c.Flags().String("since", "", "Only show records at or after this time (RFC 3339, YYYY-MM-DD, or a duration ago such as 36h)")
	c.Flags().String("until", "", "Only show records at or before this time (same forms as --since)")
}

// windowOpts reads the flags registered by addWindowFlags.
func windowOpts(cmd *cobra.Command, now time.Time) (store.QueryOpts, error) {
	var opts store.QueryOpts
	opts.After, _ = cmd.Flags().GetInt64("after")
	opts.Before, _ = cmd.Flags().GetInt64("before")

	var err error
	if opts.From, err = parseWhen(flagString(cmd, "since"), now); err != nil {
		return opts, fmt.Errorf("--since: %w", err)
	}
	if opts.To, err = parseWhen(flagString(cmd, "until"), now); err != nil {
		return opts, fmt.Errorf("--until: %w", err)
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
		return opts, fmt.Errorf("--until %s is before --since %s", opts.To.Format(time.RFC3339), opts.From.Format(time.RFC3339))
	}
	return opts, nil
}

// parseWhen accepts an RFC 3339 timestamp, a UTC date, or a duration
// counted back from now. Empty means unbounded.
func parseWhen(v string, now time.Time) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time, date or duration", v)
}

func init() {
	reportListCmd.Flags().IntP("limit", "n", 20, "Number of evaluations to show")
	addWindowFlags(reportListCmd)
	for _, c := range []*cobra.Command{reportListCmd, reportStatsCmd} {
		c.Flags().String("student", "", "Filter by student label")
		c.Flags().String("session", "", "Filter by session label")
	}
	reportViewCmd.Flags().String("format", "text", "Output format: text or json")
	reportStatsCmd.Flags().String("format", "text", "Output format: text or json")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportViewCmd)
	reportCmd.AddCommand(reportStatsCmd)
}
