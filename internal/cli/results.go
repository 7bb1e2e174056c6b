package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resultsCmd = &cobra.Command{
	Use:   "results <experiment>",
	Short: "Show event counts for an experiment",
	Long: `Show how often each variant was first activated ("Total") and how many
conversion events each variant recorded. Requires the SQLite backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()

	return withSession(out, false, func(s *session) error {
		if s.events == nil {
			return fmt.Errorf("results need the sqlite backend (current: %s)", backendKind)
		}

		counts, err := s.events.Counts(context.Background(), namespace, name)
		if err != nil {
			return fmt.Errorf("failed to get results: %w", err)
		}

		if len(counts) == 0 {
			fmt.Fprintf(out, "No events recorded for '%s'.\n", name)
			return nil
		}

		fmt.Fprintf(out, "EXPERIMENT: %s\n", name)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "VARIANT           EVENT             COUNT")
		fmt.Fprintln(out, strings.Repeat("─", 42))

		for _, c := range counts {
			variant, event := splitLabel(c.Label)

			fmt.Fprintf(out, "%-16s  %-16s  %d\n", truncate(variant, 16), truncate(event, 16), c.Count)
		}
		return nil
	})
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
