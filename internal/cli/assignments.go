package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var assignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "Show stored assignments for this visitor",
	Long: `Show every sticky assignment stored for this visitor, including
experiments no longer in the experiments file.`,
	Args: cobra.NoArgs,
	RunE: runAssignments,
}

func init() {
	rootCmd.AddCommand(assignmentsCmd)
}

func runAssignments(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	return withSession(out, false, func(s *session) error {
		ctx := context.Background()
		prefix := s.engine.VisitorID(ctx) + "-"

		entries, err := s.store.Entries(ctx)
		if err != nil {
			return fmt.Errorf("failed to list assignments: %w", err)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EXPERIMENT\tVARIANT\tUPDATED")

		found := 0
		for _, e := range entries {
			if !strings.HasPrefix(e.Key, prefix) {
				continue
			}

			var variant string
			if err := json.Unmarshal(e.Value, &variant); err != nil {
				variant = string(e.Value)
			}

			updated := "-"
			if !e.UpdatedAt.IsZero() {
				updated = e.UpdatedAt.Format("2006-01-02 15:04")
			}

			fmt.Fprintf(w, "%s\t%s\t%s\n", strings.TrimPrefix(e.Key, prefix), variant, updated)
			found++
		}

		if found == 0 {
			fmt.Fprintln(out, "No assignments yet. Run: mvtees run")
			return nil
		}
		return w.Flush()
	})
}
