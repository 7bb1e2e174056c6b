package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runMetrics bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every experiment for this visitor",
	Long: `Load the experiments file, register every valid experiment, and run them
in file order. Each experiment activates the visitor's sticky variant,
choosing one at random the first time.

Example:
  mvtees run --experiments experiments.yaml
  mvtees run --metrics`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "print the analytics counters emitted by this run")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	return withSession(out, true, func(s *session) error {
		ctx := context.Background()

		if s.engine.Registry().Len() == 0 {
			fmt.Fprintln(out, "No valid experiments to run.")
			return nil
		}

		if err := s.engine.RunAll(ctx); err != nil {
			return fmt.Errorf("failed to run experiments: %w", err)
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "Visitor %s ran %d experiment(s):\n", s.engine.VisitorID(ctx), len(s.engine.History()))
		for i, r := range s.engine.History() {
			fmt.Fprintf(out, "  %d: %s -> %s\n", i, r.Experiment, r.Variant)
		}

		if runMetrics {
			fmt.Fprintln(out)
			return printMetrics(out, s.metrics)
		}
		return nil
	})
}
