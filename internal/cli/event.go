package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newEventCmd())
}

func newEventCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "event <experiment> <event>",
		Short: "Record a conversion event",
		Long: `Record a conversion event against the visitor's assigned variant.

Nothing is recorded if the visitor has not been assigned yet; run the
experiment first.

Example:
  mvtees event cta_color signup`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			experimentName, eventName := args[0], args[1]
			out := cmd.OutOrStdout()

			return withSession(out, true, func(s *session) error {
				ctx := context.Background()

				if _, ok := s.engine.Registry().ByName(experimentName); !ok {
					return fmt.Errorf("experiment '%s' not found", experimentName)
				}

				if _, ok := s.engine.Assignment(ctx, experimentName); !ok {
					fmt.Fprintf(out, "Visitor has no assignment for '%s' yet. Run: mvtees run\n", experimentName)
					return nil
				}

				if err := s.engine.RecordEvent(ctx, experimentName, eventName); err != nil {
					return fmt.Errorf("failed to record event: %w", err)
				}
				return nil
			})
		},
	}
}
