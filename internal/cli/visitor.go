package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var visitorCmd = &cobra.Command{
	Use:   "visitor",
	Short: "Show the visitor id",
	Long:  `Show this visitor's id, creating and storing one if none exists yet.`,
	Args:  cobra.NoArgs,
	RunE:  runVisitor,
}

func init() {
	rootCmd.AddCommand(visitorCmd)
}

func runVisitor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	return withSession(out, false, func(s *session) error {
		fmt.Fprintln(out, s.engine.VisitorID(context.Background()))
		return nil
	})
}
