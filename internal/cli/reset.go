package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newResetCmd())
}

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the visitor and every assignment",
		Long: `Delete everything stored under the namespace: the visitor id and all
sticky assignments. The next run starts as a brand new visitor.

Analytics events are kept.

Example:
  mvtees reset --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if !yes {
				ok, err := confirmReset()
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			return withSession(out, false, func(s *session) error {
				removed, err := s.store.Clear(context.Background())
				if err != nil {
					return fmt.Errorf("failed to reset: %w", err)
				}
				fmt.Fprintf(out, "Removed %d entries from namespace '%s'.\n", removed, namespace)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func confirmReset() (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Delete the visitor id and all assignments in '%s'", namespace),
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return true, nil
}
