package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	Long:  `List registered experiments in run order with this visitor's assignment.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	return withSession(out, true, func(s *session) error {
		ctx := context.Background()
		experiments := s.engine.Registry().All()

		if len(experiments) == 0 {
			fmt.Fprintln(out, "No experiments yet.")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Define them in %s:\n", experimentsPath)
			fmt.Fprintln(out, "  experiments:")
			fmt.Fprintln(out, "    - name: cta_color")
			fmt.Fprintln(out, "      variants: {red: {}, blue: {}}")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tNAME\tVARIANTS\tSAMPLE\tASSIGNED")

		for i, exp := range experiments {
			assigned, ok := s.engine.Assignment(ctx, exp.Name())
			if !ok {
				assigned = "-"
			}

			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				i,
				exp.Name(),
				strings.Join(exp.VariantNames(), ","),
				formatSample(exp.SampleRate()),
				assigned,
			)
		}

		return w.Flush()
	})
}

func formatSample(rate float64) string {
	if rate == 1 {
		return "100%"
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}
