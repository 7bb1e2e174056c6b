package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pattonwebz/mvtees/internal/analytics"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <experiment>",
	Short: "Export raw analytics events",
	Long: `Export the analytics events of one experiment in CSV or JSON format.
Requires the SQLite backend.

Examples:
  mvtees export cta_color --format csv > cta_color.csv
  mvtees export cta_color --format json > cta_color.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	name := args[0]

	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	out := cmd.OutOrStdout()
	return withSession(out, false, func(s *session) error {
		if s.events == nil {
			return fmt.Errorf("export needs the sqlite backend (current: %s)", backendKind)
		}

		events, err := s.events.Events(context.Background(), namespace, name)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}

		if exportFormat == "csv" {
			return exportCSV(out, events)
		}
		return exportJSON(out, name, events)
	})
}

func exportCSV(out io.Writer, events []analytics.Event) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	// Write header
	if err := w.Write([]string{"timestamp", "variant", "event", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write rows
	for _, e := range events {
		variant, event := splitLabel(e.Label)
		value := ""
		if e.Value != nil {
			value = strconv.Itoa(*e.Value)
		}
		row := []string{
			strconv.FormatInt(e.CreatedAt.Unix(), 10),
			variant,
			event,
			value,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

type jsonExport struct {
	Experiment string      `json:"experiment"`
	Events     []jsonEvent `json:"events"`
}

type jsonEvent struct {
	Timestamp int64  `json:"timestamp"`
	Variant   string `json:"variant"`
	Event     string `json:"event"`
	Value     *int   `json:"value,omitempty"`
}

func exportJSON(out io.Writer, name string, events []analytics.Event) error {
	export := jsonExport{
		Experiment: name,
		Events:     make([]jsonEvent, len(events)),
	}

	for i, e := range events {
		variant, event := splitLabel(e.Label)
		export.Events[i] = jsonEvent{
			Timestamp: e.CreatedAt.Unix(),
			Variant:   variant,
			Event:     event,
			Value:     e.Value,
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
