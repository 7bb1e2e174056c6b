package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

const testExperiments = `experiments:
  - name: cta_color
    variants:
      red: {value: "#f00"}
      blue: {value: "#00f"}
  - name: headline
    variants:
      ship: {}
  - name: broken
`

type testEnv struct {
	dbPath          string
	experimentsPath string
	namespace       string
}

func setupCLI(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	env := testEnv{
		dbPath:          filepath.Join(dir, "mvtees.db"),
		experimentsPath: filepath.Join(dir, "experiments.yaml"),
		namespace:       "mvtees",
	}
	if err := os.WriteFile(env.experimentsPath, []byte(testExperiments), 0o644); err != nil {
		t.Fatalf("failed to write experiments: %v", err)
	}
	return env
}

func (env testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args,
		"--backend", "sqlite",
		"--db", env.dbPath,
		"--experiments", env.experimentsPath,
		"--namespace", env.namespace,
	))

	err := rootCmd.Execute()
	return buf.String(), err
}

func (env testEnv) mustExecute(t *testing.T, args ...string) string {
	t.Helper()

	out, err := env.execute(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n\nOutput:\n%s", args, err, out)
	}
	return out
}

var assignmentLine = regexp.MustCompile(`(?m)^\s+\d+: (\S+) -> (\S+)$`)

func assignmentsOf(out string) map[string]string {
	got := map[string]string{}
	for _, m := range assignmentLine.FindAllStringSubmatch(out, -1) {
		got[m[1]] = m[2]
	}
	return got
}

func TestRun_SkipsInvalidAndRunsInOrder(t *testing.T) {
	env := setupCLI(t)

	out := env.mustExecute(t, "run")

	if !strings.Contains(out, `Skipping experiment "broken"`) {
		t.Errorf("expected broken experiment to be skipped\n\nGot:\n%s", out)
	}
	if !strings.Contains(out, "ran 2 experiment(s)") {
		t.Errorf("expected 2 experiments to run\n\nGot:\n%s", out)
	}
	if !strings.Contains(out, "headline: showing ship") {
		t.Errorf("expected onChosen output for headline\n\nGot:\n%s", out)
	}

	cta := strings.Index(out, "0: cta_color")
	headline := strings.Index(out, "1: headline")
	if cta < 0 || headline < 0 || cta > headline {
		t.Fatalf("expected history in registration order\n\nGot:\n%s", out)
	}
}

func TestRun_IsSticky(t *testing.T) {
	env := setupCLI(t)

	first := assignmentsOf(env.mustExecute(t, "run"))
	if first["cta_color"] != "red" && first["cta_color"] != "blue" {
		t.Fatalf("unexpected cta_color variant: %q", first["cta_color"])
	}

	for i := 0; i < 5; i++ {
		again := assignmentsOf(env.mustExecute(t, "run"))
		if again["cta_color"] != first["cta_color"] {
			t.Errorf("run %d: expected %q, got %q", i, first["cta_color"], again["cta_color"])
		}
	}
}

func TestVisitor_Stable(t *testing.T) {
	env := setupCLI(t)

	first := strings.TrimSpace(env.mustExecute(t, "visitor"))
	second := strings.TrimSpace(env.mustExecute(t, "visitor"))

	if first == "" {
		t.Fatal("expected a visitor id")
	}
	if first != second {
		t.Errorf("expected stable visitor id, got %q then %q", first, second)
	}
}

func TestEvent_RequiresAssignment(t *testing.T) {
	env := setupCLI(t)

	out := env.mustExecute(t, "event", "headline", "signup")
	if !strings.Contains(out, "has no assignment for 'headline'") {
		t.Errorf("expected no-assignment notice\n\nGot:\n%s", out)
	}
}

func TestEvent_UnknownExperiment(t *testing.T) {
	env := setupCLI(t)

	_, err := env.execute(t, "event", "missing", "signup")
	if err == nil {
		t.Fatal("expected error for unknown experiment")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResultsAndExport(t *testing.T) {
	env := setupCLI(t)

	env.mustExecute(t, "run")
	out := env.mustExecute(t, "event", "headline", "signup")
	if !strings.Contains(out, `headline: ship converted on "signup"`) {
		t.Errorf("expected onEvent output\n\nGot:\n%s", out)
	}

	results := env.mustExecute(t, "results", "headline")
	for _, want := range []string{"EXPERIMENT: headline", "Total", "signup"} {
		if !strings.Contains(results, want) {
			t.Errorf("results missing %q\n\nGot:\n%s", want, results)
		}
	}

	csvOut := env.mustExecute(t, "export", "headline", "--format", "csv")
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	if lines[0] != "timestamp,variant,event,value" {
		t.Errorf("unexpected csv header: %q", lines[0])
	}
	if len(lines) != 3 {
		t.Errorf("expected 2 csv rows, got %d\n\n%s", len(lines)-1, csvOut)
	}

	jsonOut := env.mustExecute(t, "export", "headline", "--format", "json")
	var export jsonExport
	if err := json.Unmarshal([]byte(jsonOut), &export); err != nil {
		t.Fatalf("invalid json export: %v\n\n%s", err, jsonOut)
	}
	if export.Experiment != "headline" {
		t.Errorf("expected experiment 'headline', got %q", export.Experiment)
	}
	if len(export.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(export.Events))
	}
	for _, e := range export.Events {
		if e.Variant != "ship" {
			t.Errorf("expected variant 'ship', got %q", e.Variant)
		}
	}
}

func TestResults_NoEvents(t *testing.T) {
	env := setupCLI(t)

	out := env.mustExecute(t, "results", "cta_color")
	if !strings.Contains(out, "No events recorded for 'cta_color'") {
		t.Errorf("expected empty results notice\n\nGot:\n%s", out)
	}
}

func TestExport_InvalidFormat(t *testing.T) {
	env := setupCLI(t)

	_, err := env.execute(t, "export", "headline", "--format", "xml")
	if err == nil {
		t.Fatal("expected error for invalid format")
	}

	// Flags persist between executions of the shared root command.
	exportFormat = "csv"
}

func TestList_ShowsAssignments(t *testing.T) {
	env := setupCLI(t)

	before := env.mustExecute(t, "list")
	if !strings.Contains(before, "INDEX") || !strings.Contains(before, "cta_color") {
		t.Errorf("expected experiment table\n\nGot:\n%s", before)
	}
	if regexp.MustCompile(`\d+\s+broken`).MatchString(before) {
		t.Errorf("invalid experiment should not be listed as registered\n\nGot:\n%s", before)
	}

	env.mustExecute(t, "run")

	after := env.mustExecute(t, "list")
	if !strings.Contains(after, "blue,red") {
		t.Errorf("expected sorted variant names\n\nGot:\n%s", after)
	}
	if !regexp.MustCompile(`headline\s+ship\s+100%\s+ship`).MatchString(after) {
		t.Errorf("expected headline to be assigned ship\n\nGot:\n%s", after)
	}
}

func TestAssignments(t *testing.T) {
	env := setupCLI(t)

	out := env.mustExecute(t, "assignments")
	if !strings.Contains(out, "No assignments yet") {
		t.Errorf("expected empty notice\n\nGot:\n%s", out)
	}

	env.mustExecute(t, "run")

	out = env.mustExecute(t, "assignments")
	if !regexp.MustCompile(`headline\s+ship`).MatchString(out) {
		t.Errorf("expected headline assignment\n\nGot:\n%s", out)
	}
}

func TestReset_ForgetsVisitor(t *testing.T) {
	env := setupCLI(t)

	env.mustExecute(t, "run")
	before := strings.TrimSpace(env.mustExecute(t, "visitor"))

	out := env.mustExecute(t, "reset", "--yes")
	if !strings.Contains(out, "Removed 3 entries") {
		t.Errorf("expected uuid and two assignments removed\n\nGot:\n%s", out)
	}

	after := strings.TrimSpace(env.mustExecute(t, "visitor"))
	if before == after {
		t.Errorf("expected a new visitor id after reset, still %q", after)
	}

	out = env.mustExecute(t, "assignments")
	if !strings.Contains(out, "No assignments yet") {
		t.Errorf("expected assignments cleared\n\nGot:\n%s", out)
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		label   string
		variant string
		event   string
	}{
		{"red | Total", "red", "Total"},
		{"red | signup", "red", "signup"},
		{"plain", "plain", ""},
		{"a | b | c", "a", "b | c"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			variant, event := splitLabel(tt.label)
			if variant != tt.variant || event != tt.event {
				t.Errorf("splitLabel(%q) = %q, %q; want %q, %q", tt.label, variant, event, tt.variant, tt.event)
			}
		})
	}
}

func TestDescribeMeta(t *testing.T) {
	if got := describeMeta(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}

	got := describeMeta(map[string]any{"value": "#f00", "type": "color"})
	if got != " (type=color, value=#f00)" {
		t.Errorf("unexpected description: %q", got)
	}
}

func TestFormatSample(t *testing.T) {
	if got := formatSample(1); got != "100%" {
		t.Errorf("expected 100%%, got %q", got)
	}
	if got := formatSample(0.25); got != "25.0%" {
		t.Errorf("expected 25.0%%, got %q", got)
	}
}

func TestRun_Metrics(t *testing.T) {
	env := setupCLI(t)
	t.Cleanup(func() { runMetrics = false })

	out := env.mustExecute(t, "run", "--metrics")
	want := `mvtees_analytics_events_total{action="headline",category="mvtees",label="ship | Total"} 1`
	if !strings.Contains(out, want) {
		t.Errorf("expected first-activation counter\n\nGot:\n%s", out)
	}

	// A sticky rerun emits nothing, so there are no counters to print.
	out = env.mustExecute(t, "run", "--metrics")
	if strings.Contains(out, "mvtees_analytics_events_total") {
		t.Errorf("expected no counters on a sticky rerun\n\nGot:\n%s", out)
	}
}

func TestRoot_RejectsDashedNamespace(t *testing.T) {
	env := setupCLI(t)
	env.namespace = "shop-eu"

	_, err := env.execute(t, "reset", "--yes")
	if err == nil {
		t.Fatal("expected error for a namespace containing '-'")
	}
	if !strings.Contains(err.Error(), "invalid --namespace") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactly_sixteen!", "exactly_sixteen!"},
		{"a_much_longer_variant", "a_much_longer..."},
		{"ééééééééééééééééé", "ééééééééééééé..."},
	}

	for _, tt := range tests {
		got := truncate(tt.in, 16)
		if got != tt.want {
			t.Errorf("truncate(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q) produced invalid UTF-8", tt.in)
		}
	}
}
