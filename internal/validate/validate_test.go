package validate

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"linetrack/internal/engine"
	"linetrack/internal/report"
)

func match(t *testing.T, old, nw []string) *engine.Result {
	t.Helper()
	e, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	res, err := e.Match(context.Background(), old, nw)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	return res
}

func sample(t *testing.T) *engine.Result {
	return match(t,
		[]string{"func main() {", "print(a, b, c)", "", "x := 1", "}"},
		[]string{"func main() {", "print(a,", "    b, c)", "", "}", "y := 2"},
	)
}

func TestResultAcceptsEngineOutput(t *testing.T) {
	if err := Result(sample(t)); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if err := Result(match(t, nil, []string{"a"})); err != nil {
		t.Fatalf("Result (empty old): %v", err)
	}
}

func TestResultReportsViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*engine.Result)
		want   string
	}{
		{"shared target", func(r *engine.Result) { r.Mapping[4] = []int{0} }, "already mapped"},
		{"unsorted", func(r *engine.Result) { r.Mapping[1] = []int{2, 1} }, "strictly ascending"},
		{"blank", func(r *engine.Result) { r.Mapping[2] = []int{3} }, "blank old line"},
		{"both", func(r *engine.Result) { r.UnmatchedDeletions = append(r.UnmatchedDeletions, 0) }, "both mapped and unmatched"},
		{"missing", func(r *engine.Result) { delete(r.Mapping, 0) }, "neither mapped nor unmatched"},
		{"range", func(r *engine.Result) { r.Mapping[1] = []int{1, 99} }, "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := sample(t)
			tc.mutate(res)
			err := Result(res)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestReportJSON(t *testing.T) {
	res := sample(t)
	rep := report.FromResult("old.go", "new.go", res)
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, rep); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := ReportJSON(buf.Bytes()); err != nil {
		t.Fatalf("ReportJSON: %v\n%s", err, buf.String())
	}
}

func TestReportJSONRejects(t *testing.T) {
	cases := map[string]string{
		"empty":      ``,
		"trailing":   `{"old_file":"a","new_file":"b","mappings":[],"unmatched_deletions":[],"unmatched_additions":[]} {}`,
		"missing":    `{"old_file":"a","mappings":[],"unmatched_deletions":[],"unmatched_additions":[]}`,
		"zero line":  `{"old_file":"a","new_file":"b","mappings":[{"old":0,"new":[1],"kind":"seed"}],"unmatched_deletions":[],"unmatched_additions":[]}`,
		"bad kind":   `{"old_file":"a","new_file":"b","mappings":[{"old":1,"new":[1],"kind":"merge"}],"unmatched_deletions":[],"unmatched_additions":[]}`,
		"extra key":  `{"old_file":"a","new_file":"b","mappings":[],"unmatched_deletions":[],"unmatched_additions":[],"x":1}`,
		"semantic":   `{"old_file":"a","new_file":"b","mappings":[{"old":1,"new":[1],"kind":"seed"},{"old":2,"new":[1],"kind":"fuzzy"}],"unmatched_deletions":[],"unmatched_additions":[]}`,
		"overlap":    `{"old_file":"a","new_file":"b","mappings":[{"old":1,"new":[2],"kind":"seed"}],"unmatched_deletions":[],"unmatched_additions":[2]}`,
		"unsorted":   `{"old_file":"a","new_file":"b","mappings":[{"old":2,"new":[1],"kind":"seed"},{"old":1,"new":[2],"kind":"seed"}],"unmatched_deletions":[],"unmatched_additions":[]}`,
		"bad claims": `{"old_file":"a","new_file":"b","mappings":[{"old":1,"new":[1,2],"kind":"split","claims":[{"line":1,"kind":"fuzzy","score":0.5}]}],"unmatched_deletions":[],"unmatched_additions":[]}`,
	}
	for name, raw := range cases {
		if err := ReportJSON([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
