package doctor

import (
	"context"
	"errors"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
		{CheckStatus(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.status.String())
		})
	}
}

func TestCheckResultJSON(t *testing.T) {
	out, err := jsoniter.Marshal(CheckResult{Name: "cache_dir", Status: StatusWarn, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"cache_dir","status":"warn","message":"m"}`, string(out))
}

// mockCheck is a test implementation of Check.
type mockCheck struct {
	name     string
	category string
	result   CheckResult
	fixed    CheckResult
	fixErr   error
	fixCalls int
}

func (m *mockCheck) Name() string     { return m.name }
func (m *mockCheck) Category() string { return m.category }
func (m *mockCheck) Run(context.Context) CheckResult {
	if m.fixCalls > 0 && m.fixErr == nil {
		return m.fixed
	}
	return m.result
}
func (m *mockCheck) Fix() error {
	m.fixCalls++
	return m.fixErr
}

func TestRunAll(t *testing.T) {
	checks := []Check{
		&mockCheck{name: "check1", result: CheckResult{Name: "check1", Status: StatusPass}},
		&mockCheck{name: "check2", result: CheckResult{Name: "check2", Status: StatusFail}},
	}

	results := RunAll(context.Background(), checks)

	require.Len(t, results, 2)
	assert.Equal(t, StatusPass, results[0].Status)
	assert.Equal(t, StatusFail, results[1].Status)
}

func TestRunAllParallel(t *testing.T) {
	checks := []Check{
		&mockCheck{name: "check1", result: CheckResult{Name: "check1", Status: StatusPass}},
		&mockCheck{name: "check2", result: CheckResult{Name: "check2", Status: StatusWarn}},
		&mockCheck{name: "check3", result: CheckResult{Name: "check3", Status: StatusFail}},
	}

	results := RunAllParallel(context.Background(), checks)

	require.Len(t, results, 3)
	assert.Equal(t, "check1", results[0].Name)
	assert.Equal(t, StatusWarn, results[1].Status)
	assert.Equal(t, StatusFail, results[2].Status)
}

func TestApplyFixes(t *testing.T) {
	ok := &mockCheck{
		name:   "fixable",
		result: CheckResult{Status: StatusFail, Fixable: true},
		fixed:  CheckResult{Status: StatusPass, Message: "fixed"},
	}
	broken := &mockCheck{
		name:   "fix fails",
		result: CheckResult{Status: StatusWarn, Fixable: true},
		fixErr: errors.New("nope"),
	}
	manual := &mockCheck{name: "manual", result: CheckResult{Status: StatusFail}}
	passing := &mockCheck{name: "passing", result: CheckResult{Status: StatusPass, Fixable: true}}

	checks := []Check{ok, broken, manual, passing}
	ctx := context.Background()
	before := RunAll(ctx, checks)
	after := ApplyFixes(ctx, checks, before)

	assert.Equal(t, StatusPass, after[0].Status)
	assert.Equal(t, "fixed", after[0].Message)
	assert.Equal(t, StatusWarn, after[1].Status)
	assert.Equal(t, StatusFail, after[2].Status)

	assert.Equal(t, 1, ok.fixCalls)
	assert.Equal(t, 1, broken.fixCalls)
	assert.Zero(t, manual.fixCalls)
	assert.Zero(t, passing.fixCalls)
	assert.Equal(t, StatusFail, before[0].Status, "input results are untouched")
}

func TestGroupResults(t *testing.T) {
	checks := []Check{
		&mockCheck{name: "t1", category: CategoryTerminal},
		&mockCheck{name: "c1", category: CategoryConfig},
		&mockCheck{name: "t2", category: CategoryTerminal},
		&mockCheck{name: "x", category: "OTHER"},
	}
	results := []CheckResult{{Name: "t1"}, {Name: "c1"}, {Name: "t2"}, {Name: "x"}}

	groups := GroupResults(checks, results)

	require.Len(t, groups, 2)
	assert.Equal(t, CategoryConfig, groups[0].Name)
	assert.Equal(t, CategoryTerminal, groups[1].Name)
	assert.Equal(t, []CheckResult{{Name: "t1"}, {Name: "t2"}}, groups[1].Results)
}

func TestCountByStatus(t *testing.T) {
	results := []CheckResult{
		{Status: StatusPass},
		{Status: StatusPass},
		{Status: StatusWarn},
		{Status: StatusFail},
	}

	counts := CountByStatus(results)

	assert.Equal(t, 2, counts[StatusPass])
	assert.Equal(t, 1, counts[StatusWarn])
	assert.Equal(t, 1, counts[StatusFail])
}

func TestHasFailuresAndIssues(t *testing.T) {
	tests := []struct {
		name     string
		results  []CheckResult
		failures bool
		issues   bool
	}{
		{"all pass", []CheckResult{{Status: StatusPass}, {Status: StatusPass}}, false, false},
		{"with warn only", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, false, true},
		{"with fail", []CheckResult{{Status: StatusPass}, {Status: StatusFail}}, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.failures, HasFailures(tc.results))
			assert.Equal(t, tc.issues, HasIssues(tc.results))
		})
	}
}

func TestFixableCount(t *testing.T) {
	results := []CheckResult{
		{Status: StatusPass, Fixable: true},  // Pass, not counted
		{Status: StatusFail, Fixable: true},  // Counted
		{Status: StatusFail, Fixable: false}, // Not counted
		{Status: StatusWarn, Fixable: true},  // Counted
	}

	assert.Equal(t, 2, FixableCount(results))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    string
	}{
		{"all good", []CheckResult{{Status: StatusPass}}, "Everything looks good"},
		{"one issue", []CheckResult{{Status: StatusFail}}, "1 issue found"},
		{"multiple issues", []CheckResult{{Status: StatusFail}, {Status: StatusWarn}}, "2 issues found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Summary(tc.results))
		})
	}
}
