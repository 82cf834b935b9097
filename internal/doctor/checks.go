// Package doctor runs the diagnostics behind `pulse doctor`: config health,
// daemon cache freshness and terminal image support.
package doctor

import (
	"context"
	"fmt"
	"sync"
)

// Categories in report order.
const (
	CategoryConfig   = "CONFIG"
	CategoryCache    = "CACHE"
	CategoryTerminal = "TERMINAL"
)

// Categories lists every category in the order reports show them.
var Categories = []string{CategoryConfig, CategoryCache, CategoryTerminal}

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name so JSON reports stay readable.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // Whether --fix can address this
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns one of the Category constants.
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult

	// Fix attempts to automatically fix the issue (if supported).
	// Returns nil if fix was successful or not applicable.
	Fix() error
}

// RunAll executes all checks in order and returns the results.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run(ctx)
	}
	return results
}

// RunAllParallel executes all checks concurrently. Results keep the order of
// checks.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run(ctx)
		}(i, check)
	}

	wg.Wait()
	return results
}

// ApplyFixes runs Fix for every fixable failure or warning and re-runs the
// check afterwards. Checks whose fix fails keep their original result.
func ApplyFixes(ctx context.Context, checks []Check, results []CheckResult) []CheckResult {
	out := make([]CheckResult, len(results))
	copy(out, results)
	for i, r := range out {
		if !r.Fixable || r.Status == StatusPass {
			continue
		}
		if err := checks[i].Fix(); err == nil {
			out[i] = checks[i].Run(ctx)
		}
	}
	return out
}

// Group is one category's slice of a report.
type Group struct {
	Name    string        `json:"name"`
	Results []CheckResult `json:"results"`
}

// GroupResults pairs results with their checks' categories, in Categories
// order. Empty categories are omitted.
func GroupResults(checks []Check, results []CheckResult) []Group {
	byCat := make(map[string][]CheckResult)
	for i, c := range checks {
		byCat[c.Category()] = append(byCat[c.Category()], results[i])
	}
	var groups []Group
	for _, cat := range Categories {
		if rs := byCat[cat]; len(rs) > 0 {
			groups = append(groups, Group{Name: cat, Results: rs})
		}
	}
	return groups
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && (r.Status == StatusFail || r.Status == StatusWarn) {
			count++
		}
	}
	return count
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
