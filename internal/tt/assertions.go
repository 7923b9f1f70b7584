package tt

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// AssertTextEqual fails the test with a unified line diff when expected and actual differ.
// Use it for multi-line HTML where testify's single-line quoting is hard to read.
func AssertTextEqual(t *testing.T, expected, actual string) bool {
	t.Helper()
	if expected == actual {
		return true
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		t.Errorf("texts differ (diff failed: %v)\nexpected:\n%s\nactual:\n%s", err, expected, actual)
		return false
	}
	t.Errorf("texts differ:\n%s", diff)
	return false
}
