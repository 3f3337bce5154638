package generator

import (
	"github.com/pmezard/go-difflib/difflib"
)

// DiffContext is the number of unchanged lines shown around each change.
const DiffContext = 3

// Diff returns a unified diff between two versions of path, or "" when they
// are identical.
func Diff(path string, before, after []byte) string {
	if string(before) == string(after) {
		return ""
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  DiffContext,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return text
}
