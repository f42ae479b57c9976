package runner

import (
	"bytes"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	diffContext = 3
	noNewline   = "\\ No newline at end of file\n"
)

// UnifiedDiff renders the change from before to after as a unified diff with
// three lines of context. Equal inputs yield "". A nil after renders a deletion.
func UnifiedDiff(name string, before, after []byte) string {
	if after != nil && bytes.Equal(before, after) {
		return ""
	}

	toFile := "b/" + name
	if after == nil {
		toFile = "/dev/null"
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        diffLines(before),
		B:        diffLines(after),
		FromFile: "a/" + name,
		ToFile:   toFile,
		Context:  diffContext,
	})
	if err != nil {
		return ""
	}

	return diff
}

// diffLines splits text into newline-terminated lines. A final line without
// a newline carries the "No newline" marker so it renders like diff -u.
func diffLines(text []byte) []string {
	if len(text) == 0 {
		return nil
	}

	lines := strings.SplitAfter(string(text), "\n")
	last := len(lines) - 1

	if lines[last] == "" {
		return lines[:last]
	}

	lines[last] += "\n" + noNewline

	return lines
}

// LineStat counts the lines added and removed between before and after.
func LineStat(before, after []byte) (added, removed int) {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToChars(string(before), string(after))

	for _, d := range dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lines) {
		n := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
			n++
		}

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		case diffmatchpatch.DiffEqual:
		}
	}

	return added, removed
}
