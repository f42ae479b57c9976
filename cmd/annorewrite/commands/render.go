package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
	"github.com/Sumatoshi-tech/annorewrite/pkg/rewrite"
	"github.com/Sumatoshi-tech/annorewrite/pkg/runner"
)

var (
	diffHeader  = color.New(color.Bold)
	diffHunk    = color.New(color.FgCyan)
	diffAdded   = color.New(color.FgGreen)
	diffRemoved = color.New(color.FgRed)
	statusWarn  = color.New(color.FgYellow)
	statusError = color.New(color.FgRed)
	statusOK    = color.New(color.FgGreen)
)

// writeDiff prints a unified diff with colored lines.
func writeDiff(w io.Writer, diff string) {
	for line := range strings.Lines(diff) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			diffHeader.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			diffHunk.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			diffAdded.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			diffRemoved.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

// writeFileNotes prints skipped, failed and partially rewritten files.
func writeFileNotes(w io.Writer, report *runner.Report) {
	for _, f := range report.Files {
		switch f.Status {
		case observability.FileSkipped:
			statusWarn.Fprintf(w, "skipped %s: %s\n", f.Path, f.Reason)
		case observability.FileFailed:
			statusError.Fprintf(w, "failed  %s: %v\n", f.Path, f.Err)
		}
	}

	for _, fail := range report.SynthesisFailures() {
		statusWarn.Fprintf(w, "%s:%d: %s left unchanged: %v\n", fail.Path, fail.Event.Line, fail.Event.Rule, fail.Event.Err)
	}
}

// summary renders the one-line result of a run.
func summary(report *runner.Report, wrote bool) string {
	var size, lines int

	for _, f := range report.Files {
		size += f.Size
		lines += f.Lines
	}

	verb := "would change"
	if wrote {
		verb = "changed"
	}

	nodes := report.Nodes()

	return fmt.Sprintf("%s: %d files (%s, %d lines) scanned, %d %s, %d deleted, %d skipped, %d failed; %d annotations rewritten, %d synthesis failures",
		report.Recipe,
		len(report.Files), humanize.Bytes(uint64(size)), lines,
		report.Count(observability.FileChanged), verb,
		report.Count(observability.FileDeleted),
		report.Count(observability.FileSkipped),
		report.Count(observability.FileFailed),
		nodes[rewrite.StateSpliced], nodes[rewrite.StateSynthesisFailed],
	)
}

func writeSummary(w io.Writer, report *runner.Report, wrote bool) {
	line := summary(report, wrote)

	switch {
	case report.Count(observability.FileFailed) > 0:
		statusError.Fprintln(w, line)
	case report.Pending() > 0:
		statusWarn.Fprintln(w, line)
	default:
		statusOK.Fprintln(w, line)
	}
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

// writeCheckTable lists every file with pending rewrites or problems.
func writeCheckTable(w io.Writer, report *runner.Report) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"File", "Status", "Lines", "Rewrites", "Failures", "Note"})

	for _, f := range report.Files {
		if f.Status == observability.FileUnchanged {
			continue
		}

		var spliced, failed int

		for _, ev := range f.Events {
			if ev.Rule == "" {
				continue
			}

			switch ev.State {
			case rewrite.StateSpliced:
				spliced++
			case rewrite.StateSynthesisFailed:
				failed++
			}
		}

		note := f.Reason
		if f.Err != nil {
			note = f.Err.Error()
		}

		lines := fmt.Sprintf("+%d -%d", f.Added, f.Removed)

		tbl.AppendRow(table.Row{f.Path, string(f.Status), lines, spliced, failed, note})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d files", len(report.Files)), "", "", "", "", fmt.Sprintf("%d pending", report.Pending())})
	tbl.Render()
}

// writeRecipeTable lists recipes and their steps.
func writeRecipeTable(w io.Writer, recipes []*recipe.Recipe) {
	tbl := newTable(w)
	tbl.AppendHeader(table.Row{"Recipe", "Steps", "Description"})

	for _, rc := range recipes {
		steps := make([]string, 0, len(rc.Steps))
		for _, s := range rc.Steps {
			steps = append(steps, s.Name())
		}

		tbl.AppendRow(table.Row{rc.Name, strings.Join(steps, "\n"), rc.Description})
	}

	tbl.Render()
}
