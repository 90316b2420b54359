package cliapp

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	coreapp "semresolve/internal/core/app"
	"semresolve/internal/data/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

const maxListed = 10

func printSummary(w io.Writer, res *coreapp.Result) {
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Run %s: %d files in %v\n", res.RunID, res.Files, res.Duration)

	if len(res.ParseErrors) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d files could not be parsed:", len(res.ParseErrors))))
		for i, fe := range res.ParseErrors {
			if i == maxListed {
				fmt.Fprintf(w, "   ... %d more\n", len(res.ParseErrors)-maxListed)
				break
			}
			fmt.Fprintf(w, "   %s: %v\n", fe.Path, fe.Err)
		}
	}

	if a := res.Analysis; a != nil {
		fmt.Fprintf(w, "Types: %d (%d cyclic edges dropped)\n", a.Types, a.Dropped)
		fmt.Fprintf(w, "Overrides: %d of %d methods\n", a.Overrides.Overridden, a.Overrides.Methods)
		if a.Usages.Calls > 0 {
			fmt.Fprintf(w, "Calls: %d of %d bound\n", a.Usages.Resolved, a.Usages.Calls)
		}
		if errs := a.Overrides.ItemErrors + a.Usages.ItemErrors; errs > 0 {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d items failed to resolve", errs)))
		}
	}

	switch {
	case res.Incomplete:
		fmt.Fprintln(w, errorStyle.Render("Run incomplete: results are partial"))
	case len(res.ParseErrors) == 0 && len(res.Errors) == 0:
		fmt.Fprintln(w, successStyle.Render("Analysis clean"))
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

func printRun(w io.Writer, run store.Run, signatures int) {
	fmt.Fprintln(w, titleStyle("Latest run"))
	fmt.Fprintf(w, "  ID:        %s\n", run.ID)
	fmt.Fprintf(w, "  Project:   %s\n", run.ProjectKey)
	fmt.Fprintf(w, "  Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:  %v\n", run.Duration)
	fmt.Fprintf(w, "  Files:     %d (%d parse errors)\n", run.Files, run.ParseErrors)
	fmt.Fprintf(w, "  Types:     %d\n", run.Types)
	fmt.Fprintf(w, "  Overrides: %d of %d methods\n", run.Overridden, run.Methods)
	fmt.Fprintf(w, "  Calls:     %d of %d bound\n", run.Resolved, run.Calls)
	fmt.Fprintf(w, "  Stored:    %d signatures\n", signatures)
	if run.Incomplete {
		fmt.Fprintln(w, "  "+errorStyle.Render("incomplete"))
	}
}
