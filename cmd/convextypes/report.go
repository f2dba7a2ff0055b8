package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rlch/convextypes/analysis"
	"github.com/rlch/convextypes/typegen"
)

// reporter prints run summaries for people. Output is styled only when w is a
// terminal.
type reporter struct {
	w io.Writer

	title   lipgloss.Style
	path    lipgloss.Style
	dim     lipgloss.Style
	errorSt lipgloss.Style
	warnSt  lipgloss.Style
	hintSt  lipgloss.Style
}

func newReporter(w io.Writer) *reporter {
	r := &reporter{
		w:       w,
		title:   lipgloss.NewStyle(),
		path:    lipgloss.NewStyle(),
		dim:     lipgloss.NewStyle(),
		errorSt: lipgloss.NewStyle(),
		warnSt:  lipgloss.NewStyle(),
		hintSt:  lipgloss.NewStyle(),
	}

	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		r.title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00BA7C"))
		r.path = lipgloss.NewStyle().Foreground(lipgloss.Color("#1D9BF0"))
		r.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("#8899A6"))
		r.errorSt = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F4212E"))
		r.warnSt = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAD1F"))
		r.hintSt = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ECDF8"))
	}

	return r
}

// summary prints what a run extracted, followed by its findings.
func (r *reporter) summary(verb string, res *typegen.Result) {
	_, _ = fmt.Fprintf(r.w, "%s %s %s\n",
		r.title.Render(verb),
		r.path.Render(res.Config.OutFile),
		r.dim.Render(fmt.Sprintf("(%d tables, %d functions)", len(res.Schema.Tables), len(res.Functions))),
	)

	r.findings(res)
}

func (r *reporter) findings(res *typegen.Result) {
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintf(r.w, "  %s %s\n", r.warnSt.Render("warning"), w.String())
	}

	for _, d := range res.Diagnostics {
		_, _ = fmt.Fprintf(r.w, "  %s %s: %s %s\n",
			r.severity(d.Severity),
			d.Context,
			d.Message,
			r.dim.Render("["+d.Rule+"]"),
		)
	}
}

func (r *reporter) severity(s analysis.DiagnosticSeverity) string {
	switch s {
	case analysis.SeverityError:
		return r.errorSt.Render(s.String())
	case analysis.SeverityWarning:
		return r.warnSt.Render(s.String())
	default:
		return r.hintSt.Render(s.String())
	}
}

// stale prints the outcome of a check.
func (r *reporter) stale(status *typegen.Status) {
	if status.Stale {
		_, _ = fmt.Fprintf(r.w, "%s %s\n", r.errorSt.Render("stale"), r.path.Render(status.OutFile))

		return
	}

	_, _ = fmt.Fprintf(r.w, "%s %s %s\n",
		r.title.Render("up to date"),
		r.path.Render(status.OutFile),
		r.dim.Render(fmt.Sprintf("(xxh3 %016x)", status.Want)),
	)
}
