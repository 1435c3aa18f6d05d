package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/flaneur2020/hip-diff/hipdiff"
)

const defaultColumnWidth = 50

type lineStyles struct {
	add lipgloss.Style
	del lipgloss.Style
	mod lipgloss.Style
}

// newLineStyles builds the per-op styles. "always" and "never" force the
// color profile; "auto" leaves detection to the renderer, so pipes and
// dumb terminals get plain text.
func newLineStyles(w io.Writer, mode string) lineStyles {
	var r *lipgloss.Renderer
	switch mode {
	case "always":
		r = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI))
		r.SetColorProfile(termenv.ANSI)
	case "never":
		r = lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
		r.SetColorProfile(termenv.Ascii)
	default:
		r = lipgloss.NewRenderer(w)
	}
	return lineStyles{
		add: r.NewStyle().Foreground(lipgloss.Color("2")),
		del: r.NewStyle().Foreground(lipgloss.Color("1")),
		mod: r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (st lineStyles) of(op hipdiff.Op) lipgloss.Style {
	switch op {
	case hipdiff.OpAddition:
		return st.add
	case hipdiff.OpDeletion:
		return st.del
	default:
		return st.mod
	}
}

// renderReport prints the two-column diff: the file names over a ruler,
// each non-empty bucket under its title, and the totals line. Record
// buckets title with their record count, header buckets without one.
func renderReport(w io.Writer, r *hipdiff.Report, leftName, rightName string, width int, mode string) {
	// The columns widen to fit either file name.
	if n := len(leftName) + 1; n > width {
		width = n
	}
	if n := len(rightName) + 1; n > width {
		width = n
	}

	st := newLineStyles(w, mode)
	line := func(left, right string) string {
		return fmt.Sprintf("%-*s%-*s", width, left, width, right)
	}

	fmt.Fprintln(w, line(leftName, rightName))
	fmt.Fprintln(w, strings.Repeat("=", width*2))

	for _, b := range r.Buckets {
		if len(b.Entries) == 0 {
			continue
		}
		title := b.Title
		if b.Records >= 0 {
			title = fmt.Sprintf("%s (%d)", b.Title, b.Records)
		}
		fmt.Fprintln(w, line(title, title))
		for _, e := range b.Entries {
			fmt.Fprintln(w, st.of(e.Op).Render(line(e.Left, e.Right)))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d addition(s), %d deletion(s), %d modification(s)\n",
		r.Additions, r.Deletions, r.Modifications)
}
