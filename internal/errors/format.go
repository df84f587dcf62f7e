package errors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// reportWidth is where detail text wraps.
const reportWidth = 70

// palette styles the parts of a report. The plain palette leaves text as is.
type palette struct {
	label  lipgloss.Style
	code   lipgloss.Style
	where  lipgloss.Style
	marker lipgloss.Style
	faint  lipgloss.Style
	link   lipgloss.Style
}

var (
	plain = palette{
		label:  lipgloss.NewStyle(),
		code:   lipgloss.NewStyle(),
		where:  lipgloss.NewStyle(),
		marker: lipgloss.NewStyle(),
		faint:  lipgloss.NewStyle(),
		link:   lipgloss.NewStyle(),
	}
	colored = palette{
		label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		code:   lipgloss.NewStyle().Bold(true),
		where:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		marker: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		faint:  lipgloss.NewStyle().Faint(true),
		link:   lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("4")),
	}
)

// paletteFor picks colors for terminals unless NO_COLOR is set.
func paletteFor(w io.Writer) palette {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return plain
	}
	return colored
}

// Format returns a multi-line report for display on stderr.
func (e *Error) Format() string {
	return e.report(paletteFor(os.Stderr))
}

func (e *Error) report(p palette) string {
	var b strings.Builder

	head := "ERROR: "
	if e.Code != "" {
		head = "ERROR " + p.code.Render(e.Code+":") + " "
	}
	fmt.Fprintf(&b, "\n%s%s\n\n", p.label.Render(head), e.Message)

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", p.where.Render(e.Location.String()))
		e.writeSource(&b, p)
	}

	if lines := wrapText(e.Detail, reportWidth); len(lines) > 0 {
		b.WriteString("  " + strings.Join(lines, "\n  ") + "\n\n")
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", p.where.Render("Hint:"), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s %s\n", p.faint.Render("Learn more:"), p.link.Render(e.DocURL))
	}
	return b.String()
}

// writeSource prints the route map lines around Location, marking the
// offending one.
func (e *Error) writeSource(b *strings.Builder, p palette) {
	if len(e.Context) == 0 {
		return
	}
	first := max(e.Location.Line-len(e.Context)/2, 1)
	for i, text := range e.Context {
		n := first + i
		gutter := "    "
		if n == e.Location.Line {
			gutter = "  " + p.marker.Render(">") + " "
		}
		fmt.Fprintf(b, "%s%4d %s %s\n", gutter, n, p.faint.Render("|"), text)
	}
	b.WriteString("\n")
}

// FormatCompact returns the error on one line, prefixed with its location
// and code when set.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Error()), ": ")
}

// wrapText breaks text into lines of at most width bytes at word
// boundaries. A single longer word keeps its own line.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Fprint writes err to w, with the full report when a structured error is
// anywhere in the chain.
func Fprint(w io.Writer, err error) {
	p := paletteFor(w)
	var re *Error
	if errors.As(err, &re) {
		fmt.Fprint(w, re.report(p))
		return
	}
	fmt.Fprintf(w, "\n%s%s\n\n", p.label.Render("ERROR: "), err.Error())
}

// PrintError prints err to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
