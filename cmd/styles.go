package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
)

// colorEnabled reports whether w should receive ANSI styling.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printer writes user-facing lines, styled when the terminal allows it.
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(w io.Writer, noColor bool) *printer {
	return &printer{out: w, color: colorEnabled(w, noColor)}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *printer) Println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}

func (p *printer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *printer) Success(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.render(successStyle, "✓")+" "+fmt.Sprintf(format, a...))
}

func (p *printer) Warn(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.render(warningStyle, "!")+" "+fmt.Sprintf(format, a...))
}

func (p *printer) Info(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.render(infoStyle, "•")+" "+fmt.Sprintf(format, a...))
}

func (p *printer) Faint(s string) string {
	return p.render(faintStyle, s)
}

func (p *printer) Header(s string) string {
	return p.render(headerStyle, s)
}

func (p *printer) Name(s string) string {
	return p.render(nameStyle, s)
}

// RenderError formats a fatal error for stderr.
func RenderError(err error) string {
	prefix := "Error:"
	if colorEnabled(os.Stderr, false) {
		prefix = errorStyle.Render(prefix)
	}
	return prefix + " " + err.Error()
}
