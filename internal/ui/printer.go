package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled status lines.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Header prints a styled section header
func (p *Printer) Header(text string) {
	style := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	fmt.Fprintln(p.out, style.Render(text))
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	icon := lipgloss.NewStyle().Foreground(ColorSuccess).Render(IconSuccess)
	msg := lipgloss.NewStyle().Foreground(ColorText).Render(text)
	fmt.Fprintf(p.out, "  %s %s\n", icon, msg)
}

// SuccessPath prints a success message followed by a path
func (p *Printer) SuccessPath(text, path string) {
	icon := lipgloss.NewStyle().Foreground(ColorSuccess).Render(IconSuccess)
	msg := lipgloss.NewStyle().Foreground(ColorText).Render(text)
	pathStyle := lipgloss.NewStyle().Foreground(ColorSecondary).Render(path)
	fmt.Fprintf(p.out, "  %s %s %s\n", icon, msg, pathStyle)
}

func (p *Printer) Warning(text string) {
	icon := lipgloss.NewStyle().Foreground(ColorTertiary).Render(IconWarning)
	msg := lipgloss.NewStyle().Foreground(ColorTertiary).Render(text)
	fmt.Fprintf(p.out, "  %s %s\n", icon, msg)
}

// Detail prints an indented detail line under a status line.
func (p *Printer) Detail(text string) {
	style := lipgloss.NewStyle().Foreground(ColorMuted).MarginLeft(4)
	fmt.Fprintln(p.out, style.Render(text))
}

func (p *Printer) Error(text string) {
	icon := lipgloss.NewStyle().Foreground(ColorError).Render(IconError)
	msg := lipgloss.NewStyle().Foreground(ColorError).Render(text)
	fmt.Fprintf(p.out, "  %s %s\n", icon, msg)
}

func (p *Printer) Info(text string) {
	style := lipgloss.NewStyle().Foreground(ColorMuted).MarginLeft(2)
	fmt.Fprintln(p.out, style.Render(text))
}

// Code prints a shell command hint
func (p *Printer) Code(text string) {
	style := lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Background(ColorBgDark).
		Padding(0, 1).
		MarginLeft(4)
	fmt.Fprintln(p.out, style.Render(text))
}

func (p *Printer) Blank() {
	fmt.Fprintln(p.out)
}
