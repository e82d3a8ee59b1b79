package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// DefaultPalette returns the stylesheet used by CLI command output.
func DefaultPalette() *Palette {
	return NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

// Title renders s as a section header.
func (p *Palette) Title(s string) string { return p.title.Render(s) }

// OK renders s as a success marker.
func (p *Palette) OK(s string) string { return p.ok.Render(s) }

// Err renders s as a failure marker.
func (p *Palette) Err(s string) string { return p.err.Render(s) }

// Warn renders s as a warning.
func (p *Palette) Warn(s string) string { return p.warn.Render(s) }

// Help renders s as secondary help text.
func (p *Palette) Help(s string) string { return p.help.Render(s) }

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
