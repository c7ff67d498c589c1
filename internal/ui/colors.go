package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/hlsx/internal/ladder"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

var _ Painter = (*Palette)(nil)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	help    lipgloss.Style
	unknown lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		ok:      NewBold(s),
		err:     NewBold(e),
		warn:    NewBold(w),
		help:    NewEm(h),
		unknown: NewStyle(h),
	}
}

// DefaultPalette returns the palette used by the TUI.
func DefaultPalette() *Palette { return styles }

func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) Help(s string) string  { return p.help.Render(s) }
func (p *Palette) Error(s string) string { return p.err.Render(s) }

// Severity paints s with the colour of sev.
func (p *Palette) Severity(sev ladder.Severity, s string) string {
	switch sev {
	case ladder.OK:
		return p.ok.Render(s)
	case ladder.Warning:
		return p.warn.Render(s)
	case ladder.Critical:
		return p.err.Render(s)
	default:
		return p.unknown.Render(s)
	}
}

// Label paints the severity name, e.g. "CRITICAL".
func (p *Palette) Label(sev ladder.Severity) string {
	return p.Severity(sev, sev.String())
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
