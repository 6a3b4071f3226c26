package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#E5A00D", "#04B575", "#FF5F5F", "#FFA500", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	rank   lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	muted  lipgloss.Style
	label  lipgloss.Style
	detail lipgloss.Style
}

func NewPalette(accent, ok, bad, warn, muted string) *Palette {
	return &Palette{
		title:  NewBold(accent).MarginBottom(1),
		rank:   NewBold(accent),
		ok:     NewBold(ok),
		err:    NewBold(bad),
		warn:   NewStyle(warn),
		muted:  NewEm(muted),
		label:  NewBold(muted).Width(10),
		detail: lipgloss.NewStyle().PaddingLeft(2),
	}
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
