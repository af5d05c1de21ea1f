package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Default stylesheet for the harvest views.
var styles = NewPalette("#7D56F4", "#2ECC71", "#E74C3C", "#F39C12", "#626262")

// Palette groups the [lipgloss.Style] values used across views: title,
// success, error, warning, and dimmed help text.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(title, ok, err, warn, help string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(ok),
		err:   NewBold(err),
		warn:  NewStyle(warn),
		help:  NewStyle(help).Italic(true),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}
