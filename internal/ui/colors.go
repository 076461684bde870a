package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = newPalette(lipgloss.Color("#7D56F4"), lipgloss.Color("#FF5F5F"), lipgloss.Color("#FFA500"), lipgloss.Color("#626262"))

// palette holds the named styles of every view.
type palette struct {
	title lipgloss.Style // list and detail headings
	err   lipgloss.Style // error view heading
	warn  lipgloss.Style // busy indicator and page failure footer
	help  lipgloss.Style
	chip  lipgloss.Style // selected genre in the top bar
	body  lipgloss.Style
}

func newPalette(accent, danger, caution, muted lipgloss.Color) palette {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return palette{
		title: fg(accent).Bold(true).MarginBottom(1),
		err:   fg(danger).Bold(true),
		warn:  fg(caution),
		help:  fg(muted).Italic(true),
		chip:  fg(accent).Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		body:  lipgloss.NewStyle().MarginTop(1),
	}
}
