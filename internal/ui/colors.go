package ui

import "github.com/charmbracelet/lipgloss"

// styles is the shared stylesheet: Spotify green for headings and the
// playing track, muted grey for hints.
var styles = palette{
	title: bold("#1DB954").MarginBottom(1),
	ok:    bold("#04B575"),
	err:   bold("#FF0000"),
	warn:  fg("#FFA500"),
	help:  fg("#626262").Italic(true),
}

type palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func bold(color string) lipgloss.Style {
	return fg(color).Bold(true)
}
