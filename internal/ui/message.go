package ui

import (
	"time"

	"github.com/Frederikmahipal/ba-client/internal/player"
	tea "github.com/charmbracelet/bubbletea"
)

// stateUpdateMsg carries a store notification into the Elm loop.
type stateUpdateMsg player.Update

// commandResultMsg reports the outcome of a playback command or play intent.
type commandResultMsg struct {
	action string
	err    error
}

// tickMsg drives the once-a-second progress re-render.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
