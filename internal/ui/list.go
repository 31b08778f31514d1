package ui

import (
	"fmt"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = queueItem{}
	_ list.Item = historyItem{}
)

// queueItem wraps a queued [models.Track] to implement [list.Item].
type queueItem struct {
	track models.Track
	index int
}

func (i queueItem) FilterValue() string { return i.track.Name }
func (i queueItem) Title() string       { return i.track.Name }
func (i queueItem) Description() string {
	desc := artistNames(i.track)
	if i.track.Album != nil && i.track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album.Name)
	}
	return desc
}

// historyItem wraps a [models.PlayedTrack] to implement [list.Item].
type historyItem struct {
	entry models.PlayedTrack
}

func (i historyItem) FilterValue() string { return i.entry.Track.Name }
func (i historyItem) Title() string       { return i.entry.Track.Name }
func (i historyItem) Description() string {
	desc := artistNames(i.entry.Track)
	if i.entry.IsCurrentlyPlaying {
		return fmt.Sprintf("%s • now playing", desc)
	}
	return fmt.Sprintf("%s • %s", desc, i.entry.PlayedAt.Local().Format("15:04"))
}

func artistNames(track models.Track) string {
	if len(track.Artists) == 0 {
		return "Unknown artist"
	}
	names := ""
	for i, artist := range track.Artists {
		if i > 0 {
			names += ", "
		}
		names += artist.Name
	}
	return names
}
