package player

import (
	"fmt"

	"github.com/Frederikmahipal/ba-client/internal/models"
)

// UpNextDisplayCap is how many queued tracks the up-next panel shows.
const UpNextDisplayCap = 5

// NowPlayingView is the read-only projection for the now-playing panel.
type NowPlayingView struct {
	Fact   *models.CurrentlyPlaying
	Active bool
}

// Title returns the track name, or a placeholder while nothing is known.
func (v NowPlayingView) Title() string {
	if v.Fact == nil {
		return "Nothing playing"
	}
	return v.Fact.Item.Name
}

// Artists returns the comma-joined artist names.
func (v NowPlayingView) Artists() string {
	if v.Fact == nil {
		return ""
	}
	names := ""
	for i, artist := range v.Fact.Item.Artists {
		if i > 0 {
			names += ", "
		}
		names += artist.Name
	}
	return names
}

// Progress returns "elapsed / total" in m:ss form.
func (v NowPlayingView) Progress() string {
	if v.Fact == nil {
		return ""
	}
	return fmt.Sprintf("%s / %s", FormatDuration(v.Fact.ProgressMS), FormatDuration(v.Fact.Item.DurationMS))
}

// UpNextView is the read-only projection for the up-next panel: the first
// UpNextDisplayCap queued tracks plus a "showing N of M" indicator.
type UpNextView struct {
	Items []models.Track
	Shown int
	Total int
}

// Indicator renders the "showing N of M" line, empty when nothing is queued.
func (v UpNextView) Indicator() string {
	if v.Total == 0 {
		return ""
	}
	return fmt.Sprintf("showing %d of %d", v.Shown, v.Total)
}

// HistoryView is the read-only projection for the history panel.
type HistoryView struct {
	Items []models.PlayedTrack
}

// BuildNowPlaying derives the now-playing projection from the store and the
// device adapter's active flag.
func BuildNowPlaying(store *Store, device DeviceSource) NowPlayingView {
	return NowPlayingView{Fact: store.GetCurrentFact(), Active: device.Active()}
}

// BuildUpNext derives the up-next projection from the store's queue snapshot.
func BuildUpNext(store *Store) UpNextView {
	return ProjectUpNext(store.GetQueue())
}

// ProjectUpNext caps a queue snapshot for display.
func ProjectUpNext(queue models.Queue) UpNextView {
	total := len(queue.Tracks)
	shown := total
	if shown > UpNextDisplayCap {
		shown = UpNextDisplayCap
	}
	return UpNextView{Items: queue.Tracks[:shown], Shown: shown, Total: total}
}

// BuildHistory derives the history projection, flagging the entry that is
// currently playing.
func BuildHistory(store *Store) HistoryView {
	return ProjectHistory(store.GetHistory(), store.GetCurrentFact())
}

// ProjectHistory flags the history entry matching the current fact.
func ProjectHistory(history []models.PlayedTrack, fact *models.CurrentlyPlaying) HistoryView {
	if fact != nil {
		for i := range history {
			history[i].IsCurrentlyPlaying = history[i].Track.SameTrack(fact.Item)
		}
	}
	return HistoryView{Items: history}
}

// QueueItemIntent builds the play intent for a clicked up-next item: the
// clicked track inside the context of whatever is currently playing, with
// the item's queue index as the offset.
func QueueItemIntent(fact *models.CurrentlyPlaying, queue models.Queue, index int) (models.Track, *models.PlaybackContext, error) {
	if index < 0 || index >= len(queue.Tracks) {
		return models.Track{}, nil, fmt.Errorf("queue index %d out of range", index)
	}

	track := queue.Tracks[index]
	if fact == nil || fact.Context == nil {
		return track, nil, nil
	}

	context := fact.Context.WithPosition(index)
	return track, &context, nil
}

// HistoryItemIntent builds the play intent for a clicked history entry: the
// stored context when one was recorded, a bare track otherwise.
func HistoryItemIntent(entry models.PlayedTrack) (models.Track, *models.PlaybackContext) {
	if entry.Context == nil {
		return entry.Track, nil
	}
	context := *entry.Context
	return entry.Track, &context
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
