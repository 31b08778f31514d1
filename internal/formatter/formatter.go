// package formatter renders playback state for CLI output (plain text, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/player"
)

// NowPlayingText renders the currently-playing fact as plain text.
func NowPlayingText(fact *models.CurrentlyPlaying) []byte {
	var buf bytes.Buffer

	if fact == nil {
		buf.WriteString("Nothing playing\n")
		return buf.Bytes()
	}

	state := "paused"
	if fact.IsPlaying {
		state = "playing"
	}

	buf.WriteString(fmt.Sprintf("%s - %s [%s]\n", artistLine(fact.Item), fact.Item.Name, state))
	buf.WriteString(fmt.Sprintf("  %s / %s\n", player.FormatDuration(fact.ProgressMS), player.FormatDuration(fact.Item.DurationMS)))

	if fact.Context != nil {
		name := fact.Context.Name
		if name == "" {
			name = fact.Context.ID
		}
		buf.WriteString(fmt.Sprintf("  from %s %q\n", fact.Context.Type, name))
	}

	return buf.Bytes()
}

// QueueText renders the up-next projection as plain text.
func QueueText(view player.UpNextView) []byte {
	var buf bytes.Buffer

	if view.Total == 0 {
		buf.WriteString("Queue is empty\n")
		return buf.Bytes()
	}

	for i, track := range view.Items {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, artistLine(track), track.Name, player.FormatDuration(track.DurationMS)))
	}
	buf.WriteString(view.Indicator() + "\n")

	return buf.Bytes()
}

// HistoryText renders the history projection as plain text, most recent first.
func HistoryText(view player.HistoryView) []byte {
	var buf bytes.Buffer

	if len(view.Items) == 0 {
		buf.WriteString("No listening history\n")
		return buf.Bytes()
	}

	for i, item := range view.Items {
		when := "now playing"
		if !item.IsCurrentlyPlaying {
			when = item.PlayedAt.Local().Format("15:04:05")
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", i+1, artistLine(item.Track), item.Track.Name, when))
	}

	return buf.Bytes()
}

// HistoryMarkdown renders the history projection as a Markdown list.
func HistoryMarkdown(view player.HistoryView) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Recently Played\n\n")
	for _, item := range view.Items {
		line := fmt.Sprintf("- %s - %s", artistLine(item.Track), item.Track.Name)
		if item.IsCurrentlyPlaying {
			line += " *(now playing)*"
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes()
}

// ToJSON marshals any playback view for --json output.
func ToJSON(data any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

func artistLine(track models.Track) string {
	if len(track.Artists) == 0 {
		return "Unknown artist"
	}
	line := ""
	for i, artist := range track.Artists {
		if i > 0 {
			line += ", "
		}
		line += artist.Name
	}
	return line
}
