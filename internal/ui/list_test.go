package ui

import (
	"testing"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/models"
)

func TestQueueItem(t *testing.T) {
	t.Run("With Album", func(t *testing.T) {
		item := queueItem{track: models.Track{
			Name:    "Roygbiv",
			Artists: []models.Artist{{Name: "Boards of Canada"}},
			Album:   &models.Album{Name: "Music Has the Right to Children"},
		}}

		if item.Title() != "Roygbiv" {
			t.Errorf("unexpected title %q", item.Title())
		}
		if item.Description() != "Boards of Canada • Music Has the Right to Children" {
			t.Errorf("unexpected description %q", item.Description())
		}
	})

	t.Run("Without Album", func(t *testing.T) {
		item := queueItem{track: models.Track{
			Name:    "Roygbiv",
			Artists: []models.Artist{{Name: "Boards of Canada"}},
		}}

		if item.Description() != "Boards of Canada" {
			t.Errorf("unexpected description %q", item.Description())
		}
	})

	t.Run("Without Artists", func(t *testing.T) {
		item := queueItem{track: models.Track{Name: "Untitled"}}

		if item.Description() != "Unknown artist" {
			t.Errorf("unexpected description %q", item.Description())
		}
	})
}

func TestHistoryItem(t *testing.T) {
	entry := models.PlayedTrack{
		Track: models.Track{
			Name:    "Telephasic Workshop",
			Artists: []models.Artist{{Name: "Boards of Canada"}},
		},
		PlayedAt: time.Date(2026, 8, 30, 9, 15, 0, 0, time.Local),
	}

	t.Run("Past Entry Shows The Play Time", func(t *testing.T) {
		item := historyItem{entry: entry}

		if item.Description() != "Boards of Canada • 09:15" {
			t.Errorf("unexpected description %q", item.Description())
		}
	})

	t.Run("Current Entry Is Flagged", func(t *testing.T) {
		current := entry
		current.IsCurrentlyPlaying = true
		item := historyItem{entry: current}

		if item.Description() != "Boards of Canada • now playing" {
			t.Errorf("unexpected description %q", item.Description())
		}
	})
}
