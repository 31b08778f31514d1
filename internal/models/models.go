package models

import "time"

// Image represents an image resource from the streaming API.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Artist represents an artist reference on a track or album.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents an album reference on a track.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images,omitempty"`
}

// Track represents a playable track. Immutable once fetched; two Track values
// with the same ID describe the same track regardless of which view produced
// them.
type Track struct {
	ID          string   `json:"id"`
	URI         string   `json:"uri"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	Album       *Album   `json:"album,omitempty"`
	DurationMS  int      `json:"duration_ms"`
	TrackNumber int      `json:"track_number,omitempty"`
}

// SameTrack reports whether two tracks are value-equal by ID.
func (t Track) SameTrack(other Track) bool {
	return t.ID != "" && t.ID == other.ID
}

// ContextType enumerates the collections a track can be played from.
type ContextType string

const (
	ContextAlbum    ContextType = "album"
	ContextPlaylist ContextType = "playlist"
	ContextArtist   ContextType = "artist"
	ContextQueue    ContextType = "queue"
)

// ContextOffset references the track within a context to start playback from.
type ContextOffset struct {
	URI string `json:"uri"`
}

// PlaybackContext identifies the collection a track is being played from.
//
// Exactly one of Position/Offset is authoritative per request; Offset takes
// precedence when both are set.
type PlaybackContext struct {
	Type     ContextType    `json:"type"`
	ID       string         `json:"id"`
	URI      string         `json:"uri"`
	Name     string         `json:"name,omitempty"`
	Position *int           `json:"position,omitempty"`
	Offset   *ContextOffset `json:"offset,omitempty"`
}

// WithPosition returns a copy of the context with Position set and Offset cleared.
func (c PlaybackContext) WithPosition(position int) PlaybackContext {
	c.Position = &position
	c.Offset = nil
	return c
}

// CurrentlyPlaying is the authoritative "now" snapshot. Produced either
// optimistically right after a play request (ProgressMS zero) or by polling
// the remote player endpoint.
type CurrentlyPlaying struct {
	Item       Track            `json:"item"`
	IsPlaying  bool             `json:"is_playing"`
	ProgressMS int              `json:"progress_ms"`
	Context    *PlaybackContext `json:"context,omitempty"`
}

// PlayedTrack is a single history entry. History is ordered most recent
// first; the store guarantees at most one entry per track ID.
type PlayedTrack struct {
	Track              Track            `json:"track"`
	PlayedAt           time.Time        `json:"played_at"`
	Context            *PlaybackContext `json:"context,omitempty"`
	IsCurrentlyPlaying bool             `json:"is_currently_playing,omitempty"`
}

// Queue is the ephemeral up-next snapshot. Refetched after every play
// request and on the polling interval; fully replaced on each fetch, never
// merged incrementally.
type Queue struct {
	CurrentlyPlaying *Track  `json:"currently_playing"`
	Tracks           []Track `json:"queue"`
}

// Device represents an addressable playback endpoint on the user's account.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}
