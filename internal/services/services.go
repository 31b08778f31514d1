// package services defines interface PlayerTransport for the playback engine's
// HTTP surface: the backend proxy forwarding to the streaming API.
package services

import (
	"context"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/models"
)

// PlayerTransport is the playback engine's view of the remote player API.
//
// All calls carry the session's bearer token. Implementations must map a 429
// to [shared.ErrRateLimited] and a rejected playback command to
// [shared.ErrPlaybackRequest] so callers can apply the correct policy.
type PlayerTransport interface {
	// ActivateDevice transfers playback to the given device. With play=false
	// the current playback state is left untouched; the device only becomes
	// the account's active output.
	ActivateDevice(ctx context.Context, deviceID string, play bool) error

	// Play starts playback of the request body on the given device.
	Play(ctx context.Context, deviceID string, req PlayRequest) error

	// Pause pauses playback on the given device.
	Pause(ctx context.Context, deviceID string) error

	// Next skips to the next track on the given device.
	Next(ctx context.Context, deviceID string) error

	// Previous skips to the previous track on the given device.
	Previous(ctx context.Context, deviceID string) error

	// Seek moves playback of the current track to the given position.
	Seek(ctx context.Context, deviceID string, positionMS int) error

	// SetVolume sets the device volume as a percentage (0-100).
	SetVolume(ctx context.Context, deviceID string, percent int) error

	// CurrentlyPlaying fetches the account's current playback snapshot.
	// Returns [shared.ErrNothingPlaying] when no session exists.
	CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error)

	// Queue fetches the account's up-next queue snapshot.
	Queue(ctx context.Context) (*models.Queue, error)

	// RecentlyPlayed fetches the play history, most recent first.
	RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayedTrack, error)

	// AddRecentlyPlayed backfills a play event into the server-side history.
	AddRecentlyPlayed(ctx context.Context, trackID string, playedAt time.Time) error

	// Devices lists the account's available playback devices.
	Devices(ctx context.Context) ([]models.Device, error)
}

// PlayOffset selects the starting track within a playback context. Exactly
// one field is set.
type PlayOffset struct {
	URI      string `json:"uri,omitempty"`
	Position *int   `json:"position,omitempty"`
}

// PlayRequest is the upstream-compatible play body produced by the context
// resolver: either a context reference with an offset, or a direct track
// list. Never both.
type PlayRequest struct {
	ContextURI string      `json:"context_uri,omitempty"`
	URIs       []string    `json:"uris,omitempty"`
	Offset     *PlayOffset `json:"offset,omitempty"`
	PositionMS int         `json:"position_ms"`
}
