package player

import (
	"context"

	"github.com/Frederikmahipal/ba-client/internal/models"
)

// EventType enumerates the notifications emitted by the embeddable player SDK.
type EventType string

const (
	EventReady               EventType = "ready"
	EventNotReady            EventType = "not_ready"
	EventPlayerStateChanged  EventType = "player_state_changed"
	EventInitializationError EventType = "initialization_error"
	EventAuthenticationError EventType = "authentication_error"
	EventAccountError        EventType = "account_error"
	EventPlaybackError       EventType = "playback_error"
)

// Event is a single SDK notification. DeviceID is set for ready/not_ready,
// State for player_state_changed, Message for the error events.
type Event struct {
	DeviceID string
	Message  string
	State    *PlayerState
}

// PlayerState is the SDK's report of the local device's playback state.
// Delivery is at-least-once and rapid changes may coalesce; each value is the
// latest truth, not a diff.
type PlayerState struct {
	Paused     bool
	PositionMS int
	DurationMS int
	Track      *models.Track
}

// SDKOptions configures the SDK handshake.
type SDKOptions struct {
	// Name is the device name shown on the user's account.
	Name string
	// GetOAuthToken supplies a fresh bearer token whenever the SDK needs one.
	GetOAuthToken func() (string, error)
	// Volume is the initial volume in the range 0..1.
	Volume float64
}

// SDK is the boundary to the embeddable player. The production
// implementation is [ConnectDevice]; tests substitute a scripted fake.
//
// Listeners must be registered before Connect; the SDK may emit ready during
// the handshake.
type SDK interface {
	Connect(ctx context.Context) error
	Disconnect()
	AddListener(event EventType, handler func(Event))

	TogglePlay(ctx context.Context) error
	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
	NextTrack(ctx context.Context) error
	Seek(ctx context.Context, positionMS int) error
	SetVolume(ctx context.Context, volume float64) error
	GetVolume(ctx context.Context) (float64, error)
}
