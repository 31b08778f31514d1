package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/services"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/charmbracelet/log"
)

// offlineThreshold is how many consecutive failed state polls flip the
// device to not_ready.
const offlineThreshold = 3

// ConnectDevice is the headless [SDK] implementation: it drives an existing
// device on the user's account through the player endpoints and synthesizes
// the event stream by polling, standing in for the browser-embedded player
// when the client runs in a terminal.
//
// The device is found by name among the account's devices; the handshake
// fails when no such device exists.
type ConnectDevice struct {
	transport    services.PlayerTransport
	opts         SDKOptions
	pollInterval time.Duration
	logger       *log.Logger

	mu        sync.Mutex
	listeners map[EventType][]func(Event)
	deviceID  string
	connected bool
	online    bool
	lastState *PlayerState
	cancel    context.CancelFunc
}

var _ SDK = (*ConnectDevice)(nil)

// NewConnectDevice creates the headless SDK driver. The poll interval
// controls how often player_state_changed events are synthesized.
func NewConnectDevice(transport services.PlayerTransport, opts SDKOptions, pollInterval time.Duration, logger *log.Logger) *ConnectDevice {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &ConnectDevice{
		transport:    transport,
		opts:         opts,
		pollInterval: pollInterval,
		logger:       logger.With("component", "connect-device"),
		listeners:    make(map[EventType][]func(Event)),
	}
}

// AddListener registers a handler for the given event type.
func (d *ConnectDevice) AddListener(event EventType, handler func(Event)) {
	d.mu.Lock()
	d.listeners[event] = append(d.listeners[event], handler)
	d.mu.Unlock()
}

func (d *ConnectDevice) emit(event EventType, e Event) {
	d.mu.Lock()
	handlers := append([]func(Event){}, d.listeners[event]...)
	d.mu.Unlock()
	for _, handler := range handlers {
		handler(e)
	}
}

// Connect performs the handshake: resolve the named device, emit ready, and
// start the state poll loop.
func (d *ConnectDevice) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.connected {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	devices, err := d.transport.Devices(ctx)
	if err != nil {
		d.emit(EventInitializationError, Event{Message: err.Error()})
		return fmt.Errorf("device lookup failed: %w", err)
	}

	var deviceID string
	for _, device := range devices {
		if device.Name == d.opts.Name {
			deviceID = device.ID
			break
		}
	}
	if deviceID == "" {
		err := fmt.Errorf("no device named %q on the account", d.opts.Name)
		d.emit(EventInitializationError, Event{Message: err.Error()})
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	d.deviceID = deviceID
	d.connected = true
	d.online = true
	d.cancel = cancel
	d.mu.Unlock()

	if d.opts.Volume > 0 {
		if err := d.SetVolume(ctx, d.opts.Volume); err != nil {
			d.logger.Warn("failed to apply initial volume", "error", err)
		}
	}

	d.emit(EventReady, Event{DeviceID: deviceID})
	go d.pollLoop(loopCtx)
	return nil
}

// Disconnect stops the poll loop and emits not_ready.
func (d *ConnectDevice) Disconnect() {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return
	}
	d.connected = false
	deviceID := d.deviceID
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.emit(EventNotReady, Event{DeviceID: deviceID})
}

// pollLoop synthesizes player_state_changed events from the remote snapshot
// and tracks device liveness.
func (d *ConnectDevice) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fact, err := d.transport.CurrentlyPlaying(ctx)
		if err != nil && !errors.Is(err, shared.ErrNothingPlaying) {
			failures++
			if failures == offlineThreshold {
				d.setOnline(false)
			}
			continue
		}

		if failures >= offlineThreshold {
			d.setOnline(true)
		}
		failures = 0

		if fact == nil {
			continue
		}

		track := fact.Item
		state := PlayerState{
			Paused:     !fact.IsPlaying,
			PositionMS: fact.ProgressMS,
			DurationMS: track.DurationMS,
			Track:      &track,
		}

		d.mu.Lock()
		d.lastState = &state
		d.mu.Unlock()

		d.emit(EventPlayerStateChanged, Event{State: &state})
	}
}

func (d *ConnectDevice) setOnline(online bool) {
	d.mu.Lock()
	if d.online == online {
		d.mu.Unlock()
		return
	}
	d.online = online
	deviceID := d.deviceID
	d.mu.Unlock()

	if online {
		d.logger.Info("device back online", "device_id", deviceID)
		d.emit(EventReady, Event{DeviceID: deviceID})
	} else {
		d.logger.Warn("device unreachable", "device_id", deviceID)
		d.emit(EventNotReady, Event{DeviceID: deviceID})
	}
}

func (d *ConnectDevice) id() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deviceID
}

// TogglePlay flips between playing and paused based on the last known state.
func (d *ConnectDevice) TogglePlay(ctx context.Context) error {
	d.mu.Lock()
	paused := d.lastState == nil || d.lastState.Paused
	d.mu.Unlock()

	if paused {
		return d.Resume(ctx)
	}
	return d.Pause(ctx)
}

// Resume continues playback. A device transfer with play=true resumes the
// current session without resetting the track position.
func (d *ConnectDevice) Resume(ctx context.Context) error {
	return d.transport.ActivateDevice(ctx, d.id(), true)
}

// Pause pauses playback.
func (d *ConnectDevice) Pause(ctx context.Context) error {
	return d.transport.Pause(ctx, d.id())
}

// PreviousTrack skips to the previous track.
func (d *ConnectDevice) PreviousTrack(ctx context.Context) error {
	return d.transport.Previous(ctx, d.id())
}

// NextTrack skips to the next track.
func (d *ConnectDevice) NextTrack(ctx context.Context) error {
	return d.transport.Next(ctx, d.id())
}

// Seek moves playback of the current track to the given position.
func (d *ConnectDevice) Seek(ctx context.Context, positionMS int) error {
	return d.transport.Seek(ctx, d.id(), positionMS)
}

// SetVolume sets the device volume, taking the SDK's 0..1 range.
func (d *ConnectDevice) SetVolume(ctx context.Context, volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return d.transport.SetVolume(ctx, d.id(), int(volume*100))
}

// GetVolume reads the device volume from the account's device list.
func (d *ConnectDevice) GetVolume(ctx context.Context) (float64, error) {
	devices, err := d.transport.Devices(ctx)
	if err != nil {
		return 0, err
	}
	id := d.id()
	for _, device := range devices {
		if device.ID == id {
			return float64(device.VolumePercent) / 100, nil
		}
	}
	return 0, fmt.Errorf("device %s not in device list", id)
}
