package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/charmbracelet/log"
)

// DeviceSlot is the process-wide holder of the local device ID. Written by
// the [Adapter] only: set on the SDK's ready notification, cleared on
// not_ready. Everything else reads.
type DeviceSlot struct {
	mu sync.RWMutex
	id string
}

// Get returns the current device ID, reporting false while no device is known.
func (s *DeviceSlot) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id, s.id != ""
}

func (s *DeviceSlot) set(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

func (s *DeviceSlot) clear() {
	s.mu.Lock()
	s.id = ""
	s.mu.Unlock()
}

// Adapter wraps the embeddable player SDK behind the contract the rest of
// the engine relies on: an idempotent connect, a device-active flag, and
// fire-and-forget transport commands whose failures are logged rather than
// surfaced, because the remote device may lag or be transiently unavailable.
type Adapter struct {
	sdk    SDK
	slot   *DeviceSlot
	logger *log.Logger

	mu        sync.Mutex
	connected bool
	active    bool
	deviceID  string
	callbacks []func(PlayerState)

	readyCh chan readyResult
}

type readyResult struct {
	deviceID string
	err      error
}

// NewAdapter creates an adapter over the given SDK and registers its event
// listeners. The slot is published to on every ready notification so other
// components can read the device ID without re-deriving it.
func NewAdapter(sdk SDK, slot *DeviceSlot, logger *log.Logger) *Adapter {
	if slot == nil {
		slot = &DeviceSlot{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	a := &Adapter{
		sdk:     sdk,
		slot:    slot,
		logger:  logger.With("component", "adapter"),
		readyCh: make(chan readyResult, 1),
	}

	sdk.AddListener(EventReady, a.onReady)
	sdk.AddListener(EventNotReady, a.onNotReady)
	sdk.AddListener(EventPlayerStateChanged, a.onStateChanged)
	sdk.AddListener(EventInitializationError, a.onFatal)
	sdk.AddListener(EventAuthenticationError, a.onFatal)
	sdk.AddListener(EventAccountError, func(e Event) {
		a.logger.Error("account error from player", "message", e.Message)
	})
	sdk.AddListener(EventPlaybackError, func(e Event) {
		a.logger.Error("playback error from player", "message", e.Message)
	})

	return a
}

// Slot returns the shared device ID slot.
func (a *Adapter) Slot() *DeviceSlot {
	return a.slot
}

// Connect performs the SDK handshake and waits for the ready notification
// carrying the device ID. Idempotent: while connected it returns the cached
// device ID without re-handshaking.
func (a *Adapter) Connect(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.connected && a.deviceID != "" {
		id := a.deviceID
		a.mu.Unlock()
		return id, nil
	}
	a.mu.Unlock()

	if err := a.sdk.Connect(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}

	select {
	case res := <-a.readyCh:
		if res.err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrConnection, res.err)
		}
		a.mu.Lock()
		a.connected = true
		a.mu.Unlock()
		return res.deviceID, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", shared.ErrConnection, ctx.Err())
	}
}

// Disconnect tears down the SDK connection and clears the device slot.
func (a *Adapter) Disconnect() {
	a.sdk.Disconnect()
	a.mu.Lock()
	a.connected = false
	a.active = false
	a.mu.Unlock()
	a.slot.clear()
}

// DeviceID returns the published device ID, reporting false while absent.
func (a *Adapter) DeviceID() (string, bool) {
	return a.slot.Get()
}

// Active reports whether the device is currently ready to accept commands.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// OnStateChange registers a listener for player state reports. Each callback
// receives the latest truth; consumers must not treat calls as diffs.
func (a *Adapter) OnStateChange(cb func(PlayerState)) {
	a.mu.Lock()
	a.callbacks = append(a.callbacks, cb)
	a.mu.Unlock()
}

// Play resumes playback on the local device.
func (a *Adapter) Play(ctx context.Context) error {
	return a.command(ctx, "play", a.sdk.Resume)
}

// Pause pauses playback on the local device.
func (a *Adapter) Pause(ctx context.Context) error {
	return a.command(ctx, "pause", a.sdk.Pause)
}

// Toggle flips between playing and paused.
func (a *Adapter) Toggle(ctx context.Context) error {
	return a.command(ctx, "toggle", a.sdk.TogglePlay)
}

// SkipNext advances to the next track.
func (a *Adapter) SkipNext(ctx context.Context) error {
	return a.command(ctx, "next", a.sdk.NextTrack)
}

// SkipPrevious returns to the previous track.
func (a *Adapter) SkipPrevious(ctx context.Context) error {
	return a.command(ctx, "previous", a.sdk.PreviousTrack)
}

// Seek moves playback of the current track to the given position.
func (a *Adapter) Seek(ctx context.Context, positionMS int) error {
	return a.command(ctx, "seek", func(ctx context.Context) error {
		return a.sdk.Seek(ctx, positionMS)
	})
}

// SetVolume sets the device volume in the range 0..1.
func (a *Adapter) SetVolume(ctx context.Context, volume float64) error {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return a.command(ctx, "volume", func(ctx context.Context) error {
		return a.sdk.SetVolume(ctx, volume)
	})
}

// command rejects commands while the device is inactive and otherwise
// forwards them fire-and-forget: SDK failures are logged, not returned.
func (a *Adapter) command(ctx context.Context, name string, fn func(context.Context) error) error {
	if !a.Active() {
		a.logger.Warn("command rejected, device not ready", "command", name)
		return shared.ErrDeviceUnavailable
	}
	if err := fn(ctx); err != nil {
		a.logger.Error("player command failed", "command", name, "error", err)
	}
	return nil
}

func (a *Adapter) onReady(e Event) {
	a.logger.Info("device ready", "device_id", e.DeviceID)

	a.mu.Lock()
	a.active = true
	a.deviceID = e.DeviceID
	a.mu.Unlock()

	a.slot.set(e.DeviceID)

	select {
	case a.readyCh <- readyResult{deviceID: e.DeviceID}:
	default:
	}
}

func (a *Adapter) onNotReady(e Event) {
	a.logger.Warn("device went offline", "device_id", e.DeviceID)

	a.mu.Lock()
	a.active = false
	a.mu.Unlock()

	a.slot.clear()
}

func (a *Adapter) onStateChanged(e Event) {
	if e.State == nil {
		a.mu.Lock()
		a.active = false
		a.mu.Unlock()
		return
	}

	a.mu.Lock()
	a.active = true
	callbacks := make([]func(PlayerState), len(a.callbacks))
	copy(callbacks, a.callbacks)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(*e.State)
	}
}

func (a *Adapter) onFatal(e Event) {
	a.logger.Error("player connection error", "message", e.Message)
	select {
	case a.readyCh <- readyResult{err: fmt.Errorf("%s", e.Message)}:
	default:
	}
}
