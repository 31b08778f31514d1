package player

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/shared"
)

// mockSDK is a scriptable in-memory SDK for adapter tests.
type mockSDK struct {
	mu           sync.Mutex
	listeners    map[EventType][]func(Event)
	connectCalls int
	connectErr   error
	emitOnReady  bool
	commandErr   error
	commands     []string
}

var _ SDK = (*mockSDK)(nil)

func newMockSDK() *mockSDK {
	return &mockSDK{listeners: make(map[EventType][]func(Event)), emitOnReady: true}
}

func (m *mockSDK) AddListener(event EventType, handler func(Event)) {
	m.mu.Lock()
	m.listeners[event] = append(m.listeners[event], handler)
	m.mu.Unlock()
}

func (m *mockSDK) emit(event EventType, e Event) {
	m.mu.Lock()
	handlers := append([]func(Event){}, m.listeners[event]...)
	m.mu.Unlock()
	for _, handler := range handlers {
		handler(e)
	}
}

func (m *mockSDK) Connect(ctx context.Context) error {
	m.mu.Lock()
	m.connectCalls++
	err := m.connectErr
	emitReady := m.emitOnReady
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if emitReady {
		m.emit(EventReady, Event{DeviceID: "device-1"})
	}
	return nil
}

func (m *mockSDK) Disconnect() {
	m.emit(EventNotReady, Event{DeviceID: "device-1"})
}

func (m *mockSDK) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, name)
	return m.commandErr
}

func (m *mockSDK) TogglePlay(ctx context.Context) error    { return m.record("toggle") }
func (m *mockSDK) Resume(ctx context.Context) error        { return m.record("resume") }
func (m *mockSDK) Pause(ctx context.Context) error         { return m.record("pause") }
func (m *mockSDK) PreviousTrack(ctx context.Context) error { return m.record("previous") }
func (m *mockSDK) NextTrack(ctx context.Context) error     { return m.record("next") }

func (m *mockSDK) Seek(ctx context.Context, positionMS int) error {
	return m.record("seek")
}

func (m *mockSDK) SetVolume(ctx context.Context, volume float64) error {
	return m.record("volume")
}

func (m *mockSDK) GetVolume(ctx context.Context) (float64, error) {
	return 0.5, nil
}

func newTestAdapter(sdk SDK) *Adapter {
	return NewAdapter(sdk, nil, shared.NewLogger(io.Discard))
}

func TestAdapterConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns Device ID From Ready Event", func(t *testing.T) {
		sdk := newMockSDK()
		adapter := newTestAdapter(sdk)

		deviceID, err := adapter.Connect(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if deviceID != "device-1" {
			t.Errorf("expected device-1, got %s", deviceID)
		}
		if !adapter.Active() {
			t.Error("expected the device to be active after ready")
		}

		slotID, ok := adapter.DeviceID()
		if !ok || slotID != "device-1" {
			t.Errorf("expected the slot to be published, got %q ok=%v", slotID, ok)
		}
	})

	t.Run("Is Idempotent While Connected", func(t *testing.T) {
		sdk := newMockSDK()
		adapter := newTestAdapter(sdk)

		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("first connect: %v", err)
		}
		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("second connect: %v", err)
		}

		if sdk.connectCalls != 1 {
			t.Errorf("expected one SDK handshake, got %d", sdk.connectCalls)
		}
	})

	t.Run("Surfaces Handshake Failure", func(t *testing.T) {
		sdk := newMockSDK()
		sdk.connectErr = errors.New("token rejected")
		adapter := newTestAdapter(sdk)

		if _, err := adapter.Connect(ctx); !errors.Is(err, shared.ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	})

	t.Run("Fails On Initialization Error Event", func(t *testing.T) {
		sdk := newMockSDK()
		sdk.emitOnReady = false
		adapter := newTestAdapter(sdk)

		go func() {
			time.Sleep(10 * time.Millisecond)
			sdk.emit(EventInitializationError, Event{Message: "bad playback config"})
		}()

		if _, err := adapter.Connect(ctx); !errors.Is(err, shared.ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	})

	t.Run("Honors Context Cancellation", func(t *testing.T) {
		sdk := newMockSDK()
		sdk.emitOnReady = false
		adapter := newTestAdapter(sdk)

		timedCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		if _, err := adapter.Connect(timedCtx); !errors.Is(err, shared.ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	})
}

func TestAdapterLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Ready Clears The Slot", func(t *testing.T) {
		sdk := newMockSDK()
		adapter := newTestAdapter(sdk)

		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("connect: %v", err)
		}

		sdk.emit(EventNotReady, Event{DeviceID: "device-1"})

		if adapter.Active() {
			t.Error("expected the device to be inactive")
		}
		if _, ok := adapter.DeviceID(); ok {
			t.Error("expected the slot to be cleared")
		}
	})

	t.Run("Ready After Not Ready Restores The Slot", func(t *testing.T) {
		sdk := newMockSDK()
		adapter := newTestAdapter(sdk)

		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("connect: %v", err)
		}
		sdk.emit(EventNotReady, Event{DeviceID: "device-1"})
		sdk.emit(EventReady, Event{DeviceID: "device-1"})

		if !adapter.Active() {
			t.Error("expected the device to be active again")
		}
		if id, ok := adapter.DeviceID(); !ok || id != "device-1" {
			t.Errorf("expected the slot to be republished, got %q ok=%v", id, ok)
		}
	})

	t.Run("State Reports Fan Out To Listeners", func(t *testing.T) {
		sdk := newMockSDK()
		adapter := newTestAdapter(sdk)

		var got []PlayerState
		adapter.OnStateChange(func(state PlayerState) {
			got = append(got, state)
		})

		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("connect: %v", err)
		}

		track := testTrack(1)
		sdk.emit(EventPlayerStateChanged, Event{State: &PlayerState{Paused: true, PositionMS: 500, Track: &track}})

		if len(got) != 1 {
			t.Fatalf("expected one report, got %d", len(got))
		}
		if !got[0].Paused || got[0].PositionMS != 500 {
			t.Errorf("unexpected report %+v", got[0])
		}
	})
}

func TestAdapterCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejected While Inactive", func(t *testing.T) {
		adapter := newTestAdapter(newMockSDK())

		if err := adapter.Play(ctx); !errors.Is(err, shared.ErrDeviceUnavailable) {
			t.Errorf("expected ErrDeviceUnavailable, got %v", err)
		}
	})

	t.Run("Forwarded While Active", func(t *testing.T) {
		sdk := newMockSDK()
		adapter := newTestAdapter(sdk)
		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("connect: %v", err)
		}

		for name, fn := range map[string]func(context.Context) error{
			"play":     adapter.Play,
			"pause":    adapter.Pause,
			"toggle":   adapter.Toggle,
			"next":     adapter.SkipNext,
			"previous": adapter.SkipPrevious,
		} {
			if err := fn(ctx); err != nil {
				t.Errorf("%s: expected no error, got %v", name, err)
			}
		}

		if len(sdk.commands) != 5 {
			t.Errorf("expected 5 forwarded commands, got %v", sdk.commands)
		}
	})

	t.Run("SDK Failures Are Logged Not Returned", func(t *testing.T) {
		sdk := newMockSDK()
		sdk.commandErr = errors.New("device busy")
		adapter := newTestAdapter(sdk)
		if _, err := adapter.Connect(ctx); err != nil {
			t.Fatalf("connect: %v", err)
		}

		if err := adapter.Pause(ctx); err != nil {
			t.Errorf("expected the failure to be swallowed, got %v", err)
		}
	})
}
