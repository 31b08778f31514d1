package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/Frederikmahipal/ba-client/internal/shared"
	tu "github.com/Frederikmahipal/ba-client/internal/testing"
)

func newTestSequencer(transport *tu.MockTransport) *Sequencer {
	return NewSequencer(transport, testPlayerConfig(), shared.NewLogger(io.Discard))
}

func TestEnsureActive(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Device ID Fails Fast", func(t *testing.T) {
		transport := &tu.MockTransport{}
		sequencer := newTestSequencer(transport)

		if err := sequencer.EnsureActive(ctx, ""); !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Errorf("expected ErrNoActiveDevice, got %v", err)
		}
		if transport.CallCount("ActivateDevice") != 0 {
			t.Error("expected no activation call")
		}
	})

	t.Run("First Call Activates Without Starting Playback", func(t *testing.T) {
		transport := &tu.MockTransport{}
		var gotPlay bool
		transport.ActivateDeviceFn = func(ctx context.Context, deviceID string, play bool) error {
			gotPlay = play
			return nil
		}
		sequencer := newTestSequencer(transport)

		if err := sequencer.EnsureActive(ctx, "device-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotPlay {
			t.Error("activation must not start playback")
		}
	})

	t.Run("Second Call Within Cooldown Is Skipped", func(t *testing.T) {
		transport := &tu.MockTransport{}
		sequencer := newTestSequencer(transport)

		if err := sequencer.EnsureActive(ctx, "device-1"); err != nil {
			t.Fatalf("first call: %v", err)
		}
		if err := sequencer.EnsureActive(ctx, "device-1"); err != nil {
			t.Fatalf("second call: %v", err)
		}

		if got := transport.CallCount("ActivateDevice"); got != 1 {
			t.Errorf("expected one activation call, got %d", got)
		}
	})

	t.Run("Upstream Rate Limit Is Swallowed", func(t *testing.T) {
		transport := &tu.MockTransport{}
		transport.ActivateDeviceFn = func(ctx context.Context, deviceID string, play bool) error {
			return fmt.Errorf("%w: retry-after 30", shared.ErrRateLimited)
		}
		sequencer := newTestSequencer(transport)

		if err := sequencer.EnsureActive(ctx, "device-1"); err != nil {
			t.Errorf("expected a 429 to be swallowed, got %v", err)
		}
	})

	t.Run("Other Failures Are Surfaced", func(t *testing.T) {
		transport := &tu.MockTransport{}
		transport.ActivateDeviceFn = func(ctx context.Context, deviceID string, play bool) error {
			return errors.New("404 device not found")
		}
		sequencer := newTestSequencer(transport)

		if err := sequencer.EnsureActive(ctx, "device-1"); err == nil {
			t.Error("expected the activation failure to be surfaced")
		}
	})
}

func TestSleepContext(t *testing.T) {
	t.Run("Zero Duration Returns Immediately", func(t *testing.T) {
		if err := sleepContext(context.Background(), 0); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Cancelled Context Interrupts The Wait", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := sleepContext(ctx, 1000000000); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
