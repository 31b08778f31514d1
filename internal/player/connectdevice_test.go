package player

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	tu "github.com/Frederikmahipal/ba-client/internal/testing"
)

func deviceListTransport() *tu.MockTransport {
	transport := &tu.MockTransport{}
	transport.DevicesFn = func(ctx context.Context) ([]models.Device, error) {
		return []models.Device{
			{ID: "other", Name: "Kitchen Speaker", Type: "Speaker", VolumePercent: 80},
			{ID: "device-1", Name: "ba-client", Type: "Computer", VolumePercent: 50},
		}, nil
	}
	return transport
}

func newTestConnectDevice(transport *tu.MockTransport, name string) *ConnectDevice {
	opts := SDKOptions{Name: name}
	return NewConnectDevice(transport, opts, time.Hour, shared.NewLogger(io.Discard))
}

func TestConnectDeviceConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolves The Named Device And Emits Ready", func(t *testing.T) {
		transport := deviceListTransport()
		sdk := newTestConnectDevice(transport, "ba-client")

		var readyID string
		sdk.AddListener(EventReady, func(e Event) { readyID = e.DeviceID })

		if err := sdk.Connect(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sdk.Disconnect()

		if readyID != "device-1" {
			t.Errorf("expected ready for device-1, got %q", readyID)
		}
	})

	t.Run("Fails When No Device Matches", func(t *testing.T) {
		transport := deviceListTransport()
		sdk := newTestConnectDevice(transport, "Bedroom TV")

		var gotError bool
		sdk.AddListener(EventInitializationError, func(e Event) { gotError = true })

		if err := sdk.Connect(ctx); err == nil {
			t.Error("expected an error for an unknown device name")
		}
		if !gotError {
			t.Error("expected an initialization_error event")
		}
	})

	t.Run("Applies Initial Volume", func(t *testing.T) {
		transport := deviceListTransport()
		var gotPercent int
		transport.SetVolumeFn = func(ctx context.Context, deviceID string, percent int) error {
			gotPercent = percent
			return nil
		}

		sdk := NewConnectDevice(transport, SDKOptions{Name: "ba-client", Volume: 0.7}, time.Hour, shared.NewLogger(io.Discard))
		if err := sdk.Connect(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sdk.Disconnect()

		if gotPercent != 70 {
			t.Errorf("expected volume 70, got %d", gotPercent)
		}
	})
}

func TestConnectDeviceCommands(t *testing.T) {
	ctx := context.Background()

	connect := func(t *testing.T, transport *tu.MockTransport) *ConnectDevice {
		t.Helper()
		sdk := newTestConnectDevice(transport, "ba-client")
		if err := sdk.Connect(ctx); err != nil {
			t.Fatalf("connect: %v", err)
		}
		t.Cleanup(sdk.Disconnect)
		return sdk
	}

	t.Run("Resume Transfers Playback With Play", func(t *testing.T) {
		transport := deviceListTransport()
		var gotPlay bool
		var gotDevice string
		transport.ActivateDeviceFn = func(ctx context.Context, deviceID string, play bool) error {
			gotDevice, gotPlay = deviceID, play
			return nil
		}
		sdk := connect(t, transport)

		if err := sdk.Resume(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !gotPlay || gotDevice != "device-1" {
			t.Errorf("expected play transfer to device-1, got device=%s play=%v", gotDevice, gotPlay)
		}
	})

	t.Run("TogglePlay Resumes When State Is Unknown", func(t *testing.T) {
		transport := deviceListTransport()
		sdk := connect(t, transport)

		if err := sdk.TogglePlay(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transport.CallCount("ActivateDevice") != 1 {
			t.Errorf("expected a resume via activation, got calls %v", transport.Calls)
		}
	})

	t.Run("SetVolume Converts And Clamps", func(t *testing.T) {
		transport := deviceListTransport()
		var gotPercent int
		transport.SetVolumeFn = func(ctx context.Context, deviceID string, percent int) error {
			gotPercent = percent
			return nil
		}
		sdk := connect(t, transport)

		if err := sdk.SetVolume(ctx, 1.5); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotPercent != 100 {
			t.Errorf("expected clamp to 100, got %d", gotPercent)
		}

		if err := sdk.SetVolume(ctx, 0.25); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotPercent != 25 {
			t.Errorf("expected 25, got %d", gotPercent)
		}
	})

	t.Run("GetVolume Reads The Device List", func(t *testing.T) {
		transport := deviceListTransport()
		sdk := connect(t, transport)

		volume, err := sdk.GetVolume(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if volume != 0.5 {
			t.Errorf("expected 0.5, got %v", volume)
		}
	})
}
