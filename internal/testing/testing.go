// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/services"
)

// MockTransport is a scriptable test double for [services.PlayerTransport].
// Unset function fields make the corresponding call a successful no-op. Every
// call is recorded in Calls.
type MockTransport struct {
	mu    sync.Mutex
	Calls []string

	ActivateDeviceFn    func(ctx context.Context, deviceID string, play bool) error
	PlayFn              func(ctx context.Context, deviceID string, req services.PlayRequest) error
	PauseFn             func(ctx context.Context, deviceID string) error
	NextFn              func(ctx context.Context, deviceID string) error
	PreviousFn          func(ctx context.Context, deviceID string) error
	SeekFn              func(ctx context.Context, deviceID string, positionMS int) error
	SetVolumeFn         func(ctx context.Context, deviceID string, percent int) error
	CurrentlyPlayingFn  func(ctx context.Context) (*models.CurrentlyPlaying, error)
	QueueFn             func(ctx context.Context) (*models.Queue, error)
	RecentlyPlayedFn    func(ctx context.Context, limit int) ([]models.PlayedTrack, error)
	AddRecentlyPlayedFn func(ctx context.Context, trackID string, playedAt time.Time) error
	DevicesFn           func(ctx context.Context) ([]models.Device, error)
}

var _ services.PlayerTransport = (*MockTransport)(nil)

func (m *MockTransport) record(call string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()
}

// CallCount returns how many times the named call was recorded.
func (m *MockTransport) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *MockTransport) ActivateDevice(ctx context.Context, deviceID string, play bool) error {
	m.record("ActivateDevice")
	if m.ActivateDeviceFn != nil {
		return m.ActivateDeviceFn(ctx, deviceID, play)
	}
	return nil
}

func (m *MockTransport) Play(ctx context.Context, deviceID string, req services.PlayRequest) error {
	m.record("Play")
	if m.PlayFn != nil {
		return m.PlayFn(ctx, deviceID, req)
	}
	return nil
}

func (m *MockTransport) Pause(ctx context.Context, deviceID string) error {
	m.record("Pause")
	if m.PauseFn != nil {
		return m.PauseFn(ctx, deviceID)
	}
	return nil
}

func (m *MockTransport) Next(ctx context.Context, deviceID string) error {
	m.record("Next")
	if m.NextFn != nil {
		return m.NextFn(ctx, deviceID)
	}
	return nil
}

func (m *MockTransport) Previous(ctx context.Context, deviceID string) error {
	m.record("Previous")
	if m.PreviousFn != nil {
		return m.PreviousFn(ctx, deviceID)
	}
	return nil
}

func (m *MockTransport) Seek(ctx context.Context, deviceID string, positionMS int) error {
	m.record("Seek")
	if m.SeekFn != nil {
		return m.SeekFn(ctx, deviceID, positionMS)
	}
	return nil
}

func (m *MockTransport) SetVolume(ctx context.Context, deviceID string, percent int) error {
	m.record("SetVolume")
	if m.SetVolumeFn != nil {
		return m.SetVolumeFn(ctx, deviceID, percent)
	}
	return nil
}

func (m *MockTransport) CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error) {
	m.record("CurrentlyPlaying")
	if m.CurrentlyPlayingFn != nil {
		return m.CurrentlyPlayingFn(ctx)
	}
	return nil, nil
}

func (m *MockTransport) Queue(ctx context.Context) (*models.Queue, error) {
	m.record("Queue")
	if m.QueueFn != nil {
		return m.QueueFn(ctx)
	}
	return &models.Queue{}, nil
}

func (m *MockTransport) RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayedTrack, error) {
	m.record("RecentlyPlayed")
	if m.RecentlyPlayedFn != nil {
		return m.RecentlyPlayedFn(ctx, limit)
	}
	return nil, nil
}

func (m *MockTransport) AddRecentlyPlayed(ctx context.Context, trackID string, playedAt time.Time) error {
	m.record("AddRecentlyPlayed")
	if m.AddRecentlyPlayedFn != nil {
		return m.AddRecentlyPlayedFn(ctx, trackID, playedAt)
	}
	return nil
}

func (m *MockTransport) Devices(ctx context.Context) ([]models.Device, error) {
	m.record("Devices")
	if m.DevicesFn != nil {
		return m.DevicesFn(ctx)
	}
	return nil, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
