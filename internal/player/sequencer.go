package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/services"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// Sequencer guarantees the local device is the account's active output
// before a play intent is sent.
//
// Activation attempts are throttled to one per cooldown window. Attempts
// inside the window are skipped rather than queued: the device is very
// likely already active, and repeated activation calls are what trips the
// upstream rate limiter in the first place.
type Sequencer struct {
	transport services.PlayerTransport
	limiter   *rate.Limiter
	settle    time.Duration
	logger    *log.Logger
}

// NewSequencer creates a sequencer with the configured settle delay and
// activation cooldown.
func NewSequencer(transport services.PlayerTransport, cfg shared.PlayerConfig, logger *log.Logger) *Sequencer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Sequencer{
		transport: transport,
		limiter:   rate.NewLimiter(rate.Every(cfg.ActivationCooldown()), 1),
		settle:    cfg.ActivationSettle(),
		logger:    logger.With("component", "sequencer"),
	}
}

// EnsureActive activates the device and waits out the settle delay. The
// upstream needs real clock time to propagate a device transfer, so the
// delay is never skipped after a real activation call.
//
// A missing device ID fails fast with [shared.ErrNoActiveDevice]. A 429 from
// the upstream is swallowed: the device is likely already active and a retry
// would only feed the rate limiter. Any other activation failure is
// surfaced to the caller so the triggering intent fails loudly.
func (s *Sequencer) EnsureActive(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return shared.ErrNoActiveDevice
	}

	if !s.limiter.Allow() {
		s.logger.Debug("activation inside cooldown window, treating device as active", "device_id", deviceID)
		return nil
	}

	if err := s.transport.ActivateDevice(ctx, deviceID, false); err != nil {
		if errors.Is(err, shared.ErrRateLimited) {
			s.logger.Warn("activation rate limited upstream, continuing", "device_id", deviceID)
			return nil
		}
		return fmt.Errorf("device activation failed: %w", err)
	}

	return sleepContext(ctx, s.settle)
}

// sleepContext waits for the duration unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
