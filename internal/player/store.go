package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/services"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/charmbracelet/log"
)

// UpdateKind identifies which slice of playback state changed.
type UpdateKind int

const (
	UpdateNowPlaying UpdateKind = iota
	UpdateQueue
	UpdateHistory
)

// Update is pushed to subscribers after the store commits a state change.
type Update struct {
	Kind UpdateKind
}

// DeviceSource is the store's read-only view of the device adapter.
type DeviceSource interface {
	DeviceID() (string, bool)
	Active() bool
}

// Store is the single writer of the currently-playing fact, the queue
// snapshot and the history list. All other components read through the
// accessors and cause writes only via SubmitPlayIntent.
//
// Facts move Idle → Optimistic (intent issued, progress zero) → Confirmed
// (a poll agreed on the track ID) → Superseded (a poll reported a different
// track, recording the previous one into history).
type Store struct {
	transport services.PlayerTransport
	device    DeviceSource
	sequencer *Sequencer
	cfg       shared.PlayerConfig
	logger    *log.Logger
	now       func() time.Time

	// seq stamps play intents; stale poll and refetch results are discarded
	// by comparing against it before writing shared state.
	seq atomic.Uint64

	mu         sync.Mutex
	current    *models.CurrentlyPlaying
	confirmed  *models.CurrentlyPlaying
	optimistic bool
	queue      *models.Queue
	history    []models.PlayedTrack
	subs       []chan Update
}

// NewStore creates the playback state store. It does not start polling;
// call Run for that.
func NewStore(transport services.PlayerTransport, device DeviceSource, sequencer *Sequencer, cfg shared.PlayerConfig, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		transport: transport,
		device:    device,
		sequencer: sequencer,
		cfg:       cfg,
		logger:    logger.With("component", "store"),
		now:       time.Now,
	}
}

// Subscribe returns a channel receiving an Update whenever playback state
// changes. Slow subscribers drop updates instead of blocking the store.
func (s *Store) Subscribe() <-chan Update {
	ch := make(chan Update, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) notify(kind UpdateKind) {
	s.mu.Lock()
	subs := make([]chan Update, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- Update{Kind: kind}:
		default:
		}
	}
}

// GetCurrentFact returns a copy of the currently-playing fact, or nil.
func (s *Store) GetCurrentFact() *models.CurrentlyPlaying {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	fact := *s.current
	return &fact
}

// GetQueue returns a copy of the queue snapshot. The zero Queue means the
// snapshot is currently invalidated or never fetched.
func (s *Store) GetQueue() models.Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue == nil {
		return models.Queue{}
	}
	queue := models.Queue{Tracks: append([]models.Track(nil), s.queue.Tracks...)}
	if s.queue.CurrentlyPlaying != nil {
		current := *s.queue.CurrentlyPlaying
		queue.CurrentlyPlaying = &current
	}
	return queue
}

// GetHistory returns a copy of the history list, most recent first.
func (s *Store) GetHistory() []models.PlayedTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PlayedTrack(nil), s.history...)
}

// SubmitPlayIntent plays the track, optionally inside its surrounding
// collection. The currently-playing fact is written optimistically before
// any network call so UI feedback is instantaneous; a transport failure
// rolls the fact back to the last confirmed value and surfaces the error.
//
// Steps run strictly in sequence: activate device → settle → play → clear
// queue cache → delayed queue refetch → delayed history refetch. No step is
// skipped on a warm path because upstream convergence is time-based, not
// signaled.
func (s *Store) SubmitPlayIntent(ctx context.Context, track models.Track, playContext *models.PlaybackContext) error {
	if track.ID == "" || track.URI == "" {
		return fmt.Errorf("%w: track without id or uri", shared.ErrInvalidInput)
	}

	deviceID, ok := s.device.DeviceID()
	if !ok {
		s.logger.Warn("play intent without a known device", "track", track.Name)
		return shared.ErrNoActiveDevice
	}
	if !s.device.Active() {
		s.logger.Warn("play intent while device offline", "track", track.Name)
		return shared.ErrDeviceUnavailable
	}

	seq := s.seq.Add(1)
	req := Resolve(track.URI, playContext)

	s.mu.Lock()
	rollback := s.confirmed
	s.current = &models.CurrentlyPlaying{
		Item:       track,
		IsPlaying:  true,
		ProgressMS: 0,
		Context:    playContext,
	}
	s.optimistic = true
	s.mu.Unlock()
	s.notify(UpdateNowPlaying)

	err := s.sequencer.EnsureActive(ctx, deviceID)
	if err == nil {
		err = s.transport.Play(ctx, deviceID, req)
	}
	if err != nil {
		s.mu.Lock()
		// Only roll back if no newer intent has taken the slot.
		if s.seq.Load() == seq {
			s.current = rollback
			s.optimistic = false
		}
		s.mu.Unlock()
		s.notify(UpdateNowPlaying)
		s.logger.Error("play intent failed", "track", track.Name, "error", err)
		return fmt.Errorf("%w: %v", shared.ErrPlaybackRequest, err)
	}

	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
	s.notify(UpdateQueue)

	go s.refreshQueueAfter(ctx, seq, s.cfg.QueueRefreshDelay())
	go s.refreshHistoryAfter(ctx, seq, s.cfg.HistoryInvalidateDelay())

	return nil
}

// Run starts the polling loops and blocks until the context ends. Every
// tick is guarded: a failing poll logs and keeps the schedule, it never
// kills the loop.
func (s *Store) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, loop := range []struct {
		interval time.Duration
		tick     func(context.Context) error
	}{
		{s.cfg.NowPollInterval(), s.pollCurrent},
		{s.cfg.QueuePollInterval(), s.pollQueue},
		{s.cfg.HistoryPollInterval(), s.pollHistory},
	} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.pollLoop(ctx, loop.interval, loop.tick)
		}()
	}
	wg.Wait()
}

func (s *Store) pollLoop(ctx context.Context, interval time.Duration, tick func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := tick(ctx); err != nil {
				s.logger.Error("poll failed", "error", err)
			}
		}
	}
}

// pollCurrent reconciles the local fact with the remote player snapshot and
// detects track transitions.
func (s *Store) pollCurrent(ctx context.Context) error {
	seqAtFetch := s.seq.Load()

	fact, err := s.transport.CurrentlyPlaying(ctx)
	if errors.Is(err, shared.ErrNothingPlaying) {
		// The remote session is gone or not yet visible; keep the local fact.
		return nil
	}
	if err != nil {
		return err
	}

	s.applyPolledFact(ctx, seqAtFetch, fact)
	return nil
}

// applyPolledFact commits a polled snapshot, handling confirmation and
// transition per the state machine.
func (s *Store) applyPolledFact(ctx context.Context, seqAtFetch uint64, fact *models.CurrentlyPlaying) {
	if fact == nil {
		return
	}

	s.mu.Lock()

	if s.seq.Load() != seqAtFetch {
		// A newer intent superseded this poll while it was in flight.
		s.mu.Unlock()
		return
	}

	prev := s.current

	if prev == nil {
		s.current = fact
		s.confirmed = fact
		s.optimistic = false
		s.mu.Unlock()
		s.notify(UpdateNowPlaying)
		return
	}

	if prev.Item.SameTrack(fact.Item) {
		// Confirmed: adopt the remote progress and playing flag. Keep the
		// locally known context when the poll lost it.
		if fact.Context == nil {
			fact.Context = prev.Context
		}
		s.current = fact
		s.confirmed = fact
		s.optimistic = false
		s.mu.Unlock()
		s.notify(UpdateNowPlaying)
		return
	}

	if s.optimistic && s.confirmed != nil && s.confirmed.Item.SameTrack(fact.Item) {
		// The upstream still reports the pre-intent track: it has not
		// observed the play request yet. Discard rather than treating the
		// lag as a transition.
		s.mu.Unlock()
		return
	}

	// Superseded: record the previous track into history before adopting
	// the new fact, and invalidate the queue snapshot.
	entry := models.PlayedTrack{
		Track:    prev.Item,
		PlayedAt: s.now(),
		Context:  prev.Context,
	}
	s.history = dedupPrepend(s.history, entry)
	s.current = fact
	s.confirmed = fact
	s.optimistic = false
	s.queue = nil
	s.mu.Unlock()

	s.notify(UpdateNowPlaying)
	s.notify(UpdateHistory)
	s.notify(UpdateQueue)

	go s.backfillHistory(ctx, entry)
	go s.refreshQueueAfter(ctx, seqAtFetch, s.cfg.QueueRefreshDelay())
	go s.refreshHistoryAfter(ctx, seqAtFetch, s.cfg.HistoryInvalidateDelay())
}

// ApplyPlayerState folds an SDK state report into the current fact. Only the
// store writes; the adapter merely forwards the report here.
func (s *Store) ApplyPlayerState(state PlayerState) {
	s.mu.Lock()
	if s.current == nil || state.Track == nil || !s.current.Item.SameTrack(*state.Track) {
		s.mu.Unlock()
		return
	}
	fact := *s.current
	fact.IsPlaying = !state.Paused
	fact.ProgressMS = state.PositionMS
	s.current = &fact
	s.mu.Unlock()
	s.notify(UpdateNowPlaying)
}

func (s *Store) pollQueue(ctx context.Context) error {
	seqAtFetch := s.seq.Load()

	queue, err := s.transport.Queue(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.seq.Load() != seqAtFetch {
		s.mu.Unlock()
		return nil
	}
	s.queue = queue
	s.mu.Unlock()
	s.notify(UpdateQueue)
	return nil
}

func (s *Store) pollHistory(ctx context.Context) error {
	played, err := s.transport.RecentlyPlayed(ctx, 50)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.history = dedupKeepFirst(played)
	s.mu.Unlock()
	s.notify(UpdateHistory)
	return nil
}

// refreshQueueAfter refetches the queue after the configured settle delay,
// giving the upstream time to converge on the new playback session. The
// result is discarded when a newer intent has been issued in the meantime
// or the engine context has ended.
func (s *Store) refreshQueueAfter(ctx context.Context, seq uint64, delay time.Duration) {
	if err := sleepContext(ctx, delay); err != nil {
		return
	}

	if s.seq.Load() != seq {
		return
	}

	queue, err := s.transport.Queue(ctx)
	if err != nil {
		s.logger.Error("queue refetch failed", "error", err)
		return
	}

	s.mu.Lock()
	if s.seq.Load() != seq {
		s.mu.Unlock()
		return
	}
	s.queue = queue
	s.mu.Unlock()
	s.notify(UpdateQueue)
}

// refreshHistoryAfter refetches server-side history after the configured
// delay. Local history keeps serving reads in the meantime.
func (s *Store) refreshHistoryAfter(ctx context.Context, seq uint64, delay time.Duration) {
	if err := sleepContext(ctx, delay); err != nil {
		return
	}

	if s.seq.Load() != seq {
		return
	}

	if err := s.pollHistory(ctx); err != nil {
		s.logger.Error("history refetch failed", "error", err)
	}
}

// backfillHistory records a transition server-side, best effort.
func (s *Store) backfillHistory(ctx context.Context, entry models.PlayedTrack) {
	err := s.transport.AddRecentlyPlayed(ctx, entry.Track.ID, entry.PlayedAt)
	if err != nil {
		s.logger.Warn("history backfill failed", "track", entry.Track.Name, "error", err)
	}
}

// ResumeOnReady restores playback onto a freshly ready device: resume the
// remote session at its exact position when one exists, otherwise replay the
// most recent history entry from the start. Called once per ready
// notification, outside the intent path.
func (s *Store) ResumeOnReady(ctx context.Context, deviceID string) error {
	if deviceID == "" {
		return shared.ErrNoActiveDevice
	}

	if err := sleepContext(ctx, s.cfg.ResumeSettle()); err != nil {
		return err
	}

	fact, err := s.transport.CurrentlyPlaying(ctx)
	if err != nil && !errors.Is(err, shared.ErrNothingPlaying) {
		return err
	}

	if err := s.sequencer.EnsureActive(ctx, deviceID); err != nil {
		return err
	}

	if fact == nil {
		recent, err := s.transport.RecentlyPlayed(ctx, 1)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			s.logger.Info("nothing to resume")
			return nil
		}
		track := recent[0].Track
		return s.SubmitPlayIntent(ctx, track, recent[0].Context)
	}

	req := services.PlayRequest{URIs: []string{fact.Item.URI}, PositionMS: fact.ProgressMS}
	if err := s.transport.Play(ctx, deviceID, req); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPlaybackRequest, err)
	}

	if !fact.IsPlaying {
		if err := sleepContext(ctx, s.cfg.ActivationSettle()); err != nil {
			return err
		}
		if err := s.transport.Pause(ctx, deviceID); err != nil {
			s.logger.Warn("failed to restore paused state", "error", err)
		}
	}

	s.mu.Lock()
	s.current = fact
	s.confirmed = fact
	s.optimistic = false
	s.mu.Unlock()
	s.notify(UpdateNowPlaying)
	return nil
}

// dedupPrepend inserts the entry at the head after removing any prior
// occurrence of the same track, so a track can reappear in history but only
// once, at the top.
func dedupPrepend(history []models.PlayedTrack, entry models.PlayedTrack) []models.PlayedTrack {
	out := make([]models.PlayedTrack, 0, len(history)+1)
	out = append(out, entry)
	for _, item := range history {
		if item.Track.ID != entry.Track.ID {
			out = append(out, item)
		}
	}
	return out
}

// dedupKeepFirst keeps only the first (most recent) occurrence of each track.
func dedupKeepFirst(played []models.PlayedTrack) []models.PlayedTrack {
	seen := make(map[string]bool, len(played))
	out := make([]models.PlayedTrack, 0, len(played))
	for _, item := range played {
		if seen[item.Track.ID] {
			continue
		}
		seen[item.Track.ID] = true
		out = append(out, item)
	}
	return out
}
