package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Frederikmahipal/ba-client/internal/formatter"
	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/player"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play starts playback of a track on the chosen device, inside the given
// context when one is provided.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: track URI or ID", shared.ErrMissingArgument)
	}
	uri = normalizeTrackURI(uri)

	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	deviceID, err := r.resolveDevice(ctx, cmd.String("device"))
	if err != nil {
		return err
	}

	playContext := contextFromFlags(cmd.String("context"), int(cmd.Int("position")))

	sequencer := player.NewSequencer(r.spotify, r.config.Player, r.logger)
	if err := sequencer.EnsureActive(ctx, deviceID); err != nil {
		return err
	}

	req := player.Resolve(uri, playContext)
	if err := r.spotify.Play(ctx, deviceID, req); err != nil {
		return err
	}

	return r.writePlain("✓ Playing %s\n", uri)
}

// NowPlaying prints the current playback snapshot.
func (r *Runner) NowPlaying(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	fact, err := r.spotify.CurrentlyPlaying(ctx)
	if err != nil && !errors.Is(err, shared.ErrNothingPlaying) {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(fact, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.NowPlayingText(fact))
}

// Queue prints the upcoming tracks, capped for display unless --all is set.
func (r *Runner) Queue(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	queue, err := r.spotify.Queue(ctx)
	if err != nil {
		return err
	}

	view := player.ProjectUpNext(*queue)
	if cmd.Bool("all") {
		view = player.UpNextView{Items: queue.Tracks, Shown: len(queue.Tracks), Total: len(queue.Tracks)}
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.QueueText(view))
}

// History prints recently played tracks, deduplicated so each track appears
// once at its most recent position.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	played, err := r.spotify.RecentlyPlayed(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	var fact *models.CurrentlyPlaying
	if current, err := r.spotify.CurrentlyPlaying(ctx); err == nil {
		fact = current
	}

	view := player.ProjectHistory(played, fact)

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(view, cmd.Bool("pretty"))
	case cmd.Bool("markdown"):
		return r.writePlain("%s", formatter.HistoryMarkdown(view))
	default:
		return r.writePlain("%s", formatter.HistoryText(view))
	}
}

// Devices lists the account's playback devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	devices, err := r.spotify.Devices(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, cmd.Bool("pretty"))
	}

	if len(devices) == 0 {
		return r.writePlain("No devices found\n")
	}
	for _, device := range devices {
		marker := " "
		if device.IsActive {
			marker = "*"
		}
		r.writePlain("%s %s (%s) vol %d%% [%s]\n", marker, device.Name, device.Type, device.VolumePercent, device.ID)
	}
	return nil
}

// resolveDevice picks the target device: an explicit ID wins, otherwise the
// account's active device.
func (r *Runner) resolveDevice(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	devices, err := r.spotify.Devices(ctx)
	if err != nil {
		return "", err
	}
	for _, device := range devices {
		if device.IsActive {
			return device.ID, nil
		}
	}
	return "", shared.ErrNoActiveDevice
}

// contextFromFlags builds the playback context for the play command.
func contextFromFlags(contextURI string, position int) *models.PlaybackContext {
	if contextURI == "" {
		return nil
	}

	playContext := &models.PlaybackContext{
		Type: contextTypeFromURI(contextURI),
		ID:   lastURISegment(contextURI),
		URI:  contextURI,
	}
	if position >= 0 {
		p := position
		playContext.Position = &p
	}
	return playContext
}

func contextTypeFromURI(uri string) models.ContextType {
	switch {
	case strings.Contains(uri, ":album:"):
		return models.ContextAlbum
	case strings.Contains(uri, ":playlist:"):
		return models.ContextPlaylist
	case strings.Contains(uri, ":artist:"):
		return models.ContextArtist
	default:
		return models.ContextQueue
	}
}

func lastURISegment(uri string) string {
	parts := strings.Split(uri, ":")
	return parts[len(parts)-1]
}

// normalizeTrackURI accepts either a bare track ID or a full URI.
func normalizeTrackURI(uri string) string {
	if strings.Contains(uri, ":") {
		return uri
	}
	return "spotify:track:" + uri
}
