// Spotify implementation of [PlayerTransport]
//
// Player endpoint shapes based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// playerScopes are the OAuth scopes the playback engine needs.
var playerScopes = []string{
	"user-read-private",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"streaming",
}

// SpotifyImage represents an image resource on the wire.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents an artist reference on the wire.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents an album reference on the wire.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a track on the wire.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	URI         string          `json:"uri"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       *SpotifyAlbum   `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	TrackNumber int             `json:"track_number"`
}

// SpotifyContext represents the playback context on the wire. The upstream
// only sends type and URI; the collection ID is recoverable from the URI.
type SpotifyContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

type currentlyPlayingResponse struct {
	Item       *SpotifyTrack   `json:"item"`
	IsPlaying  bool            `json:"is_playing"`
	ProgressMS int             `json:"progress_ms"`
	Context    *SpotifyContext `json:"context"`
}

type queueResponse struct {
	CurrentlyPlaying *SpotifyTrack  `json:"currently_playing"`
	Queue            []SpotifyTrack `json:"queue"`
}

type recentlyPlayedItem struct {
	Track    SpotifyTrack    `json:"track"`
	PlayedAt time.Time       `json:"played_at"`
	Context  *SpotifyContext `json:"context"`
}

type recentlyPlayedResponse struct {
	Items []recentlyPlayedItem `json:"items"`
}

type devicesResponse struct {
	Devices []models.Device `json:"devices"`
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyPlayerService implements [PlayerTransport] against the backend
// proxy's Spotify player endpoints, using [oauth2] for session management.
type SpotifyPlayerService struct {
	config *oauth2.Config
	token  *oauth2.Token
	api    *APIService
}

var _ PlayerTransport = (*SpotifyPlayerService)(nil)

// NewSpotifyPlayerService creates a new Spotify player transport with the
// given OAuth2 credentials, issuing requests through the provided API client.
func NewSpotifyPlayerService(credentials map[string]string, api *APIService) (*SpotifyPlayerService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       playerScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	if api == nil {
		api = NewAPIService("", nil)
	}

	return &SpotifyPlayerService{config: config, api: api}, nil
}

func (s *SpotifyPlayerService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyPlayerService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the OAuth2 config for the callback server.
func (s *SpotifyPlayerService) OAuthConfig() *oauth2.Config {
	return s.config
}

// Token returns the current session token, or nil before Authenticate.
func (s *SpotifyPlayerService) Token() *oauth2.Token {
	return s.token
}

// Authenticate establishes the session. Expects an "access_token" (optionally
// with "refresh_token") or an "auth_code" in credentials.
func (s *SpotifyPlayerService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		}
		s.api.SetTokenSource(s.config.TokenSource(ctx, s.token))
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.api.SetTokenSource(s.config.TokenSource(ctx, token))
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// AuthenticateToken establishes the session from a previously persisted token.
func (s *SpotifyPlayerService) AuthenticateToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return shared.ErrNotAuthenticated
	}
	s.token = token
	s.api.SetTokenSource(s.config.TokenSource(ctx, token))
	return nil
}

// ActivateDevice transfers playback to the device without starting playback
// unless play is true.
func (s *SpotifyPlayerService) ActivateDevice(ctx context.Context, deviceID string, play bool) error {
	body, err := json.Marshal(map[string]any{
		"device_ids": []string{deviceID},
		"play":       play,
	})
	if err != nil {
		return fmt.Errorf("failed to encode activation body: %w", err)
	}

	resp, err := s.api.Put(ctx, "/player", body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return s.commandError(resp)
}

// Play starts playback of the resolved request on the device.
func (s *SpotifyPlayerService) Play(ctx context.Context, deviceID string, req PlayRequest) error {
	body, err := json.Marshal(struct {
		PlayRequest
		DeviceID string `json:"deviceId"`
	}{PlayRequest: req, DeviceID: deviceID})
	if err != nil {
		return fmt.Errorf("failed to encode play body: %w", err)
	}

	resp, err := s.api.Put(ctx, "/player/play", body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return s.commandError(resp)
}

// Pause pauses playback on the device.
func (s *SpotifyPlayerService) Pause(ctx context.Context, deviceID string) error {
	resp, err := s.api.Put(ctx, "/player/pause?device_id="+deviceID, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return s.commandError(resp)
}

// Next skips to the next track on the device.
func (s *SpotifyPlayerService) Next(ctx context.Context, deviceID string) error {
	resp, err := s.api.Post(ctx, "/player/next?device_id="+deviceID, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return s.commandError(resp)
}

// Previous skips to the previous track on the device.
func (s *SpotifyPlayerService) Previous(ctx context.Context, deviceID string) error {
	resp, err := s.api.Post(ctx, "/player/previous?device_id="+deviceID, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return s.commandError(resp)
}

// Seek moves playback of the current track to the given position.
func (s *SpotifyPlayerService) Seek(ctx context.Context, deviceID string, positionMS int) error {
	path := fmt.Sprintf("/player/seek?position_ms=%d&device_id=%s", positionMS, deviceID)
	resp, err := s.api.Put(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return s.commandError(resp)
}

// SetVolume sets the device volume as a percentage (0-100).
func (s *SpotifyPlayerService) SetVolume(ctx context.Context, deviceID string, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	path := fmt.Sprintf("/player/volume?volume_percent=%d&device_id=%s", percent, deviceID)
	resp, err := s.api.Put(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return s.commandError(resp)
}

// CurrentlyPlaying fetches the account's current playback snapshot.
func (s *SpotifyPlayerService) CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error) {
	resp, err := s.api.Get(ctx, "/player/currently-playing")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, shared.ErrNothingPlaying
	}
	if err := s.readError(resp); err != nil {
		return nil, err
	}

	var wire currentlyPlayingResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode currently-playing response: %w", err)
	}
	if wire.Item == nil {
		return nil, shared.ErrNothingPlaying
	}

	return &models.CurrentlyPlaying{
		Item:       wire.Item.toModel(),
		IsPlaying:  wire.IsPlaying,
		ProgressMS: wire.ProgressMS,
		Context:    wire.Context.toModel(),
	}, nil
}

// Queue fetches the account's up-next queue snapshot.
func (s *SpotifyPlayerService) Queue(ctx context.Context) (*models.Queue, error) {
	resp, err := s.api.Get(ctx, "/player/queue")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := s.readError(resp); err != nil {
		return nil, err
	}

	var wire queueResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode queue response: %w", err)
	}

	queue := &models.Queue{Tracks: make([]models.Track, 0, len(wire.Queue))}
	if wire.CurrentlyPlaying != nil {
		current := wire.CurrentlyPlaying.toModel()
		queue.CurrentlyPlaying = &current
	}
	for _, track := range wire.Queue {
		queue.Tracks = append(queue.Tracks, track.toModel())
	}

	return queue, nil
}

// RecentlyPlayed fetches the play history, most recent first.
func (s *SpotifyPlayerService) RecentlyPlayed(ctx context.Context, limit int) ([]models.PlayedTrack, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	resp, err := s.api.Get(ctx, fmt.Sprintf("/player/recently-played?limit=%d", limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := s.readError(resp); err != nil {
		return nil, err
	}

	var wire recentlyPlayedResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode recently-played response: %w", err)
	}

	played := make([]models.PlayedTrack, 0, len(wire.Items))
	for _, item := range wire.Items {
		played = append(played, models.PlayedTrack{
			Track:    item.Track.toModel(),
			PlayedAt: item.PlayedAt,
			Context:  item.Context.toModel(),
		})
	}

	return played, nil
}

// AddRecentlyPlayed backfills a play event into the server-side history.
func (s *SpotifyPlayerService) AddRecentlyPlayed(ctx context.Context, trackID string, playedAt time.Time) error {
	body, err := json.Marshal(map[string]any{
		"track_id":  trackID,
		"played_at": playedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode history body: %w", err)
	}

	resp, err := s.api.Post(ctx, "/player/recently-played/add", body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return s.readError(resp)
}

// Devices lists the account's available playback devices.
func (s *SpotifyPlayerService) Devices(ctx context.Context) ([]models.Device, error) {
	resp, err := s.api.Get(ctx, "/player/devices")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := s.readError(resp); err != nil {
		return nil, err
	}

	var wire devicesResponse
	if err := json.Unmarshal(resp.Body, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode devices response: %w", err)
	}

	return wire.Devices, nil
}

// commandError maps the response of a player command to the error taxonomy.
// Commands are expected to answer 204; anything else carries an upstream
// error payload.
func (s *SpotifyPlayerService) commandError(resp *APIResponse) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: retry-after %s", shared.ErrRateLimited, resp.Headers.Get("Retry-After"))
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrNotAuthenticated)
	}
	return fmt.Errorf("%w: status %d: %s", shared.ErrPlaybackRequest, resp.StatusCode, upstreamMessage(resp.Body))
}

// readError maps the response of a read endpoint to the error taxonomy.
func (s *SpotifyPlayerService) readError(resp *APIResponse) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: retry-after %s", shared.ErrRateLimited, resp.Headers.Get("Retry-After"))
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", shared.ErrNotAuthenticated)
	}
	return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, upstreamMessage(resp.Body))
}

// upstreamMessage extracts the human-readable error message from an upstream
// error payload, falling back to the raw body.
func upstreamMessage(body []byte) string {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func (t *SpotifyTrack) toModel() models.Track {
	track := models.Track{
		ID:          t.ID,
		URI:         t.URI,
		Name:        t.Name,
		DurationMS:  t.DurationMS,
		TrackNumber: t.TrackNumber,
	}
	for _, artist := range t.Artists {
		track.Artists = append(track.Artists, models.Artist{ID: artist.ID, Name: artist.Name})
	}
	if t.Album != nil {
		album := models.Album{ID: t.Album.ID, Name: t.Album.Name}
		for _, image := range t.Album.Images {
			album.Images = append(album.Images, models.Image{URL: image.URL, Height: image.Height, Width: image.Width})
		}
		track.Album = &album
	}
	return track
}

// toModel converts a wire context, deriving the collection ID from the URI
// ("spotify:album:xyz" carries id "xyz").
func (c *SpotifyContext) toModel() *models.PlaybackContext {
	if c == nil || c.URI == "" {
		return nil
	}

	parts := strings.Split(c.URI, ":")
	id := parts[len(parts)-1]

	contextType := models.ContextType(c.Type)
	if c.Type == "" && len(parts) >= 2 {
		contextType = models.ContextType(parts[len(parts)-2])
	}

	return &models.PlaybackContext{
		Type: contextType,
		ID:   id,
		URI:  c.URI,
	}
}
