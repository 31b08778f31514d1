// Package services implements the transport/session layer: bearer-token HTTP
// calls to the backend proxy, which forwards to the upstream streaming API.
//
// # Transport Interface
//
// The playback engine consumes the [PlayerTransport] interface; everything
// else in this package exists to satisfy it.
//
// # Spotify Implementation
//
// [SpotifyPlayerService] uses OAuth2 for authentication with automatic token
// refresh via [oauth2.Config.Client]. Player commands and reads go through
// [APIService], a thin authenticated HTTP client for the proxy.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrRateLimited] : upstream returned 429
//   - [shared.ErrPlaybackRequest] : play/pause/skip call rejected upstream
//   - [shared.ErrNothingPlaying] : no playback session on the account (204)
//   - [shared.ErrAPIRequest] : any other HTTP failure
//
// # API Mappings
//
// Wire structs mirror the upstream JSON and convert to the models package:
// currently-playing → [models.CurrentlyPlaying], queue → [models.Queue],
// recently-played items → [models.PlayedTrack]. Context IDs are derived from
// the context URI since the upstream omits them.
package services
