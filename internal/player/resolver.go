package player

import (
	"github.com/Frederikmahipal/ba-client/internal/models"
	"github.com/Frederikmahipal/ba-client/internal/services"
)

// Resolve turns a track and its optional surrounding collection into exactly
// one upstream-compatible play request.
//
// A context of type artist is always downgraded to a direct-track request:
// the upstream has no playable collection URI for "an artist's tracks".
// Within a playable context the offset URI takes precedence over the
// position index.
//
// Pure function, no I/O; equal inputs yield equal request bodies.
func Resolve(trackURI string, context *models.PlaybackContext) services.PlayRequest {
	if context != nil && context.Type != models.ContextArtist && context.URI != "" {
		req := services.PlayRequest{ContextURI: context.URI, PositionMS: 0}
		if context.Offset != nil && context.Offset.URI != "" {
			req.Offset = &services.PlayOffset{URI: context.Offset.URI}
		} else if context.Position != nil {
			position := *context.Position
			req.Offset = &services.PlayOffset{Position: &position}
		}
		return req
	}

	return services.PlayRequest{URIs: []string{trackURI}, PositionMS: 0}
}
