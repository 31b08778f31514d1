// Package models defines the playback domain types shared across the client.
//
// Two categories of types live here:
//
//  1. Catalog objects fetched from the streaming API: [Track], [Artist],
//     [Album], [Image], [Device]. Tracks are immutable once fetched and
//     value-equal by ID; the same track may appear in several views at once.
//  2. Playback facts owned by the state store: [CurrentlyPlaying] (the "now"
//     snapshot), [PlayedTrack] (a history entry), [Queue] (the ephemeral
//     up-next snapshot) and [PlaybackContext] (the collection a track is
//     being played from, used to resume sibling tracks in order).
//
// None of these types are persisted; they live for the process session only.
package models
