// Package player implements the playback-state synchronization engine: the
// device adapter over the embeddable player SDK, the device activation
// sequencer, the playback context resolver, the single-writer state store
// reconciling optimistic local writes against remote polls, and the read-only
// view projections consumed by the TUI.
//
// # Ownership
//
// The [Store] exclusively owns the currently-playing fact, the queue snapshot
// and the history list. Every other component reads them through copy-out
// accessors and causes writes only by submitting play intents. The shared
// device ID lives in a [DeviceSlot] written by the [Adapter] alone.
//
// # Consistency model
//
// The upstream player service is eventually consistent and rate limited.
// Play intents are sequence-stamped; in-flight refetches and polls compare
// their sequence against the latest intent and discard stale results, so a
// slow response from an older intent can never overwrite a newer one's state
// (last-write-wins on the fact slot). Settle delays after device activation
// and before queue refetches are real-clock waits required by the upstream;
// they are configuration, not tunables discovered here.
package player
