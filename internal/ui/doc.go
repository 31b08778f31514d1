// Package ui implements the interactive playback dashboard using bubbletea's Elm architecture.
//
// The dashboard renders three panels from the state store's projections:
//  1. Now playing: track, artists, progress, device status
//  2. Up next: the capped queue preview with a "showing N of M" indicator
//  3. History: recently played tracks, most recent first
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern. It
// never mutates playback state directly: key presses become commands against
// the device adapter or play intents submitted to the store, and the panels
// re-render when the store's subscription channel delivers an update.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, space, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
