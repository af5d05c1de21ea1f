// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for harvesting:
//  1. [ResolveView] : Resolve the source reference into a track list
//  2. [TrackListView] : Preview resolved tracks before downloading
//  3. [ConfirmView] : Confirm the harvest
//  4. [HarvestView] : Monitor real-time progress updates
//  5. [ResultView] : Display the download summary and failed tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the HarvestEngine, providing non-blocking status reporting during downloads.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
