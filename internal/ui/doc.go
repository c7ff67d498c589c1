// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI browses recorded check history:
//  1. [HistoryListView] : Recent check runs, newest first, filterable by URL
//  2. [DetailView] : One run with its message and per-entry findings
//
// The [HistoryModel] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Severity labels are painted with the lipgloss [Palette].
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
