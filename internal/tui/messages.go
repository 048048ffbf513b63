package tui

import "github.com/WhalePrompt/stiky-note-md/internal/watch"

// ─── Messages ────────────────────────────────────────────────────────────────
//
// Messages with an `id` field use generation counters to ignore stale timers.

// noteEventMsg is delivered when the watcher reports an external change
type noteEventMsg watch.Event

type statusClearMsg struct {
	id int
}

// BrowseMsg is sent when browse data is ready
type BrowseMsg struct {
	Data *BrowseData
	Err  error
}

// PreviewMsg is sent when a rendered preview or diff is ready
type PreviewMsg struct {
	Content string
	Err     error
}

// RefreshBrowseMsg triggers a browse data refresh
type RefreshBrowseMsg struct{}

// StatusMsg is sent when status data is ready
type StatusMsg struct {
	Data *StatusData
	Err  error
}

// RefreshStatusMsg triggers a status refresh
type RefreshStatusMsg struct{}
