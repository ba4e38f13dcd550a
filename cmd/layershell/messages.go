package main

import (
	"time"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/system"
)

// ─── Messages ────────────────────────────────────────────────────────────────
//
// Widgets, subscriptions and task replies produce these; app.Update handles
// them. Messages with an `id int` field use generation counters to ignore
// stale timers.

type incrementMsg struct {
	window core.WindowID
}

// draftChangedMsg carries the new content of a window's note field.
type draftChangedMsg struct {
	window core.WindowID
	value  string
}

type noteSubmittedMsg struct {
	window core.WindowID
}

type openWindowMsg struct{}

// windowOpenedMsg is produced both by OpenLayer and by the LayerOpened
// event, so handling it twice must be harmless.
type windowOpenedMsg struct {
	window core.WindowID
}

type closeWindowMsg struct {
	window core.WindowID
}

type windowClosedMsg struct {
	window core.WindowID
}

type focusNextMsg struct{}

type copyNotesMsg struct {
	window core.WindowID
}

type quitMsg struct{}

// configChangedMsg is sent by the config watcher after debounce.
type configChangedMsg struct{}

type infoLoadedMsg struct {
	info system.Information
}

type tickMsg time.Time

type statusClearMsg struct {
	id int
}
