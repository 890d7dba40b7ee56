// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package browser

// State is a stage in the life of a browser run.
//
//	Idle -> ServerStarted -> BrowserLaunched -> Observing -> {Completed, TimedOut, Crashed}
type State int

const (
	// Idle is the state before anything was started.
	Idle State = iota
	// ServerStarted means the harness server is listening.
	ServerStarted
	// BrowserLaunched means the browser was started and pointed at the
	// harness page.
	BrowserLaunched
	// Observing means events from the page are being processed.
	Observing
	// Completed means the page reported that the bundle finished.
	Completed
	// TimedOut means the page didn't finish within the timeout.
	TimedOut
	// Crashed means the browser exited before the page finished.
	Crashed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ServerStarted:
		return "server started"
	case BrowserLaunched:
		return "browser launched"
	case Observing:
		return "observing"
	case Completed:
		return "completed"
	case TimedOut:
		return "timed out"
	case Crashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == Completed || s == TimedOut || s == Crashed
}

// EventType is the type of a message sent by the harness page.
type EventType string

const (
	// EventStdout carries text written by the bundle to stdout.
	EventStdout EventType = "stdout"
	// EventStderr carries text written by the bundle to stderr.
	EventStderr EventType = "stderr"
	// EventConsole carries a console message of the page.
	EventConsole EventType = "console"
	// EventError reports an uncaught exception.
	EventError EventType = "error"
	// EventTrap reports a sanitizer trap.
	EventTrap EventType = "trap"
	// EventCompleted reports that the bundle has finished.
	EventCompleted EventType = "completed"
)

// Event is a message sent by the harness page over the reporting channel.
type Event struct {
	Type     EventType `json:"type"`
	Text     string    `json:"text,omitempty"`
	Stack    string    `json:"stack,omitempty"`
	ExitCode int       `json:"exitCode"`
}
