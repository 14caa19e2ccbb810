// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for prepchat.

The view is a pure rendering of the latest model.Session published by the
transcript controller. It never edits the transcript itself: Enter hands the
input to Controller.Submit from a command goroutine, Esc calls
Controller.Cancel, and Ctrl+L calls Controller.Reset.

Snapshots reach the program through a Bridge, whose Publish method is passed
to the controller as its publish hook:

	bridge := chat.NewBridge()
	ctrl := transcript.New(client, transcript.Options{Publish: bridge.Publish})
	p := tea.NewProgram(chat.New(ctrl, theme, chat.Options{}))
	bridge.Attach(p)

Publish blocks until the program has accepted the snapshot, so every
controller call that publishes must run outside the Update loop. The model
only ever issues such calls from tea.Cmd functions.

# Layout

	header      title and endpoint, truncated to the terminal width
	viewport    transcript: assistant bubbles on the left, user on the right
	input       text input, disabled with "Sending..." while busy
	status bar  last outcome and key shortcuts

Finished assistant turns are rendered as markdown with glamour when enabled.
The in-flight turn is rendered as wrapped plain text with a cursor, since
partial markdown does not render stably.
*/
package chat
