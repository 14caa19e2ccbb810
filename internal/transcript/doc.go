// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript owns the conversation and drives one reply at a time.
//
// A Controller appends the user turn and an empty assistant placeholder,
// opens a reply stream from the endpoint, folds every decoded fragment into
// the placeholder and finally resolves the submission as Completed or
// Errored. Every change is published as a fresh model.Session snapshot, so a
// renderer never sees a half-written turn.
//
// # State Machine
//
//	Idle -> Sending -> Streaming -> Completed -> Idle
//	           |           |
//	           +-----------+-----> Errored ---> Idle
//
// Only Idle accepts a new submission. The return to Idle always runs, even
// when the exchange fails.
//
// # Usage
//
//	ctrl := transcript.New(client, transcript.Options{
//	    Publish: func(s model.Session) { program.Send(s) },
//	})
//	go ctrl.Submit(ctx, "What is Big-O?")
package transcript
