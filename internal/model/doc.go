// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// This package defines the core domain types shared by the controller, the
// HTTP collaborator and the presentation layer.
//
// # Key Types
//
//   - Role: Turn speaker (user, assistant)
//   - Turn: Single message with role and content
//   - Transcript: Immutable ordered sequence of turns
//   - Session: Read-only (transcript, busy) pair handed to renderers
//
// # Usage
//
// Transcripts are values. Every update returns a new Transcript and leaves
// earlier snapshots untouched:
//
//	t := model.NewTranscript(model.DefaultGreeting)
//	t = t.Append(model.NewUserTurn("What is Big-O?"), model.NewAssistantTurn(""))
//	t = t.ReplaceLast("Big-O notation describes...")
package model
