// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import "encoding/json"

// DefaultGreeting seeds every new transcript.
const DefaultGreeting = "Hi! I am a support chatbot that will help you prepare for interviews. How can I help you today?"

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is an immutable, ordered sequence of turns.
//
// Every mutating operation returns a new Transcript whose backing array is
// never shared with a previous value, so a snapshot held by a renderer stays
// valid while the controller keeps folding fragments into the next one.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates a transcript seeded with a single assistant greeting.
// An empty greeting falls back to DefaultGreeting; a transcript is never empty.
func NewTranscript(greeting string) Transcript {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	return Transcript{turns: []Turn{NewAssistantTurn(greeting)}}
}

// Len returns the number of turns.
func (t Transcript) Len() int {
	return len(t.turns)
}

// At returns the turn at index i. It panics if i is out of range.
func (t Transcript) At(i int) Turn {
	return t.turns[i]
}

// Last returns the most recent turn, or false when the transcript is the
// zero value.
func (t Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Turns returns a copy of all turns in conversation order.
func (t Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Append returns a new transcript with turns added at the end.
func (t Transcript) Append(turns ...Turn) Transcript {
	next := make([]Turn, len(t.turns), len(t.turns)+len(turns))
	copy(next, t.turns)
	return Transcript{turns: append(next, turns...)}
}

// ReplaceLast returns a new transcript whose final turn has the given
// content. The role of the final turn is preserved. Replacing on an empty
// transcript returns it unchanged.
func (t Transcript) ReplaceLast(content string) Transcript {
	if len(t.turns) == 0 {
		return t
	}
	next := t.Turns()
	last := len(next) - 1
	next[last] = next[last].WithContent(content)
	return Transcript{turns: next}
}

// WithoutLast returns a new transcript with the final turn removed.
func (t Transcript) WithoutLast() Transcript {
	if len(t.turns) == 0 {
		return t
	}
	next := make([]Turn, len(t.turns)-1)
	copy(next, t.turns)
	return Transcript{turns: next}
}

// MarshalJSON encodes the transcript as a JSON array of turns.
func (t Transcript) MarshalJSON() ([]byte, error) {
	if t.turns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.turns)
}

// =============================================================================
// SESSION SNAPSHOT
// =============================================================================

// Session is the read-only view handed to the presentation layer.
// Each publication fully replaces the previous one.
type Session struct {
	Transcript Transcript
	Busy       bool
}
