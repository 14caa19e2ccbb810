// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"errors"
	"fmt"
)

// =============================================================================
// SUBMISSION STATE
// =============================================================================

// State is the lifecycle position of the current submission.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleted
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Busy reports whether a submission holds the controller in this state.
func (s State) Busy() bool {
	return s != StateIdle
}

// transitions lists the legal successors of every state.
var transitions = map[State][]State{
	StateIdle:      {StateSending},
	StateSending:   {StateStreaming, StateErrored},
	StateStreaming: {StateCompleted, StateErrored},
	StateCompleted: {StateIdle},
	StateErrored:   {StateIdle},
}

// ErrIllegalTransition is returned when a state change is not in the table.
var ErrIllegalTransition = errors.New("illegal state transition")

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// checkTransition returns an error for an illegal state change.
func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the resolution of a call to Submit.
type Outcome int

const (
	// OutcomeRejected means Submit was a no-op (empty input or busy).
	OutcomeRejected Outcome = iota
	OutcomeCompleted
	OutcomeErrored
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeCompleted:
		return "completed"
	case OutcomeErrored:
		return "errored"
	default:
		return "unknown"
	}
}
