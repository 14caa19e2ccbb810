// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("system"), "system"},
	}

	for _, tc := range tests {
		t.Run(tc.role.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.role.DisplayName())
		})
	}
}

func TestRole_UnmarshalRejectsUnknown(t *testing.T) {
	var turn Turn
	err := json.Unmarshal([]byte(`{"role":"tool","content":"x"}`), &turn)
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"role":"user","content":"x"}`), &turn))
	assert.Equal(t, RoleUser, turn.Role)
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestNewTranscript_SeededWithGreeting(t *testing.T) {
	tr := NewTranscript("")
	require.Equal(t, 1, tr.Len())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
	assert.Equal(t, DefaultGreeting, last.Content)

	custom := NewTranscript("Hello there")
	assert.Equal(t, "Hello there", custom.At(0).Content)
}

func TestTranscript_AppendDoesNotAliasEarlierSnapshot(t *testing.T) {
	base := NewTranscript("hi")
	a := base.Append(NewUserTurn("one"))
	b := base.Append(NewUserTurn("two"))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "one", a.At(1).Content)
	assert.Equal(t, "two", b.At(1).Content)
}

func TestTranscript_ReplaceLastIsCopyOnWrite(t *testing.T) {
	first := NewTranscript("hi").Append(NewUserTurn("q"), NewAssistantTurn(""))
	second := first.ReplaceLast("Big")
	third := second.ReplaceLast("Big-O")

	assert.Equal(t, "", first.At(2).Content)
	assert.Equal(t, "Big", second.At(2).Content)
	assert.Equal(t, "Big-O", third.At(2).Content)
	assert.Equal(t, RoleAssistant, third.At(2).Role)
	assert.Equal(t, 3, third.Len())
}

func TestTranscript_TurnsReturnsCopy(t *testing.T) {
	tr := NewTranscript("hi")
	turns := tr.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "hi", tr.At(0).Content)
}

func TestTranscript_WithoutLast(t *testing.T) {
	tr := NewTranscript("hi").Append(NewUserTurn("q"), NewAssistantTurn(""))
	trimmed := tr.WithoutLast()

	require.Equal(t, 2, trimmed.Len())
	last, _ := trimmed.Last()
	assert.Equal(t, NewUserTurn("q"), last)
	assert.Equal(t, 3, tr.Len())
}

func TestTranscript_ZeroValue(t *testing.T) {
	var tr Transcript
	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Equal(t, 0, tr.ReplaceLast("x").Len())

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestTranscript_JSONShape(t *testing.T) {
	tr := NewTranscript("hi").Append(NewUserTurn("What is Big-O?"))

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"role":"assistant","content":"hi"},{"role":"user","content":"What is Big-O?"}]`, string(data))
}
