// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/prepchat/internal/model"
	"github.com/jeranaias/prepchat/internal/transcript"
)

// =============================================================================
// MESSAGES
// =============================================================================

// SessionMsg delivers a snapshot published by the controller.
type SessionMsg struct {
	Session model.Session
}

// SubmitDoneMsg reports how a submission resolved.
type SubmitDoneMsg struct {
	Result transcript.Result
}

// ResetDoneMsg reports the result of a reset request.
type ResetDoneMsg struct {
	Err error
}

// EndpointChangedMsg updates the endpoint shown in the header.
type EndpointChangedMsg struct {
	URL string
}

// =============================================================================
// BRIDGE
// =============================================================================

// Bridge forwards controller snapshots into a running program.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

// NewBridge creates a Bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the program that receives snapshots.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// Publish sends the snapshot to the attached program. Snapshots published
// before Attach are dropped; the model starts from Controller.Snapshot.
func (b *Bridge) Publish(s model.Session) {
	b.Send(SessionMsg{Session: s})
}

// Send delivers any message to the attached program.
func (b *Bridge) Send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}
