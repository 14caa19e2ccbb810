// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/prepchat/internal/model"
	"github.com/jeranaias/prepchat/internal/ui/styles"
	"github.com/jeranaias/prepchat/internal/util"
)

// renderChat stacks header, transcript, input and status bar.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	const title = "prepchat"
	inner := m.width - 2

	line := m.theme.HeaderTitle.Render(title)
	if avail := inner - lipgloss.Width(title) - 1; avail > 3 && m.endpoint != "" {
		line += " " + m.theme.HeaderSubtitle.Render(util.TruncateWidth(m.endpoint, avail))
	}
	return m.theme.Header.Width(m.width).MaxHeight(headerHeight).Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every turn of the current snapshot. The last
// assistant turn is in flight while the session is busy.
func (m Model) renderTranscript() string {
	t := m.session.Transcript
	parts := make([]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		turn := t.At(i)
		inFlight := m.session.Busy && i == t.Len()-1
		switch turn.Role {
		case model.RoleUser:
			parts = append(parts, m.renderUserTurn(turn))
		case model.RoleAssistant:
			parts = append(parts, m.renderAssistantTurn(turn, inFlight))
		}
	}
	return strings.Join(parts, "\n")
}

// renderUserTurn renders a right-aligned user bubble.
func (m Model) renderUserTurn(turn model.Turn) string {
	bubble := m.theme.UserBubble.Render(wrap(turn.Content, m.contentWidth()))
	block := lipgloss.JoinVertical(lipgloss.Right, m.theme.MutedStyle.Render(turn.Role.DisplayName()), bubble)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
}

// renderAssistantTurn renders a left-aligned assistant bubble.
func (m Model) renderAssistantTurn(turn model.Turn, inFlight bool) string {
	var body string
	switch {
	case inFlight && turn.IsEmpty():
		body = m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking...")
	case inFlight:
		body = wrap(turn.Content, m.contentWidth()) + m.theme.StreamingCursor.Render("_")
	default:
		body = m.renderMarkdown(turn.Content)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.MutedStyle.Render(turn.Role.DisplayName()),
		m.theme.AssistantBubble.Render(body))
}

// renderMarkdown renders a finished turn with glamour, falling back to
// wrapped plain text.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return wrap(content, m.contentWidth())
	}
	if out, ok := m.rendered[content]; ok {
		return out
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return wrap(content, m.contentWidth())
	}
	out = strings.Trim(out, "\n")
	m.rendered[content] = out
	return out
}

// contentWidth is the text width inside a bubble: border (2) and padding (4).
func (m Model) contentWidth() int {
	w := m.theme.BubbleWidth() - 6
	if w < 10 {
		w = 10
	}
	return w
}

// wrap word-wraps s to width columns when any line is wider.
func wrap(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// =============================================================================
// INPUT AND STATUS BAR
// =============================================================================

func (m Model) renderInput() string {
	var line string
	if m.session.Busy {
		line = m.theme.InputDisabled.Render("Sending...")
	} else {
		line = m.input.View()
		if count := m.renderCharCount(); count != "" {
			line += "  " + count
		}
	}
	return m.theme.InputContainer.Width(m.width).Render(line)
}

// renderCharCount shows the input length once it nears the limit.
func (m Model) renderCharCount() string {
	limit := m.opts.MaxInputChars
	if limit <= 0 {
		return ""
	}
	n := utf8.RuneCountInString(m.input.Value())
	if n < limit*4/5 {
		return ""
	}
	text := fmt.Sprintf("%d/%d", n, limit)
	if n > limit {
		return m.theme.CharCountOver.Render(text)
	}
	return m.theme.CharCount.Render(text)
}

func (m Model) renderStatusBar() string {
	inner := m.width - 2

	help := m.shortcuts()
	avail := inner - lipgloss.Width(help) - 2
	if avail < 12 {
		help = ""
		avail = inner
	}

	left := util.PadWidth(util.TruncateWidth(m.statusText(), avail), avail)
	line := m.statusStyle().Render(left)
	if help != "" {
		line += "  " + m.theme.ShortcutDesc.Render(help)
	}
	return m.theme.StatusBar.Width(m.width).MaxHeight(statusBarHeight).Render(line)
}

// shortcuts lists the key bindings that apply in the current state.
func (m Model) shortcuts() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		if m.session.Busy && b.Help().Key == m.keys.Submit.Help().Key {
			continue
		}
		if !m.session.Busy && b.Help().Key == m.keys.Cancel.Help().Key {
			continue
		}
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, "  ")
}

func (m Model) statusText() string {
	switch m.statusKind {
	case statusSuccess:
		return styles.StatusIndicators.Success + " " + m.status
	case statusError:
		return styles.StatusIndicators.Error + " " + m.status
	case statusWarning:
		return styles.StatusIndicators.Warning + " " + m.status
	}
	if m.session.Busy {
		return styles.StatusIndicators.Pending + " Waiting for reply"
	}
	return ""
}

func (m Model) statusStyle() lipgloss.Style {
	switch m.statusKind {
	case statusSuccess:
		return m.theme.SuccessStyle
	case statusError:
		return m.theme.ErrorStyle
	case statusWarning:
		return m.theme.WarningStyle
	}
	return m.theme.MutedStyle
}
