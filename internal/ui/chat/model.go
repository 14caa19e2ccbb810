// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/prepchat/internal/model"
	"github.com/jeranaias/prepchat/internal/transcript"
	"github.com/jeranaias/prepchat/internal/ui/styles"
)

// Controller is the part of transcript.Controller the view drives.
type Controller interface {
	Submit(ctx context.Context, userText string) transcript.Result
	Cancel() bool
	Reset() error
	Snapshot() model.Session
}

// Options configures the chat view.
type Options struct {
	// Endpoint is shown in the header
	Endpoint string

	// Markdown renders finished assistant turns with glamour
	Markdown bool

	// MaxInputChars marks over-long input before it is submitted (0 = unlimited)
	MaxInputChars int

	// Context bounds every submission (default: context.Background)
	Context context.Context
}

// statusKind selects the style of the status bar message.
type statusKind int

const (
	statusNone statusKind = iota
	statusSuccess
	statusError
	statusWarning
)

// Layout heights: header line, input border and line, status line.
const (
	headerHeight    = 1
	inputAreaHeight = 2
	statusBarHeight = 1
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl  Controller
	opts  Options
	theme *styles.Theme
	keys  KeyMap

	// Latest published snapshot
	session model.Session

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Markdown rendering of finished turns, keyed by content
	renderer *glamour.TermRenderer
	rendered map[string]string

	endpoint   string
	status     string
	statusKind statusKind
}

// New creates a chat model showing the controller's current snapshot.
func New(ctrl Controller, theme *styles.Theme, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = "Ask about interview preparation..."
	ti.Focus()

	vp := viewport.New(80, 20)

	// ASCII-compatible animation
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	return Model{
		ctrl:     ctrl,
		opts:     opts,
		theme:    theme,
		keys:     DefaultKeyMap(),
		session:  ctrl.Snapshot(),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		rendered: make(map[string]string),
		endpoint: opts.Endpoint,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionMsg:
		return m.handleSession(msg)

	case SubmitDoneMsg:
		m.setResultStatus(msg.Result)
		return m, nil

	case ResetDoneMsg:
		if msg.Err != nil {
			m.setStatus(statusWarning, "Wait for the reply to finish before starting a new chat")
		} else {
			m.setStatus(statusNone, "")
		}
		return m, nil

	case EndpointChangedMsg:
		m.endpoint = msg.URL
		m.setStatus(statusSuccess, "Endpoint updated")
		return m, nil

	case spinner.TickMsg:
		if !m.session.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// Session returns the snapshot currently on screen.
func (m Model) Session() model.Session {
	return m.session
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = viewportHeight

	// Container padding (2) plus prompt "> " (2)
	inputWidth := m.width - 4
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.renderer = m.newRenderer()
	m.rendered = make(map[string]string)
	m.refresh()
	return m, nil
}

// handleSession replaces the displayed snapshot. Busy edges toggle the input.
func (m Model) handleSession(msg SessionMsg) (tea.Model, tea.Cmd) {
	wasBusy := m.session.Busy
	m.session = msg.Session

	var cmd tea.Cmd
	switch {
	case m.session.Busy && !wasBusy:
		m.input.Blur()
		cmd = m.spinner.Tick
	case !m.session.Busy && wasBusy:
		cmd = m.input.Focus()
	}

	m.refresh()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.session.Busy {
			m.ctrl.Cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.session.Busy && m.ctrl.Cancel() {
			m.setStatus(statusWarning, "Stopping reply...")
		}
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		if m.session.Busy {
			m.setStatus(statusWarning, "Wait for the reply to finish before starting a new chat")
			return m, nil
		}
		return m, m.resetCmd()

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.session.Busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit hands the input to the controller. Empty input is ignored
// here as well as in the controller, and over-long input stays in the field.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.session.Busy {
		return m, nil
	}
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.tooLong(text) {
		m.setStatus(statusWarning, fmt.Sprintf("Message too long (max %d characters)", m.opts.MaxInputChars))
		return m, nil
	}

	m.input.Reset()
	m.setStatus(statusNone, "")
	return m, m.submitCmd(text)
}

// =============================================================================
// COMMANDS
// =============================================================================

// submitCmd runs the submission off the Update loop, since the controller
// publishes snapshots back into the program while it streams.
func (m Model) submitCmd(text string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.opts.Context
	return func() tea.Msg {
		return SubmitDoneMsg{Result: ctrl.Submit(ctx, text)}
	}
}

func (m Model) resetCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return ResetDoneMsg{Err: ctrl.Reset()}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setStatus(kind statusKind, text string) {
	m.statusKind = kind
	m.status = text
}

func (m *Model) setResultStatus(res transcript.Result) {
	switch res.Outcome {
	case transcript.OutcomeCompleted:
		m.setStatus(statusSuccess, fmt.Sprintf("Reply in %s", res.Duration.Round(10*time.Millisecond)))
	case transcript.OutcomeErrored:
		if errors.Is(res.Err, context.Canceled) {
			m.setStatus(statusWarning, "Reply stopped")
			return
		}
		m.setStatus(statusError, "Reply failed, see the log for details")
	case transcript.OutcomeRejected:
		switch {
		case errors.Is(res.Err, transcript.ErrInputTooLong):
			m.setStatus(statusWarning, fmt.Sprintf("Message too long (max %d characters)", m.opts.MaxInputChars))
		case errors.Is(res.Err, transcript.ErrBusy):
			m.setStatus(statusWarning, "A reply is already in progress")
		}
	}
}

func (m Model) tooLong(text string) bool {
	return m.opts.MaxInputChars > 0 && utf8.RuneCountInString(strings.TrimSpace(text)) > m.opts.MaxInputChars
}

func (m Model) newRenderer() *glamour.TermRenderer {
	if !m.opts.Markdown {
		return nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(m.contentWidth()),
	)
	if err != nil {
		return nil
	}
	return r
}

// refresh re-renders the transcript into the viewport and follows the tail.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
